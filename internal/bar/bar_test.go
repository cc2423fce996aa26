package bar

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	black Color = 0x252535ff
	white Color = 0xdcd7baff
	grey  Color = 0x363646ff
	blue  Color = 0x658594ff
)

func newTestContext(w, h int) *Context {
	return NewContext(image.NewRGBA(image.Rect(0, 0, w, h)), black, basicfont.Face7x13)
}

func pixel(ctx *Context, x, y int) Color {
	c := ctx.frame.RGBAAt(x, y)
	return Color(uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A))
}

// near allows for antialiasing rounding.
func near(a, b Color) bool {
	for shift := 0; shift < 32; shift += 8 {
		x, y := int(uint8(a>>shift)), int(uint8(b>>shift))
		if x-y > 2 || y-x > 2 {
			return false
		}
	}
	return true
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#252535", black, true},
		{"#dcd7baff", white, true},
		{"#C34043", 0xc34043ff, true},
		{"252535", 0, false},
		{"#2525", 0, false},
		{"#zzzzzz", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q): err %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColor_Pixel(t *testing.T) {
	if got := blue.Pixel(); got != 0x658594 {
		t.Errorf("Pixel = %#x, want 0x658594", got)
	}
}

func TestContext_FillRectIsRelative(t *testing.T) {
	ctx := newTestContext(100, 10)
	sub := ctx.Sub(20, 10)

	sub.FillRect(image.Rect(0, 0, 50, 10), blue)

	if got := pixel(ctx, 19, 5); got == blue {
		t.Error("fill leaked left of the region")
	}
	if got := pixel(ctx, 20, 5); got != blue {
		t.Errorf("pixel(20, 5): got %v", got)
	}
	if got := pixel(ctx, 30, 5); got == blue {
		t.Error("fill leaked right of the region")
	}
}

func TestContext_TextExtent(t *testing.T) {
	ctx := newTestContext(100, 20)
	w, h := ctx.TextExtent("abc")
	if w != 21 || h != 13 {
		t.Errorf("TextExtent: got (%d, %d), want (21, 13)", w, h)
	}

	style := TextStyle{FG: white, BG: blue, PaddingLeft: 2, PaddingRight: 3}
	if got := ctx.DrawText("abc", 0, 20, style); got != 26 {
		t.Errorf("DrawText width: got %d, want 26", got)
	}
	if got := pixel(ctx, 0, 0); got != blue {
		t.Errorf("text background: got %v", got)
	}
}

func TestWedge(t *testing.T) {
	tests := []struct {
		name          string
		wedge         *Wedge
		focus         bool
		topLeft, btmR Color
	}{
		{"start", NewWedgeStart(blue, black), true, blue, black},
		{"end", NewWedgeEnd(blue, black), true, black, blue},
		{"only with focus", NewWedgeEnd(blue, black).OnlyWithFocus(), false, black, black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(10, 10)
			w, h, _ := tt.wedge.CurrentExtent(ctx, 10)
			if w != 10 || h != 10 {
				t.Fatalf("extent: got (%d, %d)", w, h)
			}

			if err := tt.wedge.Draw(ctx, 0, tt.focus, w, h); err != nil {
				t.Fatal(err)
			}
			if got := pixel(ctx, 1, 1); !near(got, tt.topLeft) {
				t.Errorf("top left: got %v, want %v", got, tt.topLeft)
			}
			if got := pixel(ctx, 8, 8); !near(got, tt.btmR) {
				t.Errorf("bottom right: got %v, want %v", got, tt.btmR)
			}
		})
	}
}

func TestSpacer(t *testing.T) {
	for _, f := range []float64{-0.1, 1.1} {
		if _, err := NewSpacer(f); !errors.Is(err, ErrInvalidFraction) {
			t.Errorf("NewSpacer(%v): got %v", f, err)
		}
	}

	s, err := NewSpacer(0.07)
	if err != nil {
		t.Fatal(err)
	}
	state := &host.State{Screens: []host.Screen{
		{Index: 0, Geometry: image.Rect(0, 0, 1920, 1080)},
		{Index: 1, Geometry: image.Rect(1920, 0, 3200, 1024)},
	}}
	if err := s.OnStartup(Snapshot{State: state}); err != nil {
		t.Fatal(err)
	}

	// 1920 * 0.07 = 134.4
	if w, _, _ := s.CurrentExtent(nil, 24); w != 134 {
		t.Errorf("width: got %d, want 134", w)
	}
	if s.RequireDraw() || s.IsGreedy() {
		t.Error("spacer should never require a draw or be greedy")
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		extents []int
		greedy  []bool
		width   int
		want    []int
	}{
		{[]int{10, 20}, []bool{false, false}, 100, []int{10, 20}},
		{[]int{10, 0, 20}, []bool{false, true, false}, 100, []int{10, 70, 20}},
		{[]int{10, 0, 0}, []bool{false, true, true}, 100, []int{10, 45, 45}},
		{[]int{80, 0, 40}, []bool{false, true, false}, 100, []int{80, 0, 40}},
	}

	for _, tt := range tests {
		if got := Layout(tt.extents, tt.greedy, tt.width); !slices.Equal(got, tt.want) {
			t.Errorf("Layout(%v, %v, %d): got %v, want %v", tt.extents, tt.greedy, tt.width, got, tt.want)
		}
	}
}

func TestIconicTag(t *testing.T) {
	rules := []IconRule{{Process: "spotify", Icon: "🎵"}, {Process: "", Icon: "!"}}

	if got := IconicTag("3", []string{"alacritty", "spotify-launcher"}, rules); got != "[3🎵]" {
		t.Errorf("IconicTag: got %q", got)
	}
	if got := IconicTag("3", []string{"alacritty"}, rules); got != "3" {
		t.Errorf("IconicTag without match: got %q", got)
	}
}

type fakeConn struct {
	titles map[host.Xid]string
	pids   map[host.Xid]uint32
}

func (c fakeConn) WindowTitle(id host.Xid) (string, error) {
	title, ok := c.titles[id]
	if !ok {
		return "", errors.New("no title")
	}
	return title, nil
}

func (c fakeConn) GetProp(id host.Xid, name string) (host.Prop, bool, error) {
	pid, ok := c.pids[id]
	return host.PropCardinal{pid}, ok, nil
}

type fakeProcs map[int32]string

func (p fakeProcs) ExeName(pid int32) (string, bool) {
	name, ok := p[pid]
	return name, ok
}

func newSnapshot() Snapshot {
	return Snapshot{
		State: &host.State{
			Workspaces: []host.Workspace{
				{ID: 0, Clients: []host.Xid{1}},
				{ID: 1},
				{ID: 2, Clients: []host.Xid{2}},
			},
			Tags:       map[int]string{0: "1", 1: "2", 2: "3"},
			CurrentTag: "1",
			Screens:    []host.Screen{{Index: 0, Geometry: image.Rect(0, 0, 200, 100)}},
			Focused:    1,
		},
		Conn: fakeConn{
			titles: map[host.Xid]string{1: "a very long window title", 2: "Spotify"},
			pids:   map[host.Xid]uint32{1: 10, 2: 20},
		},
		Procs: fakeProcs{10: "alacritty", 20: "spotify"},
	}
}

func TestWorkspaces(t *testing.T) {
	ui := NewAppWorkspaceUI(AppWorkspaceUIColors{FG: white, BG: black, Highlight: blue, Empty: grey},
		[]IconRule{{Process: "spotify", Icon: "🎵"}})
	ws := NewWorkspaces(ui, 2)
	snap := newSnapshot()

	if err := ws.OnStartup(snap); err != nil {
		t.Fatal(err)
	}

	var tags []string
	for _, meta := range ws.metas {
		tags = append(tags, ui.UITag(meta))
	}
	if want := []string{"1", "", "[3🎵]"}; !slices.Equal(tags, want) {
		t.Errorf("UITag: got %q, want %q", tags, want)
	}

	ctx := newTestContext(200, 20)
	if err := ws.Draw(ctx, 0, true, 200, 20); err != nil {
		t.Fatal(err)
	}
	if ws.RequireDraw() {
		t.Error("RequireDraw after Draw")
	}

	// Same state again does not need a redraw
	if err := ws.OnRefresh(snap); err != nil {
		t.Fatal(err)
	}
	if ws.RequireDraw() {
		t.Error("RequireDraw after unchanged refresh")
	}

	snap.State.CurrentTag = "3"
	if err := ws.OnRefresh(snap); err != nil {
		t.Fatal(err)
	}
	if !ws.RequireDraw() {
		t.Error("focus change should require a draw")
	}
}

func TestAppWorkspaceUI_Colors(t *testing.T) {
	ui := NewAppWorkspaceUI(AppWorkspaceUIColors{FG: white, BG: black, Highlight: blue, Empty: grey}, nil)
	occupied := WsMeta{Tag: "1", Occupied: true}
	empty := WsMeta{Tag: "2"}

	tests := []struct {
		meta   WsMeta
		focus  FocusState
		screen bool
		fg, bg Color
	}{
		{occupied, FocusedOnThisScreen, true, white, blue},
		{empty, FocusedOnThisScreen, true, grey, blue},
		{occupied, FocusedOnThisScreen, false, white, grey},
		{occupied, FocusedOnOtherScreen, true, blue, grey},
		{occupied, Unfocused, true, white, black},
		{empty, Unfocused, true, grey, black},
	}

	for _, tt := range tests {
		fg, bg := ui.ColorsForWorkspace(tt.meta, tt.focus, tt.screen)
		if fg != tt.fg || bg != tt.bg {
			t.Errorf("ColorsForWorkspace(%+v, %v, %v): got (%v, %v), want (%v, %v)", tt.meta, tt.focus, tt.screen, fg, bg, tt.fg, tt.bg)
		}
	}
}

func TestActiveWindowName(t *testing.T) {
	a := NewActiveWindowName(6, TextStyle{FG: white, BG: blue}, true, false)
	snap := newSnapshot()

	if err := a.OnRefresh(snap); err != nil {
		t.Fatal(err)
	}
	if got := a.Get(); got != "a very..." {
		t.Errorf("title: got %q", got)
	}
	if !a.IsGreedy() {
		t.Error("expected greedy")
	}

	snap.State.Focused = 0
	if err := a.OnRefresh(snap); err != nil {
		t.Fatal(err)
	}
	if got := a.Get(); got != "" {
		t.Errorf("no focus: got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé..." {
		t.Errorf("Truncate: got %q", got)
	}
	if got := Truncate("short", 50); got != "short" {
		t.Errorf("Truncate: got %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Errorf("Truncate no limit: got %q", got)
	}
}

func TestParseAmixer(t *testing.T) {
	out := []byte(`Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 65536
  Mono:
  Front Left: Playback 49152 [75%] [on]
  Front Right: Playback 49152 [75%] [on]
`)
	if got, err := ParseAmixer(out); err != nil || got != "vol: 75%" {
		t.Errorf("ParseAmixer: got (%q, %v)", got, err)
	}

	muted := []byte("  Front Right: Playback 0 [0%] [off]\n")
	if got, err := ParseAmixer(muted); err != nil || got != "vol: muted" {
		t.Errorf("ParseAmixer muted: got (%q, %v)", got, err)
	}

	if _, err := ParseAmixer([]byte("nothing here")); err == nil {
		t.Error("expected error")
	}
}

func TestBattery(t *testing.T) {
	dir := t.TempDir()
	if _, ok := BatteryFileSearch(dir); ok {
		t.Error("expected no battery")
	}

	bat := filepath.Join(dir, "BAT0")
	if err := os.Mkdir(bat, 0755); err != nil {
		t.Fatal(err)
	}
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(bat, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("status", "Discharging\n")
	write("capacity", "42\n")

	name, ok := BatteryFileSearch(dir)
	if !ok || name != "BAT0" {
		t.Fatalf("BatteryFileSearch: got (%q, %v)", name, ok)
	}

	source := BatterySummary(dir, name)
	if got, err := source(context.Background()); err != nil || got != "bat: 42%" {
		t.Errorf("discharging: got (%q, %v)", got, err)
	}

	write("status", "Charging\n")
	if got, err := source(context.Background()); err != nil || got != "bat: 42%+" {
		t.Errorf("charging: got (%q, %v)", got, err)
	}

	if _, err := BatterySummary(dir, "BAT9")(context.Background()); err == nil {
		t.Error("expected error for missing battery")
	}
}

func TestWifiNetwork(t *testing.T) {
	connected := WifiNetwork(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("home\n"), nil
	})
	if got, _ := connected(context.Background()); got != "wifi: home" {
		t.Errorf("connected: got %q", got)
	}

	offline := WifiNetwork(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 255")
	})
	if got, _ := offline(context.Background()); got != "wifi: off" {
		t.Errorf("offline: got %q", got)
	}
}

func TestCurrentDateAndTime(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 9, 7, 5, 0, 0, time.UTC) }
	if got, _ := CurrentDateAndTime(now)(context.Background()); got != "2024-03-09 07:05" {
		t.Errorf("got %q", got)
	}
}

func TestIntervalText(t *testing.T) {
	updated := make(chan struct{}, 1)
	text := NewIntervalText("test", TextStyle{}, func(ctx context.Context) (string, error) {
		select {
		case updated <- struct{}{}:
		default:
		}
		return "hello", nil
	}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go text.Run(ctx)

	select {
	case <-updated:
	case <-time.After(5 * time.Second):
		t.Fatal("source never called")
	}

	// The text is set right after the source returns
	deadline := time.Now().Add(5 * time.Second)
	for text.Get() != "hello" && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if text.Get() != "hello" || !text.RequireDraw() {
		t.Errorf("got %q, RequireDraw %v", text.Get(), text.RequireDraw())
	}
}

type fakeSurface struct {
	width int
	puts  int
	last  *image.RGBA
}

func (s *fakeSurface) Width() int {
	return s.width
}

func (s *fakeSurface) Put(frame *image.RGBA) error {
	s.puts++
	s.last = frame
	return nil
}

func TestStatusBar(t *testing.T) {
	primary := NewText("primary", TextStyle{FG: white, BG: black}, false, false)
	shared := NewWedgeStart(blue, black)
	external := NewText("external", TextStyle{FG: white, BG: black}, false, false)

	var points []float64
	loadFace := func(path string, size float64) (font.Face, error) {
		points = append(points, size)
		return basicfont.Face7x13, nil
	}

	b, err := New(black, "", []PerScreen{
		{PointSize: 12, Height: 24, Widgets: []Widget{shared, primary}},
		{PointSize: 8, Height: 18, Widgets: []Widget{shared, external}},
	}, loadFace)
	if err != nil {
		t.Fatal(err)
	}

	s0, s1, s2 := &fakeSurface{width: 300}, &fakeSurface{width: 200}, &fakeSurface{width: 100}
	if err := b.Attach([]Surface{s0, s1, s2}); err != nil {
		t.Fatal(err)
	}
	if want := []float64{12, 8, 8}; !slices.Equal(points, want) {
		t.Errorf("point sizes: got %v, want %v", points, want)
	}
	if got := b.ForScreen(5).Height; got != 18 {
		t.Errorf("ForScreen(5): got height %d", got)
	}

	if err := b.Startup(context.Background(), newSnapshot()); err != nil {
		t.Fatal(err)
	}
	if s0.puts != 1 || s1.puts != 1 || s2.puts != 1 {
		t.Fatalf("startup puts: got %d %d %d", s0.puts, s1.puts, s2.puts)
	}
	if got := s0.last.Bounds(); got != image.Rect(0, 0, 300, 24) {
		t.Errorf("primary frame: got %v", got)
	}

	// Nothing changed
	if err := b.Redraw(false); err != nil {
		t.Fatal(err)
	}
	if s0.puts != 1 || s1.puts != 1 {
		t.Errorf("idle redraw puts: got %d %d", s0.puts, s1.puts)
	}

	primary.Set("changed")
	if err := b.Redraw(false); err != nil {
		t.Fatal(err)
	}
	if s0.puts != 2 || s1.puts != 1 {
		t.Errorf("dirty redraw puts: got %d %d", s0.puts, s1.puts)
	}
}
