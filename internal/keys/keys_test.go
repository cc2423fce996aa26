package keys

import (
	"testing"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in      string
		want    Chord
		wantErr bool
	}{
		{in: "M-f", want: Chord{Mods: ModSuper, Key: "f"}},
		{in: "M-S-Return", want: Chord{Mods: ModSuper | ModShift, Key: "Return"}},
		{in: "M-A-Escape", want: Chord{Mods: ModSuper | ModAlt, Key: "Escape"}},
		{in: "C-space", want: Chord{Mods: ModControl, Key: "space"}},
		{in: "9", want: Chord{Key: "9"}},
		{in: "M-", wantErr: true},
		{in: "X-f", wantErr: true},
		{in: "M-Hyper", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseChord(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseChord(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChord(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChord(%q): got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestChord_StringNormalizes(t *testing.T) {
	a, _ := ParseChord("S-M-x")
	b, _ := ParseChord("M-S-x")
	if a.String() != b.String() || a.String() != "M-S-x" {
		t.Errorf("String: got %q and %q, want M-S-x", a.String(), b.String())
	}
}

func TestChord_Keysym(t *testing.T) {
	tests := []struct {
		key  string
		want uint32
	}{
		{"a", 0x61},
		{"1", 0x31},
		{"Return", 0xff0d},
		{"space", 0x20},
	}

	for _, tt := range tests {
		if got := (Chord{Key: tt.key}).Keysym(); got != tt.want {
			t.Errorf("Keysym(%q): got %#x, want %#x", tt.key, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	table, err := Build(Options{
		FastAccessWorkspaces: 9,
		Terminal:             "alacritty",
		Launcher:             "dmenu_run",
		Locker:               "xscreensaver-command -lock",
	})
	if err != nil {
		t.Fatal(err)
	}

	// 9 workspaces * 2 + 22 fixed bindings
	if table.Len() != 40 {
		t.Errorf("Len: got %d, want 40", table.Len())
	}

	action, ok := table.Lookup("M-9")
	if !ok || action != (FocusTag{Tag: "9"}) {
		t.Errorf("M-9: got (%v, %v)", action, ok)
	}

	action, ok = table.Lookup("M-S-3")
	if !ok || action != (MoveToTag{Tag: "3"}) {
		t.Errorf("M-S-3: got (%v, %v)", action, ok)
	}

	action, ok = table.Lookup("M-S-Return")
	if !ok || action != (Spawn{Command: "alacritty"}) {
		t.Errorf("M-S-Return: got (%v, %v)", action, ok)
	}

	action, ok = table.Lookup("M-S-n")
	if !ok || action != (Modify{Op: host.SwapDown}) {
		t.Errorf("M-S-n: got (%v, %v)", action, ok)
	}

	if _, ok := table.Lookup("M-0"); ok {
		t.Error("M-0: expected no binding")
	}
}

func TestMerge_LastWins(t *testing.T) {
	table, err := merge([]entry{
		{"M-1", FocusTag{Tag: "1"}},
		{"M-1", Exit{}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 1 {
		t.Errorf("Len: got %d, want 1", table.Len())
	}
	if action, _ := table.Lookup("M-1"); action != (Exit{}) {
		t.Errorf("M-1: got %v, want Exit", action)
	}
}

func TestMerge_InvalidChord(t *testing.T) {
	if _, err := merge([]entry{{"Q-1", Exit{}}}); err == nil {
		t.Error("expected error")
	}
}

func TestTable_BindingsSorted(t *testing.T) {
	table, err := Build(Options{FastAccessWorkspaces: 2})
	if err != nil {
		t.Fatal(err)
	}

	bindings := table.Bindings()
	if len(bindings) != table.Len() {
		t.Fatalf("Bindings: got %d, want %d", len(bindings), table.Len())
	}
	for i := 1; i < len(bindings); i++ {
		if bindings[i-1].Chord.String() > bindings[i].Chord.String() {
			t.Fatalf("bindings not sorted at %d: %q > %q", i, bindings[i-1].Chord, bindings[i].Chord)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(Spawn{Command: "alacritty"}); got != "spawn alacritty" {
		t.Errorf("Describe: got %q", got)
	}
	if got := Describe(Modify{Op: host.KillFocused}); got != "kill_focused" {
		t.Errorf("Describe: got %q", got)
	}
}
