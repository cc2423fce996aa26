package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ItsNotGoodName/x-dotwm/internal/build"
	"github.com/ItsNotGoodName/x-dotwm/internal/config"
	"github.com/ItsNotGoodName/x-dotwm/internal/core"
	"github.com/ItsNotGoodName/x-dotwm/internal/keys"
	"github.com/ItsNotGoodName/x-dotwm/internal/logging"
	"github.com/ItsNotGoodName/x-dotwm/internal/procs"
	"github.com/ItsNotGoodName/x-dotwm/internal/session"
	"github.com/ItsNotGoodName/x-dotwm/internal/sysenv"
	"github.com/ItsNotGoodName/x-dotwm/internal/workspaces"
	"github.com/ItsNotGoodName/x-dotwm/internal/xwm"
	"github.com/ItsNotGoodName/x-dotwm/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"github.com/thejerf/suture/v4"
)

type Options struct {
	Debug  bool   `doc:"enable debug"`
	Config string `doc:"config file" default:"~/.config/x-dotwm/config.yaml"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		InitLogger(level(options), "")

		OnServe(hooks, func(ctx context.Context) error {
			env := sysenv.Load(ctx)

			cfg, err := LoadConfig(options, env)
			if err != nil {
				return err
			}
			InitLogger(level(options), cfg.LogPath(env.Home))

			slog.Info("Starting", "version", build.Current.String(), "config", options.Config)

			super := sutureext.NewSimple("root")
			sutureext.Add(super, session.New(cfg, env))

			err = super.Serve(ctx)
			if errors.Is(err, suture.ErrTerminateSupervisorTree) {
				return nil
			}
			return err
		})
	})

	root := cli.Root()
	root.Use = "x-dotwm"
	root.Short = "Workspace menus, key bindings and a status bar for EWMH window managers"
	root.Version = build.Current.String()

	root.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "Print the key bindings",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			cfg, err := LoadConfig(options, sysenv.Load(cmd.Context()))
			if err != nil {
				log.Fatal(err)
			}

			table, err := keys.Build(cfg.KeyOptions())
			if err != nil {
				log.Fatal(err)
			}

			for _, b := range table.Bindings() {
				fmt.Printf("%-14s %s\n", b.Chord, keys.Describe(b.Action))
			}
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "workspaces",
		Short: "Print the workspace summaries and menu entries",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			if err := printWorkspaces(cmd.Context(), options); err != nil {
				log.Fatal(err)
			}
		}),
	})

	cli.Run()
}

func level(options *Options) slog.Level {
	if options.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// InitLogger logs to stderr and, when logPath is not empty, appends to logPath.
func InitLogger(level slog.Level, logPath string) {
	var handler slog.Handler = console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})

	if logPath != "" {
		handler = logging.Tee{
			handler,
			slog.NewTextHandler(logging.NewFile(logPath), &slog.HandlerOptions{Level: level}),
		}
	}

	slog.SetDefault(slog.New(handler))
}

func LoadConfig(options *Options, env sysenv.Env) (config.Config, error) {
	path := core.ExpandHome(options.Config, env.Home)

	store, err := config.NewStore(config.NewDriver(path))
	if err != nil {
		return config.Config{}, err
	}

	return store.GetConfig()
}

func printWorkspaces(ctx context.Context, options *Options) error {
	env := sysenv.Load(ctx)

	cfg, err := LoadConfig(options, env)
	if err != nil {
		return err
	}

	conn, err := xwm.Connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	wm := xwm.NewHost(conn)
	if err := wm.Refresh(); err != nil {
		return err
	}

	table := procs.NewTable(nil)
	if err := table.Refresh(ctx); err != nil {
		slog.Warn("Failed to refresh process table", "error", err)
	}

	summaries := workspaces.Summarize(wm.State(), conn, table)
	pp.Println(summaries)

	for _, line := range workspaces.Lines(workspaces.Entries(summaries, cfg.DisplayConfig(env.ShellLocation()))) {
		fmt.Println(line)
	}

	return nil
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
