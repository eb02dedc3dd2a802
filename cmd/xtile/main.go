package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ItsNotGoodName/xtile/internal/api"
	"github.com/ItsNotGoodName/xtile/internal/build"
	"github.com/ItsNotGoodName/xtile/internal/config"
	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/rebuild"
	"github.com/ItsNotGoodName/xtile/internal/status"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/ItsNotGoodName/xtile/internal/xwm"
	"github.com/ItsNotGoodName/xtile/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

type Options struct {
	Debug  bool   `doc:"enable debug"`
	Config string `doc:"config file, defaults to $XDG_CONFIG_HOME/xtile/config.yaml"`
	Listen string `doc:"loopback address for the unauthenticated control API, overrides api.listen"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			return serve(ctx, options)
		})
	})

	root := cli.Root()
	root.Use = "xtile"
	root.Short = "A tiling window manager for X"
	root.Version = build.Current.String()

	root.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config if none exists",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			path, err := configPath(options)
			if err != nil {
				fatal(err)
			}
			created, err := config.Init(config.NewDriver(path))
			if err != nil {
				fatal(err)
			}
			if created {
				fmt.Println("Wrote", path)
			} else {
				fmt.Println("Config already exists at", path)
			}
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "recompile",
		Short: "Validate the config and rebuild the binary",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			path, err := configPath(options)
			if err != nil {
				fatal(err)
			}
			res := rebuild.Recompiler{ConfigPath: path}.Rebuild(cmd.Context())
			switch res.Outcome {
			case rebuild.Success:
				fmt.Println(res.Binary)
			case rebuild.NoConfigFound:
				fatal(fmt.Errorf("no config found at %s", path))
			default:
				fatal(errors.New(res.Message))
			}
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate and print the config",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			path, err := configPath(options)
			if err != nil {
				fatal(err)
			}
			cfg, err := config.Load(config.NewDriver(path))
			if err != nil {
				fatal(err)
			}

			pp.Println(cfg)
			for _, kb := range cfg.Keybindings {
				fmt.Printf("%-24s %-20s %s\n", cfg.ExpandKey(kb.Key), kb.Action, keys.FormatArg(kb.Arg))
			}
		}),
	})

	cli.Run()
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func configPath(options *Options) (string, error) {
	if options.Config != "" {
		return filepath.Abs(options.Config)
	}
	return config.DefaultPath()
}

// loadConfig falls back to the defaults so a broken config never leaves the
// session without a window manager.
func loadConfig(path string) config.Config {
	cfg, err := config.Load(config.NewDriver(path))
	switch {
	case errors.Is(err, config.ErrNotFound):
		slog.Info("No config found, using defaults", "path", path)
		return config.Default()
	case err != nil:
		slog.Error("Failed to load config, using defaults", "path", path, "error", err)
		return config.Default()
	}
	return cfg
}

func serve(ctx context.Context, options *Options) error {
	path, err := configPath(options)
	if err != nil {
		return err
	}
	cfg := loadConfig(path)

	display, err := xwm.Open(cfg.Appearance.Font)
	if err != nil {
		return err
	}

	runner := status.NewRunner(cfg.Status.Workers, cfg.Status.Timeout.Std())
	w := wm.New(display, cfg, wm.Options{
		Runner:    runner,
		Rebuilder: rebuild.Recompiler{ConfigPath: path},
	})

	super := sutureext.NewSimple("xtile")
	sutureext.Add(super, runner)
	listen := options.Listen
	if listen == "" {
		listen = cfg.API.Listen
	}
	if listen != "" {
		srv, err := api.NewServer(listen, cfg.API.AllowRemote, w)
		if err != nil {
			slog.Error("Not starting control API", "error", err)
		} else {
			sutureext.Add(super, srv)
		}
	}

	superCtx, cancel := context.WithCancel(ctx)
	superErrC := super.ServeBackground(superCtx)

	exit, err := w.Run(ctx)
	cancel()
	if serr := <-superErrC; serr != nil && !errors.Is(serr, context.Canceled) {
		slog.Warn("Supervisor stopped", "error", serr)
	}
	if err != nil {
		return err
	}

	if exit.Restart {
		return restart(exit.Binary)
	}
	return nil
}

// restart replaces the process with binary, keeping the arguments.
func restart(binary string) error {
	if binary == "" {
		var err error
		if binary, err = os.Executable(); err != nil {
			return err
		}
	}
	slog.Info("Restarting", "binary", binary)
	return syscall.Exec(binary, append([]string{binary}, os.Args[1:]...), os.Environ())
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	doneC := make(chan struct{})
	hooks.OnStart(func() {
		defer close(doneC)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)
		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
			<-errC
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
		}
	})
	hooks.OnStop(func() {
		select {
		case stopC <- struct{}{}:
			<-doneC
		case <-doneC:
		}
	})
}
