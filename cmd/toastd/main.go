// Package main is the entry point for the toastd popup daemon.
//
// toastd reads JSON-lines commands from stdin, shows the popups as
// layer-shell windows and writes popup events as JSON lines to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/daemon"
	"github.com/jmylchreest/toasty/internal/display"
	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

const appID = "io.github.jmylchreest.toastd"

var (
	// Build-time variables
	version = "dev"
)

type options struct {
	configPath string
	themesDir  string
	verbose    bool
	quiet      bool
	exitOnEOF  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file (default: ~/.config/toasty/toasty.toml)")
	flag.StringVar(&opts.themesDir, "themes-dir", "", "Directory of user themes (default: ~/.config/toasty/themes)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&opts.quiet, "quiet", false, "Do not show popups about config and theme reloads")
	flag.BoolVar(&opts.exitOnEOF, "exit-on-eof", false, "Exit once stdin is closed and every popup has closed")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastd version", version)
		os.Exit(0)
	}

	// Set up structured logging. Stdout carries events, so logs go to stderr.
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	os.Exit(run(opts, logger))
}

func run(opts options, logger *slog.Logger) int {
	logger.Info("starting toastd", "version", version)

	configPath := opts.configPath
	if configPath == "" {
		var err error
		if configPath, err = config.ConfigPath(); err != nil {
			logger.Error("failed to get config path", "error", err)
			return 1
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	themesDir := config.ExpandPath(opts.themesDir)
	if themesDir == "" {
		if themesDir, err = config.ThemesDir(); err != nil {
			logger.Warn("no themes directory", "error", err)
		}
	}

	// Create the libadwaita application
	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		svc           *daemon.Service
		driver        *display.Driver
		themeLoader   *display.ThemeLoader
		themeWatcher  *theme.Watcher
		audioManager  *audio.Manager
		configWatcher *config.Watcher
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopAll := func() {
		if configWatcher != nil {
			_ = configWatcher.Stop()
		}
		if themeWatcher != nil {
			themeWatcher.Stop()
		}
		if svc != nil {
			svc.Shutdown()
		}
		if driver != nil {
			driver.Stop()
		}
		if audioManager != nil {
			audioManager.Close()
		}
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		// Stop components in GTK main loop context
		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	// Handle application activation
	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		monitors, err := display.NewMonitors(logger)
		if err != nil {
			logger.Error("failed to open display", "error", err)
			app.Quit()
			return
		}

		// Initialize theme loader and follow theme files on disk
		themeLoader = display.NewThemeLoader(themesDir, logger)
		themeWatcher = theme.NewWatcher(logger)
		themeLoader.SetChangeCallback(func(def *theme.Theme, overrides []*theme.Theme) {
			themeWatcher.Reset()
			themeWatcher.Watch(append([]*theme.Theme{def}, overrides...)...)
		})
		if err := themeLoader.Load(cfg.Theme.Name, cfg.Theme.ColorScheme); err != nil {
			logger.Warn("failed to load theme, using default", "theme", cfg.Theme.Name, "error", err)
		}

		audioManager = audio.NewManager(cfg, nil, logger)
		driver = display.NewDriver(cfg.FrameInterval(), logger)

		host := display.NewHost(&app.Application, monitors, themeLoader, logger)
		host.SetCloseRegion(cfg.Display.CloseRegion)

		svc, err = daemon.New(daemon.Options{
			Config:   cfg,
			Factory:  host,
			Screens:  monitors,
			Driver:   driver,
			Audio:    audioManager,
			Events:   os.Stdout,
			Dispatch: func(fn func()) { glib.IdleAdd(fn) },
		}, logger)
		if err != nil {
			logger.Error("failed to start popup service", "error", err)
			app.Quit()
			return
		}
		host.SetEvents(svc.Registry())
		svc.Notifier().SetEnabled(!opts.quiet)

		themeWatcher.SetChangeCallback(func(t *theme.Theme) {
			glib.IdleAdd(func() {
				themeLoader.Update(t)
				svc.Notifier().NotifyThemeReloaded(t.Name)
			})
		})
		themeWatcher.Start(ctx)

		// Monitor hotplug and resolution changes re-anchor the stacks.
		monitors.SetChangeCallback(func(screens []toast.Screen) {
			for _, s := range screens {
				svc.Registry().RelayoutScreen(s.ID, s.Bounds)
			}
		})

		svc.OnReload(func(newConfig *config.Config) {
			driver.SetInterval(newConfig.FrameInterval())
			host.SetCloseRegion(newConfig.Display.CloseRegion)

			if newConfig.Theme != cfg.Theme {
				if err := themeLoader.Load(newConfig.Theme.Name, newConfig.Theme.ColorScheme); err != nil {
					logger.Warn("failed to load new theme", "theme", newConfig.Theme.Name, "error", err)
					svc.Notifier().NotifyThemeError(err)
				} else {
					svc.Notifier().NotifyThemeReloaded(newConfig.Theme.Name)
				}
			}
			cfg = newConfig
		})

		// Initialize config watcher for hot-reload
		configWatcher, err = config.NewWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetChangeCallback(svc.Reload)
			configWatcher.SetErrorCallback(svc.ConfigError)
			if err := configWatcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		go serveStdin(ctx, svc, opts.exitOnEOF, func() {
			glib.IdleAdd(func() { app.Quit() })
		}, logger)

		logger.Info("toastd ready", "screens", len(monitors.Screens()))
		svc.Notifier().NotifyStartup(version)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	// Handle shutdown
	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stopAll()
		running.Store(false)
	})

	// Run the application without handing our flags to GApplication.
	status := app.Run([]string{os.Args[0]})
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
	}
	return status
}

// serveStdin feeds stdin into the service. With exitOnEOF it calls quit
// once stdin is closed and the last popup has gone.
func serveStdin(ctx context.Context, svc *daemon.Service, exitOnEOF bool, quit func(), logger *slog.Logger) {
	err := svc.Serve(ctx, os.Stdin)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("failed to read commands", "error", err)
	}
	if !exitOnEOF || ctx.Err() != nil {
		return
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		// Wait a tick first so dispatched commands have run.
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if svc.Registry().Len() == 0 {
			logger.Info("stdin closed and no popups left, exiting")
			quit()
			return
		}
	}
}
