package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/daemon"
	"github.com/jmylchreest/toasty/internal/frame"
	"github.com/jmylchreest/toasty/internal/headless"
	"github.com/jmylchreest/toasty/internal/toast"
)

var serveOpts struct {
	screens []string
	format  string
	linger  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command protocol without a display",
	Long: `Read JSON-lines commands from stdin and run them in real time against
headless popups, printing popup events to stdout.

This speaks the same protocol as toastd, which makes it useful for testing
scripts on machines without a Wayland session.

Examples:
  printf '{"op":"show","title":"hi","hide_after":"1s"}\n' | toasty serve
  toasty serve --format plain < script.jsonl`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringSliceVar(&serveOpts.screens, "screen", nil,
		"Screen size as WIDTHxHEIGHT, repeat for side-by-side screens (default: 1920x1080)")
	serveCmd.Flags().StringVarP(&serveOpts.format, "format", "f", "json",
		"Event output format (json, yaml, plain, ids)")
	serveCmd.Flags().BoolVar(&serveOpts.linger, "linger", true,
		"After stdin closes, wait for every popup to close before exiting")
}

func runServe(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(serveOpts.format)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(format, output.DefaultFormatterOptions())
	if err != nil {
		return err
	}

	screens, err := parseScreens(serveOpts.screens)
	if err != nil {
		return err
	}
	if len(screens) == 0 {
		screens = []toast.Screen{{ID: "0", Bounds: toast.Rect{Width: 1920, Height: 1080}}}
	}

	c := getConfig()
	ticker := frame.NewTicker(c.FrameInterval(), logger)
	defer ticker.Stop()

	svc, err := daemon.New(daemon.Options{
		Config:  c,
		Factory: headless.NewHost(),
		Screens: toast.NewScreenSet(screens...),
		Driver:  ticker,
		Events:  cmd.OutOrStdout(),
		Format:  formatter,
	}, logger)
	if err != nil {
		return err
	}
	defer svc.Shutdown()
	// Reload notices are for a desktop user, not for piped output.
	svc.Notifier().SetEnabled(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Serve(ctx, cmd.InOrStdin()); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if !serveOpts.linger {
		return nil
	}

	// Check after each tick so the last closed event has been written.
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
		}
		if svc.Registry().Len() == 0 {
			return nil
		}
	}
}
