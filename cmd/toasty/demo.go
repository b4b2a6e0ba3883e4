package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/tui"
)

var demoOpts struct {
	noAltScreen bool
	mute        bool
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show popups in the terminal",
	Long: `Run the terminal demo. The terminal acts as one screen and every
popup is drawn as a block of cells.

Key bindings:
  n           New toast (cycles kinds, stays until closed)
  t           Timed toast (uses timeouts.hide_after)
  s           Shake the newest toast
  x           Close the oldest toast
  X           Close every toast
  c           Cycle the corner new toasts appear at
  ?           Show help
  q           Quit

Click a toast to close it, or click its × to close it without a click event.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoOpts.noAltScreen, "no-alt-screen", false,
		"Draw inline instead of using the alternate screen")
	demoCmd.Flags().BoolVar(&demoOpts.mute, "mute", false,
		"Disable sound cues even if audio is enabled")
}

func runDemo(cmd *cobra.Command, args []string) error {
	c := getConfig()

	opts := tui.RunOptions{
		Options: tui.Options{
			Config:    c,
			ThemesDir: themesDir(),
			Logger:    logger,
		},
		AltScreen: !demoOpts.noAltScreen,
	}

	if c.Audio.Enabled && !demoOpts.mute {
		sounds := audio.NewManager(c, nil, logger)
		defer sounds.Close()
		opts.Sounds = sounds
	}

	return tui.Run(opts)
}
