package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/core"
	"github.com/jmylchreest/toasty/internal/toast"
)

var simulateOpts struct {
	script   string
	frames   int
	fps      int
	every    int
	seed     uint64
	screens  []string
	events   bool
	format   string
	template string
	indent   bool
	noText   bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a command script without a display",
	Long: `Replay a script of JSON-lines commands against headless popups and print
what would be drawn.

Each frame advances the animation clock by 1/fps. Commands run once their
"at" offset is reached. Without --frames the run ends when the script is
done and every popup has closed.

Examples:
  # Show, wait, shake, and print every 10th frame as JSON
  toasty simulate --script demo.jsonl --every 10 --format json

  # Read the script from stdin on two screens
  echo '{"op":"show","title":"hi","screen":1}' | \
    toasty simulate --screen 1920x1080 --screen 2560x1440 --frames 60

  # Custom line per popup
  toasty simulate --script demo.jsonl --template '{{.ID}} {{.Y}}'`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	// Input flags
	simulateCmd.Flags().StringVar(&simulateOpts.script, "script", "-",
		"Command script to replay (- for stdin)")

	// Clock flags
	simulateCmd.Flags().IntVar(&simulateOpts.frames, "frames", 0,
		"Frames to run (0 = until every popup has closed)")
	simulateCmd.Flags().IntVar(&simulateOpts.fps, "fps", 0,
		"Frames per simulated second (default: display.frame_rate)")
	simulateCmd.Flags().IntVar(&simulateOpts.every, "every", 1,
		"Print a snapshot every N frames")
	simulateCmd.Flags().Uint64Var(&simulateOpts.seed, "seed", 1,
		"Seed for shake displacement")
	simulateCmd.Flags().StringSliceVar(&simulateOpts.screens, "screen", nil,
		"Screen size as WIDTHxHEIGHT, repeat for side-by-side screens (default: 1920x1080)")

	// Output flags
	simulateCmd.Flags().BoolVar(&simulateOpts.events, "events", false,
		"Also print shown, click and closed events")
	simulateCmd.Flags().StringVarP(&simulateOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, ids)")
	simulateCmd.Flags().StringVar(&simulateOpts.template, "template", "",
		"Custom Go template for plain output, applied to each popup")
	simulateCmd.Flags().BoolVar(&simulateOpts.indent, "indent", false,
		"Indent JSON output")
	simulateCmd.Flags().BoolVar(&simulateOpts.noText, "no-text", false,
		"Omit popup text from plain output")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(simulateOpts.format)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(format, output.FormatterOptions{
		Template: simulateOpts.template,
		ShowText: !simulateOpts.noText,
		Indent:   simulateOpts.indent,
	})
	if err != nil {
		return err
	}

	screens, err := parseScreens(simulateOpts.screens)
	if err != nil {
		return err
	}

	cmds, err := readScript(simulateOpts.script)
	if err != nil {
		return err
	}
	logger.Debug("loaded script", "commands", len(cmds))

	fps := simulateOpts.fps
	if fps <= 0 {
		fps = getConfig().Display.FrameRate
	}

	sim, err := core.NewSimulation(cmds, core.SimulationOptions{
		Config:  getConfig(),
		FPS:     fps,
		Frames:  simulateOpts.frames,
		Every:   simulateOpts.every,
		Screens: screens,
		Seed:    simulateOpts.seed,
	}, logger)
	if err != nil {
		return err
	}
	defer sim.Close()

	out := cmd.OutOrStdout()
	var onEvent func(input.Event) error
	if simulateOpts.events {
		onEvent = func(ev input.Event) error { return formatter.FormatEvent(out, ev) }
	}
	return sim.Run(func(s output.Snapshot) error { return formatter.Format(out, s) }, onEvent)
}

// readScript parses every command in the script. A malformed line aborts
// with its line number.
func readScript(path string) ([]input.Command, error) {
	var r io.Reader = os.Stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	cmds, err := input.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return cmds, nil
}

// parseScreens turns WIDTHxHEIGHT specs into screens laid out left to right.
func parseScreens(specs []string) ([]toast.Screen, error) {
	screens := make([]toast.Screen, 0, len(specs))
	x := 0
	for i, spec := range specs {
		var w, h int
		if _, err := fmt.Sscanf(strings.ToLower(spec), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
			return nil, fmt.Errorf("invalid screen %q: must be WIDTHxHEIGHT", spec)
		}
		screens = append(screens, toast.Screen{
			ID:     fmt.Sprint(i),
			Bounds: toast.Rect{X: x, Width: w, Height: h},
		})
		x += w
	}
	return screens, nil
}
