// Package cli contains the colortrack command line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	configFlag  = "config"
	debugFlag   = "debug"
	logFileFlag = "log-file"

	trackFlagModel      = "model"
	trackFlagFrames     = "frames"
	trackFlagOut        = "out"
	trackFlagWidth      = "width"
	trackFlagHeight     = "height"
	trackFlagHintX      = "hint-x"
	trackFlagHintY      = "hint-y"
	trackFlagCandidates = "candidates"
	trackFlagSeed       = "seed"
)

var app = &cli.App{
	Name:            "colortrack",
	Usage:           "follow a colored object through a sequence of frames",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "load tracking configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.PathFlag{
			Name:  logFileFlag,
			Usage: "also write JSON logs to `FILE`, rotated as it grows",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "track",
			Usage:     "track the colors of a model image through a directory of frames",
			UsageText: "colortrack [global options] track --model <image> --frames <dir> --out <dir> [other options]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     trackFlagModel,
					Required: true,
					Usage:    "reference image of the object",
				},
				&cli.PathFlag{
					Name:     trackFlagFrames,
					Required: true,
					Usage:    "directory of frames, tracked in lexical order",
				},
				&cli.PathFlag{
					Name:     trackFlagOut,
					Required: true,
					Usage:    "directory the annotated frames are written to",
				},
				&cli.IntFlag{
					Name:  trackFlagWidth,
					Usage: "search area width; frames are scaled to it. Defaults to the first frame's width",
				},
				&cli.IntFlag{
					Name:  trackFlagHeight,
					Usage: "search area height; frames are scaled to it. Defaults to the first frame's height",
				},
				&cli.IntFlag{
					Name:  trackFlagHintX,
					Usage: "x of the first frame's hint window",
				},
				&cli.IntFlag{
					Name:  trackFlagHintY,
					Usage: "y of the first frame's hint window",
				},
				&cli.IntFlag{
					Name:  trackFlagCandidates,
					Usage: "candidate windows per frame",
				},
				&cli.Int64Flag{
					Name:  trackFlagSeed,
					Usage: "seed for candidate placement; 0 seeds from the clock",
				},
			},
			Action: TrackAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
