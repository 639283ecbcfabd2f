// Package main provides glidectl, a command line front end for the caption
// glider engine: parse scripts, inspect cues, allocate word timing, build
// playback schedules and render EDL exports without running the service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/config"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/export"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/profile"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/script"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/sequence"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/timing"
)

var (
	profilesFile string
	startProfile string

	rootCmd = &cobra.Command{
		Use:           "glidectl",
		Short:         "Word-level caption glider toolbox",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&profilesFile, "profiles", "", "YAML file with extra pacing profiles")
	rootCmd.PersistentFlags().StringVar(&startProfile, "profile", "", "profile active before the first directive")

	rootCmd.AddCommand(parseCmd(), cuesCmd(), allocateCmd(), sequenceCmd(), exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRegistry() (*profile.Registry, error) {
	reg := profile.NewRegistry()
	if profilesFile != "" {
		if err := reg.LoadFile(profilesFile); err != nil {
			return nil, fmt.Errorf("loading profiles: %w", err)
		}
	}
	return reg, nil
}

// readInput reads the named file, or stdin for "-".
func readInput(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(arg)
	return string(data), err
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Parse an inline script into segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return err
			}
			segments := script.Parse(splitLines(text), script.NormalizeProfile(startProfile))
			return writeJSON(segments)
		},
	}
}

func cuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cues [SRT|-]",
		Short: "Parse an SRT file into caption cues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return err
			}
			return writeJSON(subtitle.ParseSRT(text))
		},
	}
}

func allocateCmd() *cobra.Command {
	var startMs, endMs float64

	cmd := &cobra.Command{
		Use:   "allocate TEXT",
		Short: "Distribute a time window across the words of one line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if endMs < startMs {
				return fmt.Errorf("end must not precede start")
			}
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			tc := reg.Lookup(startProfile).Timing
			return writeJSON(timing.Allocate(args[0], startMs, endMs, tc))
		},
	}
	cmd.Flags().Float64Var(&startMs, "start", 0, "window start in ms")
	cmd.Flags().Float64Var(&endMs, "end", 2000, "window end in ms")
	return cmd
}

func sequenceCmd() *cobra.Command {
	var srtPath string

	cmd := &cobra.Command{
		Use:   "sequence [SCRIPT|-]",
		Short: "Build the playback schedule for a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return err
			}
			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			segments := script.Parse(splitLines(text), script.NormalizeProfile(startProfile))

			var lines []sequence.Line
			if srtPath != "" {
				srt, err := readInput(srtPath)
				if err != nil {
					return err
				}
				lines = sequence.BuildFromCues(segments, subtitle.ParseSRT(srt), reg, sequence.DefaultOptions())
			} else {
				lines = sequence.Build(segments, reg, sequence.DefaultOptions())
			}
			return writeJSON(lines)
		},
	}
	cmd.Flags().StringVar(&srtPath, "srt", "", "SRT file whose cue timing overrides the script heuristic")
	return cmd
}

func exportCmd() *cobra.Command {
	var title string
	var frameRate float64
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [SRT|-]",
		Short: "Render caption cues as a CMX 3600 EDL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return err
			}
			cues := subtitle.ParseSRT(text)
			if len(cues) == 0 {
				return fmt.Errorf("no cues in input")
			}

			name := export.SanitizeName(title, 120)
			if name == "" {
				name = "captions"
			}

			edl := export.GenerateCaptionEDL(cues, name, frameRate)
			if outDir == "" {
				fmt.Print(edl)
				return nil
			}

			if err := export.ValidateOutputDir(outDir); err != nil {
				return err
			}
			outPath := filepath.Join(outDir, name+".edl")
			if err := os.WriteFile(outPath, []byte(edl), 0o644); err != nil {
				return err
			}
			fmt.Println(outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "captions", "EDL title and output file stem")
	cmd.Flags().Float64Var(&frameRate, "fps", 30, "timeline frame rate")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (stdout when empty)")
	return cmd
}
