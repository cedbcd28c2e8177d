package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/framevault/framevault/pkg/vault"
	"github.com/framevault/framevault/pkg/video"
)

var (
	encodeFlags struct {
		File       string
		Out        string
		Profile    string
		Width      int
		Height     int
		Block      int
		Quant      int
		Redundancy int
		FPS        int
	}
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Hide a file inside a generated video",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := vault.Profiles[encodeFlags.Profile]
		if !ok {
			log.Fatal().Str("profile", encodeFlags.Profile).Msg("unknown profile")
		}
		if cmd.Flags().Changed("width") {
			cfg.Width = encodeFlags.Width
		}
		if cmd.Flags().Changed("height") {
			cfg.Height = encodeFlags.Height
		}
		if cmd.Flags().Changed("block-size") {
			cfg.BlockSize = encodeFlags.Block
		}
		if cmd.Flags().Changed("quant") {
			cfg.Quant = encodeFlags.Quant
		}
		if cmd.Flags().Changed("redundancy") {
			cfg.Redundancy = encodeFlags.Redundancy
		}
		if cmd.Flags().Changed("fps") {
			cfg.FPS = encodeFlags.FPS
		}

		codec, err := vault.NewCodec(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}

		data, err := os.ReadFile(encodeFlags.File)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read input file")
		}

		out := encodeFlags.Out
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(encodeFlags.File), filepath.Ext(encodeFlags.File))
			out = base + ".mp4"
		}
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatal().Err(err).Msg("Failed to create output directory")
			}
		}

		cover := video.NewResilient(
			video.NewPlasma(cfg.Width, cfg.Height),
			cfg.Width, cfg.Height, 2*time.Second,
		)

		res, err := codec.Encode(context.Background(), filepath.Base(encodeFlags.File), data, vault.EncodeOptions{
			Cover:    cover,
			Service:  video.NewPipeEncoder(8),
			Progress: newBarProgress(" 🎞 Encoding"),
			Logger:   log.Logger,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode")
		}

		if err := os.WriteFile(out, res.Video, 0644); err != nil {
			log.Fatal().Err(err).Msg("Failed to write output video")
		}

		log.Info().
			Str("output", out).
			Int("frames", res.TotalFrames).
			Int("dataFrames", res.DataFrames).
			Int64("fileSize", res.FileSize).
			Int64("videoSize", res.OutputSize).
			Str("checksum", fmt.Sprintf("%08x", res.Checksum)).
			Dur("duration", res.Duration).
			Msg("Encoded")
	},
}

// newBarProgress adapts a terminal progress bar to the engine's callback.
func newBarProgress(desc string) vault.ProgressFunc {
	bar := progressbar.NewOptions(
		100,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return func(percent float64, message string) {
		bar.Describe(desc + ": " + message)
		bar.Set(int(percent))
	}
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVarP(&encodeFlags.File, "file", "f", "", "Path to the file to hide (required)")
	encodeCmd.MarkFlagRequired("file")
	encodeCmd.Flags().StringVarP(&encodeFlags.Out, "output", "o", "", "Output path for the video (default: <file>.mp4)")
	encodeCmd.Flags().StringVarP(&encodeFlags.Profile, "profile", "p", vault.DefaultProfile, "Encoding profile: youtube, local")
	encodeCmd.Flags().IntVar(&encodeFlags.Width, "width", 0, "Override frame width")
	encodeCmd.Flags().IntVar(&encodeFlags.Height, "height", 0, "Override frame height")
	encodeCmd.Flags().IntVar(&encodeFlags.Block, "block-size", 0, "Override embedding block size")
	encodeCmd.Flags().IntVar(&encodeFlags.Quant, "quant", 0, "Override quantization step")
	encodeCmd.Flags().IntVar(&encodeFlags.Redundancy, "redundancy", 0, "Override redundancy factor")
	encodeCmd.Flags().IntVar(&encodeFlags.FPS, "fps", 0, "Override frames per second")
}
