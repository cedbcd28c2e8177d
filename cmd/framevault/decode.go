package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/framevault/framevault/pkg/vault"
	"github.com/framevault/framevault/pkg/video"
)

var (
	decodeFlags struct {
		Video   string
		Out     string
		Profile string
	}
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Recover a hidden file from a video",
	Run: func(cmd *cobra.Command, args []string) {
		names := profileOrder()
		if decodeFlags.Profile != "" {
			if _, ok := vault.Profiles[decodeFlags.Profile]; !ok {
				log.Fatal().Str("profile", decodeFlags.Profile).Msg("unknown profile")
			}
			names = []string{decodeFlags.Profile}
		}

		res, profile, err := decodeAny(decodeFlags.Video, names, true)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to decode")
		}

		out := decodeFlags.Out
		if out == "" {
			out = availablePath(res.Name)
		} else if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatal().Err(err).Msg("Failed to create output directory")
			}
		}

		if err := os.WriteFile(out, res.Data, 0644); err != nil {
			log.Fatal().Err(err).Msg("Failed to write recovered file")
		}

		log.Info().
			Str("output", out).
			Str("profile", profile).
			Int64("size", res.DeclaredSize).
			Int("frames", res.FramesScanned).
			Msg("Decoded")
		if !res.IntegrityOK {
			log.Warn().Msg(res.Integrity)
			os.Exit(1)
		}
		log.Info().Msg(res.Integrity)
	},
}

// decodeAny tries the named profiles in order until one yields a payload.
// Errors that mean "wrong profile, keep looking" are collected; any other
// error from a profile whose geometry matched is terminal.
func decodeAny(path string, names []string, full bool) (*vault.DecodeResult, string, error) {
	var lastErr error
	for _, name := range names {
		cfg := vault.Profiles[name]
		codec, err := vault.NewCodec(cfg)
		if err != nil {
			return nil, "", err
		}

		source, err := video.OpenPipe(path)
		if err != nil {
			return nil, "", err
		}

		var res *vault.DecodeResult
		if full {
			var progress vault.ProgressFunc
			if len(names) == 1 {
				progress = newBarProgress(" 🔍 Decoding")
			}
			res, err = codec.Decode(context.Background(), vault.DecodeOptions{
				Source:   source,
				Progress: progress,
				Logger:   log.Logger,
			})
		} else {
			var hdr *vault.Header
			hdr, err = codec.Inspect(context.Background(), source)
			if err == nil {
				res = &vault.DecodeResult{Name: hdr.Name, DeclaredSize: hdr.Size, Header: *hdr}
			}
		}
		source.Close()

		if err == nil {
			return res, name, nil
		}
		if !retriable(err) {
			return nil, "", err
		}
		log.Debug().Err(err).Str("profile", name).Msg("profile did not match")
		lastErr = err
	}
	return nil, "", fmt.Errorf("no profile matched: %w", lastErr)
}

// retriable reports whether an error can come from scanning with the wrong
// profile rather than from a genuinely broken stream.
func retriable(err error) bool {
	return errors.Is(err, vault.ErrNotVault) ||
		errors.Is(err, vault.ErrConfig) ||
		errors.Is(err, vault.ErrVersion) ||
		errors.Is(err, vault.ErrHeaderLength) ||
		errors.Is(err, vault.ErrHeaderChecksum) ||
		errors.Is(err, vault.ErrHeaderFields)
}

// availablePath appends _1, _2, ... before the extension until the name is
// free, so a decode never clobbers an existing file.
func availablePath(name string) string {
	if name == "" {
		name = "recovered.bin"
	}
	name = filepath.Base(name)
	if _, err := os.Stat(name); os.IsNotExist(err) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVarP(&decodeFlags.Video, "video", "i", "", "Path to the video to scan (required)")
	decodeCmd.MarkFlagRequired("video")
	decodeCmd.Flags().StringVarP(&decodeFlags.Out, "output", "o", "", "Output path for the recovered file (default: embedded name)")
	decodeCmd.Flags().StringVarP(&decodeFlags.Profile, "profile", "p", "", "Only try this profile instead of all presets")
}
