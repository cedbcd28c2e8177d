package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [video_path]",
	Short: "Decode a video and check the hidden file's integrity",
	Long:  `Performs a full decode without writing anything to disk and reports whether the recovered bytes match the checksum recorded when the file was hidden.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, profile, err := decodeAny(args[0], profileOrder(), true)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to decode")
		}

		log.Info().
			Str("file", res.Name).
			Str("profile", profile).
			Int64("size", res.DeclaredSize).
			Int("frames", res.FramesScanned).
			Msg("Decoded")

		if !res.IntegrityOK {
			log.Error().Msg(res.Integrity)
			os.Exit(1)
		}
		log.Info().Msg(res.Integrity)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
