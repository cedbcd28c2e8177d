package main

import (
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/framevault/framevault/pkg/vault"
)

// Global flags
var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "framevault",
	Short: "Hide files in synthetic videos",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// profileOrder lists the preset names with the default first, the rest
// alphabetical, so decode attempts are deterministic.
func profileOrder() []string {
	names := make([]string, 0, len(vault.Profiles))
	for name := range vault.Profiles {
		if name != vault.DefaultProfile {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{vault.DefaultProfile}, names...)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
