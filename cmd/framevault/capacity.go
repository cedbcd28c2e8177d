package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/framevault/framevault/pkg/vault"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show per-frame and per-second payload capacity of each profile",
	Run: func(cmd *cobra.Command, args []string) {
		wtr := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Profile\tGeometry\tBlock\tQuant\tRedundancy\tBytes/Frame\tBytes/Second")
		fmt.Fprintln(wtr, "-------\t--------\t-----\t-----\t----------\t-----------\t------------")

		for _, name := range profileOrder() {
			cfg := vault.Profiles[name]
			cap := cfg.Capacity()
			fmt.Fprintf(wtr, "%s\t%dx%d\t%d\t%d\t%d\t%d\t%d\n",
				name, cfg.Width, cfg.Height, cfg.BlockSize, cfg.Quant, cfg.Redundancy,
				cap.EffectiveBytes, cap.EffectiveBytes*cfg.FPS)
		}

		wtr.Flush()
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}
