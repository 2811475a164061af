package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/texforge/texforge/internal/formats"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the DDS formats suffixes can map to",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range formats.All {
			if f == formats.DefaultFormat {
				fmt.Printf("%s (default)\n", f)
				continue
			}
			fmt.Println(f)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
