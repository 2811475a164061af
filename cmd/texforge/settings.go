package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change texforge settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore()
		if err != nil {
			return err
		}
		fmt.Printf("texconv:         %s\n", valueOr(s.TexConvPath, "(not set)"))
		fmt.Printf("export dds:      %t\n", s.ExportDDS)
		fmt.Printf("overwrite dds:   %t\n", s.OverwriteDDS)
		fmt.Printf("adjust specular: %t\n", s.AdjustRed)
		fmt.Printf("red levels:      %g / %g / %g (black/gamma/white)\n", s.Red.Black, s.Red.Gamma, s.Red.White)
		fmt.Printf("green levels:    %g / %g / %g (black/gamma/white)\n", s.Green.Black, s.Green.Gamma, s.Green.White)
		fmt.Printf("output dir:      %s\n", valueOr(s.OutputDir, "(DDS subfolder next to source)"))
		fmt.Printf("active profile:  %s\n", s.ActiveProfile)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and persist it",
	Long: `Set mutates a single setting and writes the settings file through
immediately. Keys:

  texconv       path to the texconv executable
  export        true/false: convert after exports
  overwrite     true/false: replace existing DDS outputs
  adjust-red    true/false: apply levels to *_s.png / *_s.tga
  output-dir    output directory ("" = DDS subfolder next to each source)
  red-min, red-max, red-gamma
  green-black, green-white, green-gamma

Levels values are clamped: black stays below white, gamma within 0.10-3.00.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, s, err := openStore()
		if err != nil {
			return err
		}
		key, value := args[0], args[1]

		switch key {
		case "texconv":
			s.TexConvPath = value
		case "output-dir":
			s.OutputDir = value
		case "export", "overwrite", "adjust-red":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s expects true/false: %w", key, err)
			}
			switch key {
			case "export":
				s.ExportDDS = b
			case "overwrite":
				s.OverwriteDDS = b
			case "adjust-red":
				s.AdjustRed = b
			}
		case "red-min", "red-max", "red-gamma", "green-black", "green-white", "green-gamma":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%s expects a number: %w", key, err)
			}
			switch key {
			case "red-min":
				s.Red.Black = f
			case "red-max":
				s.Red.White = f
			case "red-gamma":
				s.Red.Gamma = f
			case "green-black":
				s.Green.Black = f
			case "green-white":
				s.Green.White = f
			case "green-gamma":
				s.Green.Gamma = f
			}
		default:
			return fmt.Errorf("unknown setting %q", key)
		}

		return store.SaveSettings(s)
	},
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
