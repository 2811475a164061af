package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/texforge/texforge/internal/formats"
)

var mapProfile string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage conversion profiles and their suffix mappings",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, settings, err := openStore()
		if err != nil {
			return err
		}
		names, err := store.ListProfiles()
		if err != nil {
			return err
		}
		for _, name := range names {
			marker := " "
			if name == settings.ActiveProfile {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile's suffix mappings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, settings, err := openStore()
		if err != nil {
			return err
		}
		name := settings.ActiveProfile
		if len(args) == 1 {
			name = args[0]
		}
		m, err := store.LoadProfile(name)
		if err != nil {
			return err
		}
		if len(m) == 0 {
			fmt.Printf("profile %s has no suffix mappings; unmatched files use %s\n", name, formats.DefaultFormat)
			return nil
		}
		suffixes := make([]string, 0, len(m))
		for s := range m {
			suffixes = append(suffixes, s)
		}
		sort.Strings(suffixes)
		for _, s := range suffixes {
			fmt.Printf("%-12s %s\n", s, m[s])
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		if err := store.SetActiveProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("active profile: %s\n", args[0])
		return nil
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		if _, err := store.LoadProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("created profile %s\n", args[0])
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile and its suffix mappings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		return store.DeleteProfile(args[0])
	},
}

var profileMapCmd = &cobra.Command{
	Use:   "map <suffix> <format>",
	Short: "Map a filename suffix to a DDS format",
	Long: `Map adds a suffix mapping to a profile. Suffix keys are case-sensitive:
"d" and "D" are distinct entries, although resolution tolerates either case
when a filename's suffix has no exact match. Adding a suffix that already
exists is rejected; use "profile remap" to change an existing mapping.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, settings, err := openStore()
		if err != nil {
			return err
		}
		profile := settings.ActiveProfile
		if cmd.Flags().Changed("profile") {
			profile = mapProfile
		}
		return store.AddSuffix(profile, args[0], formats.Format(args[1]))
	},
}

var profileRemapCmd = &cobra.Command{
	Use:   "remap <suffix> <format>",
	Short: "Change the format of an existing suffix mapping",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, settings, err := openStore()
		if err != nil {
			return err
		}
		profile := settings.ActiveProfile
		if cmd.Flags().Changed("profile") {
			profile = mapProfile
		}
		return store.SetFormat(profile, args[0], formats.Format(args[1]))
	},
}

var profileUnmapCmd = &cobra.Command{
	Use:   "unmap <suffix>",
	Short: "Remove a suffix mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, settings, err := openStore()
		if err != nil {
			return err
		}
		profile := settings.ActiveProfile
		if cmd.Flags().Changed("profile") {
			profile = mapProfile
		}
		return store.RemoveSuffix(profile, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{profileMapCmd, profileRemapCmd, profileUnmapCmd} {
		c.Flags().StringVar(&mapProfile, "profile", "", "profile to modify (default: active profile)")
	}
	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileUseCmd,
		profileCreateCmd, profileDeleteCmd, profileMapCmd, profileRemapCmd, profileUnmapCmd)
	rootCmd.AddCommand(profileCmd)
}
