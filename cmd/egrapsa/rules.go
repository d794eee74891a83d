// Copyright Szymon Zygula, 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/szymon-zygula/egrapsa/internal/style"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate a style file and print its rules",
	Long: `Rules loads a style ruleset, reports any configuration error, and
prints the rules of each category in evaluation order together with the
configured renderings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("style")
		if path == "" {
			path = viper.GetString("style")
		}
		rs := style.Default()
		if path != "" {
			var err error
			if rs, err = style.Load(path); err != nil {
				return err
			}
		}
		rs.Describe(os.Stdout)
		return nil
	},
}

func init() {
	rulesCmd.Flags().String("style", "", "style ruleset file (default: built-in style)")

	rootCmd.AddCommand(rulesCmd)
}
