package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/clut/internal/program"
)

var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clut version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "default build options: %s\n", program.DefaultBuildOptions)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
