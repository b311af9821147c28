package cmd

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Commands to manage released versions",
	Long: "Commands to manage released versions. A version is a write-once tag " +
		"sealing one revision of a stream under a (major, minor, patch) id.",
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
