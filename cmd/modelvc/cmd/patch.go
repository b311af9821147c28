package cmd

import (
	"github.com/spf13/cobra"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Commands to manage patch release lines",
	Long: "Commands to manage patch release lines. A patch branches off a released " +
		"version for targeted fixes and seals exactly one follow-up version.",
}

func init() {
	rootCmd.AddCommand(patchCmd)
}
