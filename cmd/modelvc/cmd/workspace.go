package cmd

import (
	"github.com/spf13/cobra"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Commands to manage workspaces",
	Long: "Commands to manage workspaces. A workspace is an isolated staging area " +
		"rooted at a revision of its source stream, where changes are committed " +
		"before being merged back.",
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
}
