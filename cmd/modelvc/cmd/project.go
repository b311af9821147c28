package cmd

import (
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Commands to manage projects",
	Long:  "Commands to manage projects. A project holds named entities versioned on a main development line.",
}

func init() {
	rootCmd.AddCommand(projectCmd)
}
