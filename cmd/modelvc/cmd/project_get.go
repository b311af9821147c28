package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var projectGet = &cobra.Command{
	Use:   "get",
	Short: "Get a project",
	Long:  "Retrieve the descriptor of a project",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		descriptor, err := core.GetProject(modelvcFlags.project.ID, stores)
		if err != nil {
			wrapFatalln("get project", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(projectGet)}
	for _, flag := range requiredFlags {
		if err := projectGet.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	projectCmd.AddCommand(projectGet)
}
