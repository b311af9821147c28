package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var workspaceGet = &cobra.Command{
	Use:   "get",
	Short: "Get a workspace",
	Long:  "Retrieve the state, base and head of a workspace",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		spec, err := paramsToWorkspaceSpec(modelvcFlags)
		if err != nil {
			wrapFatalln("workspace spec", err)
			return
		}
		descriptor, err := core.GetWorkspace(spec, stores)
		if err != nil {
			wrapFatalln("get workspace", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(workspaceGet),
		addWorkspaceFlag(workspaceGet),
	}
	addWorkspaceTypeFlag(workspaceGet)
	addPatchFlag(workspaceGet)

	for _, flag := range requiredFlags {
		if err := workspaceGet.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceGet)
}
