package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var workspaceCreate = &cobra.Command{
	Use:   "create",
	Short: "Create a workspace",
	Long:  "Create a workspace rooted at the current head of its source stream",
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
		descriptor, err := core.CreateWorkspace(spec, stores)
		if err != nil {
			wrapFatalln("create workspace", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(workspaceCreate),
		addWorkspaceFlag(workspaceCreate),
	}
	addWorkspaceTypeFlag(workspaceCreate)
	addPatchFlag(workspaceCreate)

	for _, flag := range requiredFlags {
		if err := workspaceCreate.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceCreate)
}
