package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var workspaceDelete = &cobra.Command{
	Use:   "delete",
	Short: "Delete a workspace",
	Long:  "Delete a workspace and its shadow copies. Deleting an absent workspace succeeds.",
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
		if err := core.DeleteWorkspace(spec, stores); err != nil {
			wrapFatalln("delete workspace", err)
			return
		}
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(workspaceDelete),
		addWorkspaceFlag(workspaceDelete),
	}
	addWorkspaceTypeFlag(workspaceDelete)
	addPatchFlag(workspaceDelete)

	for _, flag := range requiredFlags {
		if err := workspaceDelete.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceDelete)
}
