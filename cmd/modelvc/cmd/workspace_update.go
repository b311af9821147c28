package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var workspaceUpdate = &cobra.Command{
	Use:   "update",
	Short: "Update a workspace onto its stream head",
	Long: "Rebase a workspace onto the current head of its source stream. " +
		"When both sides modified the same entity with differing results the " +
		"workspace enters conflict resolution and the conflicting paths are reported.",
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
		result, err := core.UpdateWorkspace(spec, stores)
		if err != nil {
			wrapFatalln("update workspace", err)
			return
		}
		printYAML(result)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(workspaceUpdate),
		addWorkspaceFlag(workspaceUpdate),
	}
	addWorkspaceTypeFlag(workspaceUpdate)
	addPatchFlag(workspaceUpdate)

	for _, flag := range requiredFlags {
		if err := workspaceUpdate.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceUpdate)
}
