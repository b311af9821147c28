package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var workspaceDiscard = &cobra.Command{
	Use:   "discard",
	Short: "Discard all local changes of a workspace",
	Long: "Discard all local changes of a workspace. The workspace is re-rooted " +
		"at the current head of its source stream, dropping any pending conflict resolution.",
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
		workspace, err := core.DiscardChanges(spec, stores)
		if err != nil {
			wrapFatalln("discard changes", err)
			return
		}
		printYAML(workspace)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(workspaceDiscard),
		addWorkspaceFlag(workspaceDiscard),
	}
	addWorkspaceTypeFlag(workspaceDiscard)
	addPatchFlag(workspaceDiscard)

	for _, flag := range requiredFlags {
		if err := workspaceDiscard.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceDiscard)
}
