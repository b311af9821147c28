package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var workspaceCommit = &cobra.Command{
	Use:   "commit",
	Short: "Commit changes to a workspace",
	Long: "Commit a batch of entity changes as the new workspace head. " +
		"The batch is read from a YAML file and applies all-or-nothing.",
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
		changes, err := paramsToChanges(modelvcFlags)
		if err != nil {
			wrapFatalln("load changes", err)
			return
		}
		rev, err := core.CommitChanges(spec, changes, paramsToContributor(modelvcFlags),
			modelvcFlags.workspace.Commit.Message, stores)
		if err != nil {
			wrapFatalln("commit changes", err)
			return
		}
		printYAML(rev)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(workspaceCommit),
		addWorkspaceFlag(workspaceCommit),
		addChangesFileFlag(workspaceCommit),
		addMessageFlag(workspaceCommit),
	}
	addWorkspaceTypeFlag(workspaceCommit)
	addPatchFlag(workspaceCommit)
	addContributorNameFlag(workspaceCommit)
	addContributorEmailFlag(workspaceCommit)

	for _, flag := range requiredFlags {
		if err := workspaceCommit.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceCommit)
}
