package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var workspaceResolve = &cobra.Command{
	Use:   "resolve",
	Short: "Commands to settle a conflicting update",
	Long: "Commands to settle a conflicting update: inspect the pending conflicts, " +
		"accept a resolution or discard it and restore the workspace.",
}

var workspaceResolveGet = &cobra.Command{
	Use:   "get",
	Short: "Show the pending conflicts of a workspace",
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
		resolution, err := core.GetConflictResolution(spec, stores)
		if err != nil {
			wrapFatalln("get conflict resolution", err)
			return
		}
		printYAML(resolution)
	},
}

var workspaceResolveAccept = &cobra.Command{
	Use:   "accept",
	Short: "Accept a conflict resolution",
	Long: "Commit a resolution settling every conflicting path and promote it " +
		"as the workspace. The workspace base advances to the upstream head.",
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
		var changes []model.EntityChange
		if modelvcFlags.workspace.Commit.File != "" {
			changes, err = paramsToChanges(modelvcFlags)
			if err != nil {
				wrapFatalln("load changes", err)
				return
			}
		}
		descriptor, err := core.AcceptConflictResolution(spec, changes, paramsToContributor(modelvcFlags),
			modelvcFlags.workspace.Commit.Message, stores)
		if err != nil {
			wrapFatalln("accept conflict resolution", err)
			return
		}
		printYAML(descriptor)
	},
}

var workspaceResolveDiscard = &cobra.Command{
	Use:   "discard",
	Short: "Discard a conflict resolution",
	Long:  "Abandon a pending resolution and restore the workspace exactly as it was before the conflicting update",
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
		descriptor, err := core.DiscardConflictResolution(spec, stores)
		if err != nil {
			wrapFatalln("discard conflict resolution", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{workspaceResolveGet, workspaceResolveAccept, workspaceResolveDiscard} {
		requiredFlags := []string{
			addProjectFlag(cmd),
			addWorkspaceFlag(cmd),
		}
		addWorkspaceTypeFlag(cmd)
		addPatchFlag(cmd)
		for _, flag := range requiredFlags {
			if err := cmd.MarkFlagRequired(flag); err != nil {
				logFatalln(err)
			}
		}
		workspaceResolve.AddCommand(cmd)
	}
	addChangesFileFlag(workspaceResolveAccept)
	addMessageFlag(workspaceResolveAccept)
	addContributorNameFlag(workspaceResolveAccept)
	addContributorEmailFlag(workspaceResolveAccept)

	workspaceCmd.AddCommand(workspaceResolve)
}
