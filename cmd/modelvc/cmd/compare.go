package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Commands to compare entity sets",
	Long:  "Commands to compute entity-level diffs between revisions, workspaces and streams",
}

var compareFlags struct {
	from string
	to   string
}

var compareRevisions = &cobra.Command{
	Use:   "revisions",
	Short: "Compare two revisions of a line",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		line, err := paramsToLine(modelvcFlags)
		if err != nil {
			wrapFatalln("line", err)
			return
		}
		from, err := model.ParseRevisionAlias(compareFlags.from)
		if err != nil {
			wrapFatalln("from revision", err)
			return
		}
		to, err := model.ParseRevisionAlias(compareFlags.to)
		if err != nil {
			wrapFatalln("to revision", err)
			return
		}
		comparison, err := core.CompareRevisions(line, from, to, stores)
		if err != nil {
			wrapFatalln("compare revisions", err)
			return
		}
		printYAML(comparison)
	},
}

var compareWorkspace = &cobra.Command{
	Use:   "workspace",
	Short: "Compare a workspace against its base",
	Long:  "Diff the head of a workspace against its BASE: the changes accumulated since the workspace was rooted",
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
		comparison, err := core.GetWorkspaceCreationComparison(spec, stores)
		if err != nil {
			wrapFatalln("compare workspace", err)
			return
		}
		printYAML(comparison)
	},
}

var compareSource = &cobra.Command{
	Use:   "source",
	Short: "Compare a workspace against its source stream",
	Long:  "Diff the current source stream head against the workspace head: what merging the workspace would change",
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
		comparison, err := core.GetWorkspaceSourceComparison(spec, stores)
		if err != nil {
			wrapFatalln("compare workspace against source", err)
			return
		}
		printYAML(comparison)
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(compareRevisions)}
	addWorkspaceFlag(compareRevisions)
	addWorkspaceTypeFlag(compareRevisions)
	addPatchFlag(compareRevisions)
	compareRevisions.Flags().StringVar(&compareFlags.from, "from", "BASE",
		"The revision the diff starts from: BASE, HEAD or a literal revision id")
	compareRevisions.Flags().StringVar(&compareFlags.to, "to", "HEAD",
		"The revision the diff goes to: BASE, HEAD or a literal revision id")
	for _, flag := range requiredFlags {
		if err := compareRevisions.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	compareCmd.AddCommand(compareRevisions)

	for _, cmd := range []*cobra.Command{compareWorkspace, compareSource} {
		required := []string{
			addProjectFlag(cmd),
			addWorkspaceFlag(cmd),
		}
		addWorkspaceTypeFlag(cmd)
		addPatchFlag(cmd)
		for _, flag := range required {
			if err := cmd.MarkFlagRequired(flag); err != nil {
				logFatalln(err)
			}
		}
		compareCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(compareCmd)
}
