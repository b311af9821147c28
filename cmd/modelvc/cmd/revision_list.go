package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var revisionCmd = &cobra.Command{
	Use:   "revision",
	Short: "Commands to inspect revision histories",
}

var revisionList = &cobra.Command{
	Use:   "list",
	Short: "List revisions",
	Long:  "List the revisions of a stream or workspace, newest first",
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
		err = core.ListRevisionsApply(line, model.RevisionFilter{}, stores, func(rev model.Revision) error {
			infoLogger.Printf("%s , %s , %s , %s",
				rev.ID, rev.CommittedAt.Format("2006-01-02 15:04:05"), rev.AuthorName, rev.Message)
			return nil
		})
		if err != nil {
			wrapFatalln("list revisions", err)
			return
		}
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(revisionList)}
	addWorkspaceFlag(revisionList)
	addWorkspaceTypeFlag(revisionList)
	addPatchFlag(revisionList)

	for _, flag := range requiredFlags {
		if err := revisionList.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	revisionCmd.AddCommand(revisionList)
	rootCmd.AddCommand(revisionCmd)
}
