package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var workspaceList = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	Long:  "List the primary workspaces of one type on a stream",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		stream, err := paramsToStream(modelvcFlags)
		if err != nil {
			wrapFatalln("stream", err)
			return
		}
		workspaces, err := core.ListWorkspaces(stream, model.WorkspaceType(modelvcFlags.workspace.Type), stores)
		if err != nil {
			wrapFatalln("list workspaces", err)
			return
		}
		for _, descriptor := range workspaces {
			infoLogger.Printf("%s , %s , base %s , head %s",
				descriptor.Spec.WorkspaceID, descriptor.State, descriptor.BaseRevisionID, descriptor.HeadRevisionID)
		}
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(workspaceList)}
	addWorkspaceTypeFlag(workspaceList)
	addPatchFlag(workspaceList)

	for _, flag := range requiredFlags {
		if err := workspaceList.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	workspaceCmd.AddCommand(workspaceList)
}
