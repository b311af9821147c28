package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var versionList = &cobra.Command{
	Use:   "list",
	Short: "List released versions",
	Long:  "List the versions released on a stream's scope, in ascending version order",
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
		versions, err := core.ListVersions(stream, model.VersionBounds{}, stores)
		if err != nil {
			wrapFatalln("list versions", err)
			return
		}
		for _, descriptor := range versions {
			infoLogger.Printf("%s , revision %s , %s",
				descriptor.ID, descriptor.RevisionID, descriptor.Timestamp.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(versionList)}
	addPatchFlag(versionList)

	for _, flag := range requiredFlags {
		if err := versionList.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	versionCmd.AddCommand(versionList)
}
