package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var versionGet = &cobra.Command{
	Use:   "get",
	Short: "Get a released version",
	Long:  "Retrieve a released version of a stream, or the latest when no id is given",
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
		var descriptor model.VersionDescriptor
		if modelvcFlags.version.ID == "" {
			descriptor, err = core.GetLatestVersion(stream, stores)
		} else {
			var id model.VersionID
			id, err = model.ParseVersionID(modelvcFlags.version.ID)
			if err != nil {
				wrapFatalln("version", err)
				return
			}
			descriptor, err = core.GetVersion(stream, id, stores)
		}
		if err != nil {
			wrapFatalln("get version", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(versionGet)}
	addVersionFlag(versionGet)
	addPatchFlag(versionGet)

	for _, flag := range requiredFlags {
		if err := versionGet.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	versionCmd.AddCommand(versionGet)
}
