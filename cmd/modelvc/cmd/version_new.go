package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var versionNew = &cobra.Command{
	Use:   "new",
	Short: "Release a new version",
	Long: "Seal a revision of a stream under the next version id. The id is computed " +
		"from the latest version of the scope and the requested increment.",
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
		alias, err := model.ParseRevisionAlias(modelvcFlags.revision.Alias)
		if err != nil {
			wrapFatalln("revision", err)
			return
		}
		descriptor, err := core.NewVersion(stream, model.VersionIncrement(modelvcFlags.version.Increment),
			alias, modelvcFlags.version.Notes, stores)
		if err != nil {
			wrapFatalln("release version", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(versionNew)}
	addIncrementFlag(versionNew)
	addRevisionFlag(versionNew)
	addPatchFlag(versionNew)
	versionNew.Flags().StringVar(&modelvcFlags.version.Notes, "notes", "", "Release notes")

	for _, flag := range requiredFlags {
		if err := versionNew.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	versionCmd.AddCommand(versionNew)
}
