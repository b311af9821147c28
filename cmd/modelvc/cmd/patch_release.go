package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var patchRelease = &cobra.Command{
	Use:   "release",
	Short: "Release a patch line",
	Long: "Seal the current head of a patch line as the next patch version of its " +
		"source, e.g. releasing the patch of 1.2.3 yields 1.2.4",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		sourceVersion, err := model.ParseVersionID(modelvcFlags.patch.SourceVersion)
		if err != nil {
			wrapFatalln("source version", err)
			return
		}
		descriptor, err := core.ReleasePatch(modelvcFlags.project.ID, sourceVersion, modelvcFlags.patch.Notes, stores)
		if err != nil {
			wrapFatalln("release patch", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(patchRelease),
		addSourceVersionFlag(patchRelease),
	}
	addNotesFlag(patchRelease)
	for _, flag := range requiredFlags {
		if err := patchRelease.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	patchCmd.AddCommand(patchRelease)
}
