package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var patchCreate = &cobra.Command{
	Use:   "create",
	Short: "Create a patch line",
	Long:  "Open a patch release line rooted at a released version of the project",
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
		descriptor, err := core.NewPatch(modelvcFlags.project.ID, sourceVersion, stores)
		if err != nil {
			wrapFatalln("create patch", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(patchCreate),
		addSourceVersionFlag(patchCreate),
	}
	for _, flag := range requiredFlags {
		if err := patchCreate.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	patchCmd.AddCommand(patchCreate)
}
