package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var patchDelete = &cobra.Command{
	Use:   "delete",
	Short: "Delete a patch line",
	Long: "Delete a patch line and its scoped state. The deletion is refused while " +
		"workspaces or open reviews still ride on the patch.",
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
		if err := core.DeletePatch(modelvcFlags.project.ID, sourceVersion, stores); err != nil {
			wrapFatalln("delete patch", err)
			return
		}
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(patchDelete),
		addSourceVersionFlag(patchDelete),
	}
	for _, flag := range requiredFlags {
		if err := patchDelete.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	patchCmd.AddCommand(patchDelete)
}
