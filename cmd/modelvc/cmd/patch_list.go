package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var patchList = &cobra.Command{
	Use:   "list",
	Short: "List patch lines",
	Long:  "List the patch lines of a project, ordered by source version",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		err = core.ListPatchesApply(modelvcFlags.project.ID, model.VersionBounds{}, stores,
			func(descriptor model.PatchDescriptor) error {
				released := "open"
				if descriptor.Released {
					released = "released as " + descriptor.ReleasedVersion.String()
				}
				infoLogger.Printf("%s , head %s , %s", descriptor.SourceVersion, descriptor.HeadRevisionID, released)
				return nil
			})
		if err != nil {
			wrapFatalln("list patches", err)
			return
		}
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(patchList)}
	for _, flag := range requiredFlags {
		if err := patchList.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	patchCmd.AddCommand(patchList)
}
