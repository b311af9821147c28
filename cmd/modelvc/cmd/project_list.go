package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var projectList = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long:  "List the projects registered in the store",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		err = core.ListProjectsApply(stores, func(descriptor model.ProjectDescriptor) error {
			infoLogger.Printf("%s , %s , %s", descriptor.ID, descriptor.Description, descriptor.Contributor.String())
			return nil
		})
		if err != nil {
			wrapFatalln("list projects", err)
			return
		}
	},
}

func init() {
	projectCmd.AddCommand(projectList)
}
