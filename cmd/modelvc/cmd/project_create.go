package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var projectCreate = &cobra.Command{
	Use:   "create",
	Short: "Create a named project",
	Long: "Create a project. Project names must be valid path segments: " +
		"letters, digits, underscores. Example: trading-models",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		descriptor, err := core.CreateProject(model.ProjectDescriptor{
			ID:          modelvcFlags.project.ID,
			Description: modelvcFlags.project.Description,
			Contributor: paramsToContributor(modelvcFlags),
		}, stores)
		if err != nil {
			wrapFatalln("create project", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(projectCreate)}
	addProjectDescriptionFlag(projectCreate)
	addContributorNameFlag(projectCreate)
	addContributorEmailFlag(projectCreate)

	for _, flag := range requiredFlags {
		if err := projectCreate.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	projectCmd.AddCommand(projectCreate)
}
