package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/spf13/cobra"
)

var entityGet = &cobra.Command{
	Use:   "get",
	Short: "Get an entity",
	Long:  "Retrieve a single entity at a revision of a stream or workspace",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		line, err := paramsToLine(modelvcFlags)
		if err != nil {
			wrapFatalln("line", err)
			return
		}
		alias, err := paramsToAlias(modelvcFlags)
		if err != nil {
			wrapFatalln("revision", err)
			return
		}
		entity, err := core.GetEntity(line, alias, modelvcFlags.entity.Path, stores)
		if err != nil {
			wrapFatalln("get entity", err)
			return
		}
		printYAML(entity)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(entityGet),
		addEntityPathFlag(entityGet),
	}
	addWorkspaceFlag(entityGet)
	addWorkspaceTypeFlag(entityGet)
	addPatchFlag(entityGet)
	addRevisionFlag(entityGet)

	for _, flag := range requiredFlags {
		if err := entityGet.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	entityCmd.AddCommand(entityGet)
}
