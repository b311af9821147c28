package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var entityList = &cobra.Command{
	Use:   "list",
	Short: "List entities",
	Long:  "List the entities at a revision of a stream or workspace, ordered by path",
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
		err = core.ListEntitiesApply(line, alias, nil, stores, func(entity model.Entity) error {
			infoLogger.Printf("%s , %s", entity.Path, entity.ClassifierPath)
			return nil
		})
		if err != nil {
			wrapFatalln("list entities", err)
			return
		}
	},
}

func init() {
	requiredFlags := []string{addProjectFlag(entityList)}
	addWorkspaceFlag(entityList)
	addWorkspaceTypeFlag(entityList)
	addPatchFlag(entityList)
	addRevisionFlag(entityList)

	for _, flag := range requiredFlags {
		if err := entityList.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	entityCmd.AddCommand(entityList)
}
