package cmd

import (
	"fmt"

	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Commands to inspect entities",
	Long:  "Commands to inspect the entities stored at a revision of a stream or workspace",
}

// paramsToLine resolves the addressed line: the workspace when one is
// named, the stream otherwise
func paramsToLine(flags flagsT) (model.Line, error) {
	if flags.workspace.ID != "" {
		return paramsToWorkspaceSpec(flags)
	}
	return paramsToStream(flags)
}

func paramsToAlias(flags flagsT) (model.RevisionAlias, error) {
	alias, err := model.ParseRevisionAlias(flags.revision.Alias)
	if err != nil {
		return model.RevisionAlias{}, fmt.Errorf("revision: %w", err)
	}
	return alias, nil
}

func init() {
	rootCmd.AddCommand(entityCmd)
}
