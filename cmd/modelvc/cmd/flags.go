package cmd

import (
	"fmt"
	"io/ioutil"

	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type flagsT struct {
	project struct {
		ID          string
		Description string
	}
	workspace struct {
		ID     string
		Type   string
		Patch  string
		Commit struct {
			Message string
			File    string
		}
	}
	patch struct {
		SourceVersion string
		Notes         string
	}
	version struct {
		ID        string
		Increment string
		Notes     string
	}
	revision struct {
		Alias string
	}
	entity struct {
		Path string
	}
	review struct {
		ID    string
		Title string
		State string
	}
	contributor struct {
		Name  string
		Email string
	}
	root struct {
		storePath string
		logLevel  string
	}
}

var modelvcFlags = flagsT{}

func addStorePathFlag(cmd *cobra.Command) string {
	store := "store"
	cmd.PersistentFlags().StringVar(&modelvcFlags.root.storePath, store, "",
		"The path to the store directory holding all versioned state")
	return store
}

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&modelvcFlags.root.logLevel, loglevel, "",
		"The logging level, one of: info, debug, none")
	return loglevel
}

func addProjectFlag(cmd *cobra.Command) string {
	project := "project"
	cmd.Flags().StringVar(&modelvcFlags.project.ID, project, "", "The name of the project")
	return project
}

func addProjectDescriptionFlag(cmd *cobra.Command) string {
	description := "description"
	cmd.Flags().StringVar(&modelvcFlags.project.Description, description, "", "A human readable description of the project")
	return description
}

func addWorkspaceFlag(cmd *cobra.Command) string {
	workspace := "workspace"
	cmd.Flags().StringVar(&modelvcFlags.workspace.ID, workspace, "", "The name of the workspace")
	return workspace
}

func addWorkspaceTypeFlag(cmd *cobra.Command) string {
	workspaceType := "type"
	cmd.Flags().StringVar(&modelvcFlags.workspace.Type, workspaceType, "user",
		"The workspace type, one of: user, group")
	return workspaceType
}

func addPatchFlag(cmd *cobra.Command) string {
	patch := "patch"
	cmd.Flags().StringVar(&modelvcFlags.workspace.Patch, patch, "",
		"Address a patch line instead of the main line, e.g. --patch 1.0.2")
	return patch
}

func addMessageFlag(cmd *cobra.Command) string {
	message := "message"
	cmd.Flags().StringVar(&modelvcFlags.workspace.Commit.Message, message, "", "The message describing the commit")
	return message
}

func addChangesFileFlag(cmd *cobra.Command) string {
	changes := "changes"
	cmd.Flags().StringVar(&modelvcFlags.workspace.Commit.File, changes, "",
		"The path to a YAML file listing the entity changes to commit")
	return changes
}

func addSourceVersionFlag(cmd *cobra.Command) string {
	sourceVersion := "source-version"
	cmd.Flags().StringVar(&modelvcFlags.patch.SourceVersion, sourceVersion, "",
		"The released version the patch line roots at, e.g. 1.0.2")
	return sourceVersion
}

func addNotesFlag(cmd *cobra.Command) string {
	notes := "notes"
	cmd.Flags().StringVar(&modelvcFlags.patch.Notes, notes, "", "Release notes")
	return notes
}

func addVersionFlag(cmd *cobra.Command) string {
	version := "version"
	cmd.Flags().StringVar(&modelvcFlags.version.ID, version, "", "A version id, e.g. 1.0.2")
	return version
}

func addIncrementFlag(cmd *cobra.Command) string {
	increment := "increment"
	cmd.Flags().StringVar(&modelvcFlags.version.Increment, increment, "patch",
		"The version component to bump, one of: major, minor, patch")
	return increment
}

func addRevisionFlag(cmd *cobra.Command) string {
	revision := "revision"
	cmd.Flags().StringVar(&modelvcFlags.revision.Alias, revision, "HEAD",
		"A revision reference: BASE, HEAD or a literal revision id")
	return revision
}

func addEntityPathFlag(cmd *cobra.Command) string {
	path := "path"
	cmd.Flags().StringVar(&modelvcFlags.entity.Path, path, "", "The path of the entity, e.g. model::domain::Trade")
	return path
}

func addReviewFlag(cmd *cobra.Command) string {
	review := "review"
	cmd.Flags().StringVar(&modelvcFlags.review.ID, review, "", "The id of the review")
	return review
}

func addReviewTitleFlag(cmd *cobra.Command) string {
	title := "title"
	cmd.Flags().StringVar(&modelvcFlags.review.Title, title, "", "The title of the review")
	return title
}

func addContributorNameFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modelvcFlags.contributor.Name, "name", "", "The name of the contributor")
}

func addContributorEmailFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modelvcFlags.contributor.Email, "email", "", "The email of the contributor")
}

func paramsToContributor(flags flagsT) model.Contributor {
	return model.Contributor{
		Name:  flags.contributor.Name,
		Email: flags.contributor.Email,
	}
}

// paramsToStream resolves the addressed development stream: the main
// line by default, a patch line when --patch is set
func paramsToStream(flags flagsT) (model.Stream, error) {
	if flags.project.ID == "" {
		return model.Stream{}, fmt.Errorf("a project name is required")
	}
	if flags.workspace.Patch == "" {
		return model.MainLine(flags.project.ID), nil
	}
	version, err := model.ParseVersionID(flags.workspace.Patch)
	if err != nil {
		return model.Stream{}, err
	}
	return model.PatchLine(flags.project.ID, version), nil
}

func paramsToWorkspaceSpec(flags flagsT) (model.WorkspaceSpec, error) {
	stream, err := paramsToStream(flags)
	if err != nil {
		return model.WorkspaceSpec{}, err
	}
	return model.WorkspaceSpec{
		WorkspaceID: flags.workspace.ID,
		Type:        model.WorkspaceType(flags.workspace.Type),
		Access:      model.PrimaryAccess,
		Source:      stream,
	}, nil
}

// paramsToChanges loads a commit batch from the YAML file given on the
// command line
func paramsToChanges(flags flagsT) ([]model.EntityChange, error) {
	if flags.workspace.Commit.File == "" {
		return nil, fmt.Errorf("a changes file is required")
	}
	buf, err := ioutil.ReadFile(flags.workspace.Commit.File)
	if err != nil {
		return nil, err
	}
	var changes []model.EntityChange
	if err := yaml.Unmarshal(buf, &changes); err != nil {
		return nil, fmt.Errorf("invalid changes file %s: %w", flags.workspace.Commit.File, err)
	}
	return changes, nil
}
