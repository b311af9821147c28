package core

import (
	"context"
	"testing"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage/memvcs"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const classClassifier = "meta::pure::metamodel::Class"

var testAuthor = model.Contributor{Name: "dev", Email: "dev@example.com"}

func testStores(t *testing.T) context2.Stores {
	t.Helper()
	stores := context2.New(memvcs.New())
	t.Cleanup(func() {
		require.NoError(t, stores.Close())
	})
	return stores
}

func testProject(t *testing.T, stores context2.Stores, projectID string) model.Stream {
	t.Helper()
	_, err := CreateProject(model.ProjectDescriptor{
		ID:          projectID,
		Description: "a test project",
		Contributor: testAuthor,
	}, stores)
	require.NoError(t, err)
	return model.MainLine(projectID)
}

func testWorkspace(t *testing.T, stores context2.Stores, stream model.Stream, id string) model.WorkspaceSpec {
	t.Helper()
	spec := model.WorkspaceSpec{
		WorkspaceID: id,
		Type:        model.UserWorkspace,
		Access:      model.PrimaryAccess,
		Source:      stream,
	}
	_, err := CreateWorkspace(spec, stores)
	require.NoError(t, err)
	return spec
}

func createChange(path string, version int) model.EntityChange {
	return model.NewCreateChange(path, classClassifier, map[string]interface{}{"version": version})
}

func modifyChange(path string, version int) model.EntityChange {
	return model.NewModifyChange(path, classClassifier, map[string]interface{}{"version": version})
}

// advanceStream commits directly on a stream head, standing in for
// another client landing merged work
func advanceStream(t *testing.T, stores context2.Stores, stream model.Stream, changes ...model.EntityChange) model.Revision {
	t.Helper()
	head, err := ResolveAlias(stream, model.HeadAlias(), stores)
	require.NoError(t, err)
	rev, err := stores.Provider().Commit(context.Background(), stream.Pointer(), head.ID, changes, testAuthor, "landed work")
	require.NoError(t, err)
	return rev
}
