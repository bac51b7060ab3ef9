package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

func TestSaveLoadProjects_RoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	projects := []models.Project{
		{Name: "demo", Path: "/repo", DefaultBranch: "main", PoolSize: 2},
		{Name: "other", Path: "/repo2", DefaultBranch: "trunk", PoolSize: 1},
	}
	require.NoError(t, SaveProjects(dataDir, projects))

	loaded, err := LoadProjects(dataDir)
	require.NoError(t, err)
	require.Equal(t, projects, loaded)
}

func TestLoadProjects_MissingFileReturnsEmpty(t *testing.T) {
	dataDir := t.TempDir()
	loaded, err := LoadProjects(dataDir)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestFindProject_NotFound(t *testing.T) {
	dataDir := t.TempDir()
	_, err := FindProject(dataDir, "demo")
	require.Error(t, err)
	require.True(t, errs.Of(err, errs.KindProjectNotFound))
}

func TestFindProject_Found(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: "/repo", DefaultBranch: "main", PoolSize: 2},
	}))

	found, err := FindProject(dataDir, "demo")
	require.NoError(t, err)
	require.Equal(t, "/repo", found.Path)
}
