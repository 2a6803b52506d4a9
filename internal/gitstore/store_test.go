package gitstore

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealmit/asig/pkg/types"
)

// requireGit skips tests that need the git binary when it is unavailable.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func testConfig() types.ProjectConfig {
	return types.ProjectConfig{
		Name:   "demo",
		Levels: []types.RequirementLevel{{Name: "User"}, {Name: "System"}},
	}
}

func TestOpenInitializesRepository(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	dir := t.TempDir()
	s, err := Open(ctx, dir, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Engineering Project\n", string(data))

	history, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Initial commit", history[0].Message)

	// Opening again attaches without creating another commit.
	s2, err := Open(ctx, dir, nil)
	require.NoError(t, err)
	history, err = s2.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLoadReturnsDefaultStateWithoutConfig(t *testing.T) {
	requireGit(t)

	s := openStore(t)
	state, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, "", state.Config.Name)
	assert.Empty(t, state.Config.Levels)
	assert.Empty(t, state.Artifacts)
	assert.Empty(t, state.Traces)
}

func TestSaveDraftLoadRoundTrip(t *testing.T) {
	requireGit(t)

	s := openStore(t)
	state := types.NewProjectState(testConfig())

	req := types.NewRequirement("The system shall start", "User")
	haz := types.NewRiskHazard("Unexpected start")
	haz.Severity = "major"
	state.Artifacts[req.ID] = req
	state.Artifacts[haz.ID] = haz
	state.Traces = []types.Trace{{SourceID: haz.ID, TargetID: req.ID, Type: types.TraceMitigates}}

	require.NoError(t, s.SaveDraft(state))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, state.Config, loaded.Config)
	assert.Equal(t, state.Traces, loaded.Traces)
	require.Len(t, loaded.Artifacts, 2)
	assert.Equal(t, req, loaded.Artifacts[req.ID])
	assert.Equal(t, haz, loaded.Artifacts[haz.ID])
}

func TestSaveDraftRemovesStaleArtifactFiles(t *testing.T) {
	requireGit(t)

	s := openStore(t)
	state := types.NewProjectState(testConfig())
	req := types.NewRequirement("Kept", "User")
	gone := types.NewRequirement("Removed", "User")
	state.Artifacts[req.ID] = req
	state.Artifacts[gone.ID] = gone
	require.NoError(t, s.SaveDraft(state))

	delete(state.Artifacts, gone.ID)
	require.NoError(t, s.SaveDraft(state))

	_, err := os.Stat(filepath.Join(s.Dir(), "artifacts", gone.ID+".xml"))
	assert.True(t, os.IsNotExist(err), "stale artifact file must be deleted")

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Artifacts, 1)
}

func TestSaveDraftIdempotent(t *testing.T) {
	requireGit(t)

	s := openStore(t)
	state := types.NewProjectState(testConfig())
	req := types.NewRequirement("Stable bytes", "User")
	req.Attributes = map[string]any{"z": 1, "a": 2}
	state.Artifacts[req.ID] = req

	require.NoError(t, s.SaveDraft(state))
	first, err := os.ReadFile(filepath.Join(s.Dir(), "artifacts", req.ID+".xml"))
	require.NoError(t, err)
	firstConfig, err := os.ReadFile(filepath.Join(s.Dir(), "project.xml"))
	require.NoError(t, err)

	require.NoError(t, s.SaveDraft(state))
	second, err := os.ReadFile(filepath.Join(s.Dir(), "artifacts", req.ID+".xml"))
	require.NoError(t, err)
	secondConfig, err := os.ReadFile(filepath.Join(s.Dir(), "project.xml"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstConfig, secondConfig)
}

func TestCommit(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	s := openStore(t)

	assert.ErrorIs(t, s.Commit(ctx, "   "), types.ErrEmptyCommitMessage)
	assert.ErrorIs(t, s.Commit(ctx, "no changes yet"), types.ErrNothingToCommit)

	state := types.NewProjectState(testConfig())
	require.NoError(t, s.SaveDraft(state))
	require.NoError(t, s.Commit(ctx, "Initial project creation"))

	history, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Initial project creation", history[0].Message)

	// Committing again with a clean tree is a distinct condition.
	assert.ErrorIs(t, s.Commit(ctx, "again"), types.ErrNothingToCommit)
}

func TestCheckoutRestoresEarlierState(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	s := openStore(t)
	state := types.NewProjectState(testConfig())
	req := types.NewRequirement("First", "User")
	state.Artifacts[req.ID] = req
	require.NoError(t, s.SaveDraft(state))
	require.NoError(t, s.Commit(ctx, "add first requirement"))

	history, err := s.History(ctx)
	require.NoError(t, err)
	firstRev := history[0].Hash

	second := types.NewRequirement("Second", "User")
	state.Artifacts[second.ID] = second
	require.NoError(t, s.SaveDraft(state))
	require.NoError(t, s.Commit(ctx, "add second requirement"))

	require.NoError(t, s.Checkout(ctx, firstRev))
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Artifacts, 1)
	assert.Contains(t, loaded.Artifacts, req.ID)
}

func TestLoadFailsOnCorruptArtifactFile(t *testing.T) {
	requireGit(t)

	s := openStore(t)
	state := types.NewProjectState(testConfig())
	require.NoError(t, s.SaveDraft(state))

	bad := filepath.Join(s.Dir(), "artifacts", "broken.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<Artifact><ID>broken</ID>"), 0o644))

	_, err := s.Load()
	require.ErrorIs(t, err, types.ErrCorruptStore)
	assert.Contains(t, err.Error(), "broken.xml", "error names the offending file")
}
