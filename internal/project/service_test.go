package project

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealmit/asig/pkg/types"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(t.TempDir(), nil)
}

func createProject(t *testing.T, s *Service, name string) types.ProjectConfig {
	t.Helper()
	config, err := s.Create(context.Background(), types.ProjectConfig{
		Name:   name,
		Levels: []types.RequirementLevel{{Name: "User"}, {Name: "System"}},
	})
	require.NoError(t, err)
	return config
}

func TestCreateAndListProjects(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)

	createProject(t, s, "beta")
	createProject(t, s, "alpha")

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	// Creation committed an initial state, so history is non-empty and the
	// loaded state matches the supplied config.
	state, err := s.Load(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", state.Config.Name)
	assert.Empty(t, state.Artifacts)

	history, err := s.History(ctx, "alpha")
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestCreateProjectRejections(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)

	createProject(t, s, "dup")
	_, err := s.Create(ctx, types.ProjectConfig{Name: "dup"})
	assert.ErrorIs(t, err, types.ErrAlreadyExists)

	_, err = s.Create(ctx, types.ProjectConfig{Name: "../escape"})
	assert.ErrorIs(t, err, types.ErrMalformedEntity)
}

func TestCreateProjectDefaultsLevels(t *testing.T) {
	requireGit(t)
	s := newService(t)

	config, err := s.Create(context.Background(), types.ProjectConfig{Name: "bare"})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultLevels(), config.Levels)
}

func TestLoadUnknownProject(t *testing.T) {
	requireGit(t)
	s := newService(t)

	_, err := s.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestArtifactLifecycle(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)
	createProject(t, s, "p")

	req := types.NewRequirement("The system shall start", "User")
	created, err := s.CreateArtifact(ctx, "p", req)
	require.NoError(t, err)
	assert.NotEmpty(t, created.Base().ID)

	// ID collisions are rejected.
	dup := types.NewRequirement("Duplicate", "User")
	dup.ID = created.Base().ID
	_, err = s.CreateArtifact(ctx, "p", dup)
	assert.ErrorIs(t, err, types.ErrAlreadyExists)

	// Update must target the same ID in path and body.
	other, err := s.CreateArtifact(ctx, "p", types.NewRiskHazard("Other"))
	require.NoError(t, err)
	_, err = s.UpdateArtifact(ctx, "p", other.Base().ID, created)
	assert.ErrorIs(t, err, types.ErrIDMismatch)

	updated := types.NewRequirement("The system shall start quickly", "User")
	updated.ID = created.Base().ID
	got, err := s.UpdateArtifact(ctx, "p", updated.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, "The system shall start quickly", got.Base().Title)

	missing := types.NewRequirement("Ghost", "User")
	_, err = s.UpdateArtifact(ctx, "p", missing.ID, missing)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.DeleteArtifact(ctx, "p", "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteCascadesTraces(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)
	createProject(t, s, "p")

	req, err := s.CreateArtifact(ctx, "p", types.NewRequirement("Req", "User"))
	require.NoError(t, err)
	ver, err := s.CreateArtifact(ctx, "p", types.NewVerificationActivity("Test it", types.MethodTest))
	require.NoError(t, err)
	haz, err := s.CreateArtifact(ctx, "p", types.NewRiskHazard("Hazard"))
	require.NoError(t, err)

	reqID := req.Base().ID
	_, err = s.CreateTrace(ctx, "p", types.Trace{SourceID: ver.Base().ID, TargetID: reqID, Type: types.TraceVerifies})
	require.NoError(t, err)
	_, err = s.CreateTrace(ctx, "p", types.Trace{SourceID: reqID, TargetID: haz.Base().ID, Type: types.TraceMitigates})
	require.NoError(t, err)
	_, err = s.CreateTrace(ctx, "p", types.Trace{SourceID: ver.Base().ID, TargetID: haz.Base().ID, Type: types.TraceMitigates})
	require.NoError(t, err)

	removed, err := s.DeleteArtifact(ctx, "p", reqID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed, "exactly the traces touching the artifact go away")

	state, err := s.Load(ctx, "p")
	require.NoError(t, err)
	require.Len(t, state.Traces, 1)
	assert.False(t, state.Traces[0].Touches(reqID))
}

func TestCreateTraceRejections(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)
	createProject(t, s, "p")

	a, err := s.CreateArtifact(ctx, "p", types.NewRequirement("A", "User"))
	require.NoError(t, err)
	b, err := s.CreateArtifact(ctx, "p", types.NewVerificationActivity("B", types.MethodReview))
	require.NoError(t, err)

	trace := types.Trace{SourceID: b.Base().ID, TargetID: a.Base().ID, Type: types.TraceVerifies}

	_, err = s.CreateTrace(ctx, "p", types.Trace{SourceID: "ghost", TargetID: a.Base().ID, Type: types.TraceVerifies})
	assert.ErrorIs(t, err, types.ErrBadReference)

	_, err = s.CreateTrace(ctx, "p", types.Trace{SourceID: b.Base().ID, TargetID: "ghost", Type: types.TraceVerifies})
	assert.ErrorIs(t, err, types.ErrBadReference)

	_, err = s.CreateTrace(ctx, "p", trace)
	require.NoError(t, err)
	_, err = s.CreateTrace(ctx, "p", trace)
	assert.ErrorIs(t, err, types.ErrDuplicateTrace)

	// Same endpoints with a different relationship are a distinct trace.
	other := trace
	other.Type = types.TraceSatisfies
	_, err = s.CreateTrace(ctx, "p", other)
	assert.NoError(t, err)
}

func TestSettingsAndLevels(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)
	createProject(t, s, "p")

	settings, err := s.GetSettings(ctx, "p")
	require.NoError(t, err)
	assert.False(t, settings.EnforceSingleParent)
	assert.False(t, settings.PreventOrphansAtLowerLevels)

	want := types.ProjectSettings{EnforceSingleParent: true}
	_, err = s.PutSettings(ctx, "p", want)
	require.NoError(t, err)

	settings, err = s.GetSettings(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, want, settings)

	_, err = s.PutLevels(ctx, "p", nil)
	assert.ErrorIs(t, err, types.ErrMalformedEntity)

	levels := []types.RequirementLevel{{Name: "User"}, {Name: "System"}, {Name: "Component"}}
	_, err = s.PutLevels(ctx, "p", levels)
	require.NoError(t, err)

	state, err := s.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, levels, state.Config.Levels)
}

func TestCommitThroughService(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)
	createProject(t, s, "p")

	assert.ErrorIs(t, s.Commit(ctx, "p", ""), types.ErrEmptyCommitMessage)
	assert.ErrorIs(t, s.Commit(ctx, "p", "clean tree"), types.ErrNothingToCommit)

	_, err := s.CreateArtifact(ctx, "p", types.NewRiskCause("Wear"))
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, "p", "add risk cause"))

	history, err := s.History(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "add risk cause", history[0].Message)
}

// TestRequirementScenario walks the hierarchy scenario end to end:
// policies, parent links, and what deleting a parent leaves behind.
func TestRequirementScenario(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	s := newService(t)
	createProject(t, s, "P")

	_, err := s.PutSettings(ctx, "P", types.ProjectSettings{PreventOrphansAtLowerLevels: true})
	require.NoError(t, err)

	r1, err := s.CreateArtifact(ctx, "P", types.NewRequirement("r1", "User"))
	require.NoError(t, err)

	r2 := types.NewRequirement("r2", "System")
	r2.ParentIDs = []string{r1.Base().ID}
	_, err = s.CreateArtifact(ctx, "P", r2)
	require.NoError(t, err)

	_, err = s.CreateArtifact(ctx, "P", types.NewRequirement("r3", "System"))
	assert.ErrorIs(t, err, types.ErrPolicyViolation)

	// Deleting r1 leaves r2's parent link dangling; the stale reference is
	// caught when r2 is next updated.
	removed, err := s.DeleteArtifact(ctx, "P", r1.Base().ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	state, err := s.Load(ctx, "P")
	require.NoError(t, err)
	stored, ok := state.Requirement(r2.ID)
	require.True(t, ok)
	assert.Equal(t, []string{r1.Base().ID}, stored.ParentIDs)

	_, err = s.UpdateArtifact(ctx, "P", r2.ID, stored)
	assert.ErrorIs(t, err, types.ErrBadReference)
}
