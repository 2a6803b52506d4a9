// Package project implements the mutation operations over project state:
// each operation loads the full state from the store, checks its
// preconditions, mutates in memory, and writes a new draft. Committing to
// version control is always a separate, explicit operation.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sealmit/asig/internal/gitstore"
	"github.com/sealmit/asig/pkg/types"
)

// Service exposes project-level operations over a projects root directory.
// Every load-validate-mutate-save sequence runs under a per-project mutex,
// so two in-process mutations of the same project cannot interleave and
// silently drop each other's draft.
type Service struct {
	root   string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a service rooted at the given projects directory.
func NewService(root string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		root:   root,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Root returns the projects root directory.
func (s *Service) Root() string { return s.root }

// lock acquires the mutex for the named project and returns its unlock.
func (s *Service) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// open validates the name and attaches to an existing project's store.
func (s *Service) open(ctx context.Context, name string) (*gitstore.Store, error) {
	if err := types.ValidateProjectName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("project %q: %w", name, types.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("stat project %q: %w", name, err)
	}
	return gitstore.Open(ctx, dir, s.logger)
}

// List returns the names of all projects under the root, sorted.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Create makes a new project: directory, git repository with baseline
// commit, and an initial committed empty state. Projects without levels
// get the default User/System hierarchy. Fails with types.ErrAlreadyExists
// if the directory is taken.
func (s *Service) Create(ctx context.Context, config types.ProjectConfig) (types.ProjectConfig, error) {
	if len(config.Levels) == 0 {
		config.Levels = types.DefaultLevels()
	}
	if err := config.Validate(); err != nil {
		return types.ProjectConfig{}, err
	}

	defer s.lock(config.Name)()

	dir := filepath.Join(s.root, config.Name)
	if _, err := os.Stat(dir); err == nil {
		return types.ProjectConfig{}, fmt.Errorf("project %q: %w", config.Name, types.ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return types.ProjectConfig{}, fmt.Errorf("stat project %q: %w", config.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.ProjectConfig{}, fmt.Errorf("create project %q: %w", config.Name, err)
	}

	store, err := gitstore.Open(ctx, dir, s.logger)
	if err != nil {
		return types.ProjectConfig{}, err
	}
	if err := store.SaveDraft(types.NewProjectState(config)); err != nil {
		return types.ProjectConfig{}, err
	}
	if err := store.Commit(ctx, "Initial project creation"); err != nil {
		return types.ProjectConfig{}, err
	}

	s.logger.Info("created project", "project", config.Name)
	return config, nil
}

// Load returns the full materialized state of a project.
func (s *Service) Load(ctx context.Context, name string) (*types.ProjectState, error) {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return nil, err
	}
	return store.Load()
}

// CreateArtifact adds an artifact to the project and writes a draft. An
// artifact arriving without an ID is assigned one. Requirements are
// admitted through the validation rules before the state changes.
func (s *Service) CreateArtifact(ctx context.Context, name string, artifact types.Artifact) (types.Artifact, error) {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return nil, err
	}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}

	base := artifact.Base()
	if base.ID == "" {
		base.ID = types.NewArtifactID()
	}
	if base.CreatedAt.IsZero() {
		base.Touch()
		base.CreatedAt = base.UpdatedAt
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	if _, exists := state.Artifacts[base.ID]; exists {
		return nil, fmt.Errorf("artifact %q: %w", base.ID, types.ErrAlreadyExists)
	}
	if req, ok := artifact.(*types.Requirement); ok {
		if err := ValidateRequirement(state, req); err != nil {
			return nil, err
		}
	}

	state.Artifacts[base.ID] = artifact
	if err := store.SaveDraft(state); err != nil {
		return nil, err
	}

	s.logger.Info("created artifact", "project", name, "artifact_id", base.ID, "type", artifact.Kind())
	return artifact, nil
}

// UpdateArtifact replaces an existing artifact. The path ID must match the
// body ID; the creation timestamp of the stored artifact is preserved when
// the update omits it.
func (s *Service) UpdateArtifact(ctx context.Context, name, id string, artifact types.Artifact) (types.Artifact, error) {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return nil, err
	}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}

	existing, ok := state.Artifacts[id]
	if !ok {
		return nil, fmt.Errorf("artifact %q: %w", id, types.ErrNotFound)
	}
	base := artifact.Base()
	if base.ID != id {
		return nil, fmt.Errorf("%w: path %q, body %q", types.ErrIDMismatch, id, base.ID)
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = existing.Base().CreatedAt
	}
	base.Touch()
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	if req, ok := artifact.(*types.Requirement); ok {
		if err := ValidateRequirement(state, req); err != nil {
			return nil, err
		}
	}

	state.Artifacts[id] = artifact
	if err := store.SaveDraft(state); err != nil {
		return nil, err
	}

	s.logger.Info("updated artifact", "project", name, "artifact_id", id)
	return artifact, nil
}

// DeleteArtifact removes an artifact and cascades removal of every trace
// referencing it as source or target. Returns the number of traces
// removed. Parent links in other requirements are left as they are; they
// surface as bad references on the next update of the affected child.
func (s *Service) DeleteArtifact(ctx context.Context, name, id string) (int, error) {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return 0, err
	}
	state, err := store.Load()
	if err != nil {
		return 0, err
	}

	if _, ok := state.Artifacts[id]; !ok {
		return 0, fmt.Errorf("artifact %q: %w", id, types.ErrNotFound)
	}
	delete(state.Artifacts, id)

	kept := state.Traces[:0]
	removed := 0
	for _, trace := range state.Traces {
		if trace.Touches(id) {
			removed++
			continue
		}
		kept = append(kept, trace)
	}
	state.Traces = kept

	if err := store.SaveDraft(state); err != nil {
		return 0, err
	}

	s.logger.Info("deleted artifact", "project", name, "artifact_id", id, "traces_removed", removed)
	return removed, nil
}

// CreateTrace links two existing artifacts. Fails with
// types.ErrBadReference if either endpoint is missing and with
// types.ErrDuplicateTrace if the (source, target, type) triple already
// exists.
func (s *Service) CreateTrace(ctx context.Context, name string, trace types.Trace) (types.Trace, error) {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return types.Trace{}, err
	}
	state, err := store.Load()
	if err != nil {
		return types.Trace{}, err
	}

	if err := trace.Validate(); err != nil {
		return types.Trace{}, err
	}
	if _, ok := state.Artifacts[trace.SourceID]; !ok {
		return types.Trace{}, fmt.Errorf("%w: source artifact %q does not exist", types.ErrBadReference, trace.SourceID)
	}
	if _, ok := state.Artifacts[trace.TargetID]; !ok {
		return types.Trace{}, fmt.Errorf("%w: target artifact %q does not exist", types.ErrBadReference, trace.TargetID)
	}
	for _, existing := range state.Traces {
		if existing.SameTriple(trace) {
			return types.Trace{}, fmt.Errorf("%w: %s -> %s (%s)", types.ErrDuplicateTrace,
				trace.SourceID, trace.TargetID, trace.Type)
		}
	}

	state.Traces = append(state.Traces, trace)
	if err := store.SaveDraft(state); err != nil {
		return types.Trace{}, err
	}

	s.logger.Info("created trace", "project", name,
		"source", trace.SourceID, "target", trace.TargetID, "type", trace.Type)
	return trace, nil
}

// Commit records the project's current draft in version-control history.
func (s *Service) Commit(ctx context.Context, name, message string) error {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return err
	}
	return store.Commit(ctx, message)
}

// History lists the project's commits, newest first.
func (s *Service) History(ctx context.Context, name string) ([]gitstore.Commit, error) {
	store, err := s.open(ctx, name)
	if err != nil {
		return nil, err
	}
	return store.History(ctx)
}

// Checkout switches the project's working tree to the given revision.
func (s *Service) Checkout(ctx context.Context, name, rev string) error {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return err
	}
	return store.Checkout(ctx, rev)
}

// GetSettings returns the project's policy settings.
func (s *Service) GetSettings(ctx context.Context, name string) (types.ProjectSettings, error) {
	state, err := s.Load(ctx, name)
	if err != nil {
		return types.ProjectSettings{}, err
	}
	return state.Config.Settings, nil
}

// PutSettings replaces the project's policy settings and writes a draft.
func (s *Service) PutSettings(ctx context.Context, name string, settings types.ProjectSettings) (types.ProjectSettings, error) {
	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return types.ProjectSettings{}, err
	}
	state, err := store.Load()
	if err != nil {
		return types.ProjectSettings{}, err
	}

	state.Config.Settings = settings
	if err := store.SaveDraft(state); err != nil {
		return types.ProjectSettings{}, err
	}
	return settings, nil
}

// PutLevels replaces the project's requirement hierarchy and writes a
// draft. The new sequence must be non-empty with unique names.
func (s *Service) PutLevels(ctx context.Context, name string, levels []types.RequirementLevel) ([]types.RequirementLevel, error) {
	if err := types.ValidateLevels(levels); err != nil {
		return nil, err
	}

	defer s.lock(name)()

	store, err := s.open(ctx, name)
	if err != nil {
		return nil, err
	}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}

	state.Config.Levels = levels
	if err := store.SaveDraft(state); err != nil {
		return nil, err
	}
	return levels, nil
}
