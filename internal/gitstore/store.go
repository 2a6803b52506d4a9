// Package gitstore persists a project's full state as a tree of XML files
// inside a git working tree: project.xml, traces.xml, and one file per
// artifact under artifacts/. Draft saves rewrite the tree without touching
// history; commits snapshot the working tree through the git client.
package gitstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sealmit/asig/internal/xmlcodec"
	"github.com/sealmit/asig/pkg/types"
)

// On-disk layout inside a project directory.
const (
	configFile   = "project.xml"
	tracesFile   = "traces.xml"
	artifactsDir = "artifacts"
	readmeFile   = "README.md"

	readmeContent = "# Engineering Project\n"
)

// Store owns the on-disk representation of one project. Callers hold only
// transient in-memory states obtained from Load.
type Store struct {
	dir    string
	git    *Client
	logger *slog.Logger
}

// Open attaches to the project directory, initializing it as a git
// working tree with a baseline commit on first use. Opening an
// already-initialized directory only attaches to it.
func Open(ctx context.Context, dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{dir: dir, git: NewClient(dir), logger: logger}

	if err := os.MkdirAll(filepath.Join(dir, artifactsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create project directories: %w", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		if err := s.initialize(ctx); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat repository: %w", err)
	}
	return s, nil
}

// initialize creates the repository and the baseline commit so every
// project has a non-empty history from creation.
func (s *Store) initialize(ctx context.Context) error {
	s.logger.Info("initializing project repository", "path", s.dir)

	if err := s.git.Init(ctx); err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	readmePath := filepath.Join(s.dir, readmeFile)
	if err := os.WriteFile(readmePath, []byte(readmeContent), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", readmeFile, err)
	}
	if err := s.git.AddAll(ctx); err != nil {
		return fmt.Errorf("stage baseline: %w", err)
	}
	if err := s.git.Commit(ctx, "Initial commit"); err != nil {
		return fmt.Errorf("baseline commit: %w", err)
	}
	return nil
}

// Dir returns the project directory path.
func (s *Store) Dir() string { return s.dir }

// Load reads the full project state from disk. A missing project.xml
// yields a default empty state (directory exists but the project was
// never written). Any unreadable or schema-inconsistent file aborts the
// whole load with an error wrapping types.ErrCorruptStore that names the
// offending file.
func (s *Store) Load() (*types.ProjectState, error) {
	configPath := filepath.Join(s.dir, configFile)
	configData, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		s.logger.Warn("project config not found, returning default state", "path", configPath)
		return types.NewProjectState(types.ProjectConfig{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptStore, configPath, err)
	}
	config, err := xmlcodec.DecodeConfig(configData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	state := types.NewProjectState(config)

	tracesPath := filepath.Join(s.dir, tracesFile)
	tracesData, err := os.ReadFile(tracesPath)
	if err == nil {
		if state.Traces, err = xmlcodec.DecodeTraces(tracesData); err != nil {
			return nil, fmt.Errorf("%s: %w", tracesPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptStore, tracesPath, err)
	}
	if state.Traces == nil {
		state.Traces = []types.Trace{}
	}

	entries, err := os.ReadDir(filepath.Join(s.dir, artifactsDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptStore, artifactsDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}
		path := filepath.Join(s.dir, artifactsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptStore, path, err)
		}
		artifact, err := xmlcodec.DecodeArtifact(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		state.Artifacts[artifact.Base().ID] = artifact
	}

	return state, nil
}

// SaveDraft serializes the entire state to disk, overwriting the config,
// traces, and artifact files unconditionally and deleting artifact files
// whose artifacts are no longer in the state. Version-control history is
// not touched.
func (s *Store) SaveDraft(state *types.ProjectState) error {
	configData, err := xmlcodec.EncodeConfig(state.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, configFile), configData); err != nil {
		return err
	}

	tracesData, err := xmlcodec.EncodeTraces(state.Traces)
	if err != nil {
		return fmt.Errorf("encode traces: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, tracesFile), tracesData); err != nil {
		return err
	}

	dir := filepath.Join(s.dir, artifactsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", artifactsDir, err)
	}
	for id, artifact := range state.Artifacts {
		data, err := xmlcodec.EncodeArtifact(artifact)
		if err != nil {
			return fmt.Errorf("encode artifact %s: %w", id, err)
		}
		if err := writeFileAtomic(filepath.Join(dir, id+".xml"), data); err != nil {
			return err
		}
	}

	// Stale artifact files are not tolerated: anything on disk that is no
	// longer in the state goes away with this draft.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", artifactsDir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".xml") {
			continue
		}
		if _, ok := state.Artifacts[strings.TrimSuffix(name, ".xml")]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove stale artifact file %s: %w", name, err)
		}
	}

	s.logger.Info("saved draft", "path", s.dir,
		"artifacts", len(state.Artifacts), "traces", len(state.Traces))
	return nil
}

// Commit stages every change in the working tree and records one commit
// with the given message. A blank message fails with
// types.ErrEmptyCommitMessage; a clean tree fails with
// types.ErrNothingToCommit; any git failure wraps types.ErrCommitFailed.
func (s *Store) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return types.ErrEmptyCommitMessage
	}
	if err := s.git.AddAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrCommitFailed, err)
	}
	if !s.git.HasStagedChanges(ctx) {
		return types.ErrNothingToCommit
	}
	if err := s.git.Commit(ctx, message); err != nil {
		return fmt.Errorf("%w: %v", types.ErrCommitFailed, err)
	}
	s.logger.Info("committed draft", "path", s.dir, "message", message)
	return nil
}

// History lists the project's commits, newest first.
func (s *Store) History(ctx context.Context) ([]Commit, error) {
	return s.git.Log(ctx)
}

// Checkout switches the working tree to the given revision. Subsequent
// loads see the files as of that revision.
func (s *Store) Checkout(ctx context.Context, rev string) error {
	return s.git.Checkout(ctx, rev)
}

// writeFileAtomic writes data through a temp file and rename, so readers
// never observe a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".xml-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
