package gitstore

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// defaultGitTimeout bounds each git invocation.
const defaultGitTimeout = 30 * time.Second

// Commit is one entry of a repository's history.
type Commit struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Client executes git commands against a single working tree. All methods
// are safe for concurrent use.
type Client struct {
	dir     string
	timeout time.Duration
}

// NewClient creates a git client for the given working-tree directory.
func NewClient(dir string) *Client {
	return &Client{dir: dir, timeout: defaultGitTimeout}
}

// run executes a git command in the working tree and returns trimmed stdout.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s: timeout after %v", args[0], c.timeout)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// runSilent executes a git command and reports only success or failure.
func (c *Client) runSilent(ctx context.Context, args ...string) error {
	_, err := c.run(ctx, args...)
	return err
}

// IsRepository reports whether the directory is inside a git working tree.
func (c *Client) IsRepository(ctx context.Context) bool {
	return c.runSilent(ctx, "rev-parse", "--git-dir") == nil
}

// Init creates a new repository with branch "main" and a local committer
// identity, so commits succeed without global git configuration.
func (c *Client) Init(ctx context.Context) error {
	if err := c.runSilent(ctx, "init", "--initial-branch=main"); err != nil {
		return err
	}
	if err := c.runSilent(ctx, "config", "user.name", "asig"); err != nil {
		return err
	}
	return c.runSilent(ctx, "config", "user.email", "asig@localhost")
}

// AddAll stages every change in the working tree, including deletions and
// untracked files.
func (c *Client) AddAll(ctx context.Context) error {
	return c.runSilent(ctx, "add", "-A")
}

// HasStagedChanges reports whether anything is staged for commit.
func (c *Client) HasStagedChanges(ctx context.Context) bool {
	out, err := c.run(ctx, "diff", "--cached", "--name-only")
	return err == nil && out != ""
}

// Commit records the staged changes with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	return c.runSilent(ctx, "commit", "-m", message)
}

// Checkout switches the working tree to the given revision.
func (c *Client) Checkout(ctx context.Context, rev string) error {
	return c.runSilent(ctx, "checkout", rev)
}

// Log returns the commit history, newest first. An empty repository (no
// commits yet) yields an empty slice.
func (c *Client) Log(ctx context.Context) ([]Commit, error) {
	// Unit-separator-delimited fields keep parsing unambiguous for
	// arbitrary commit subjects.
	out, err := c.run(ctx, "log", "--pretty=format:%H%x1f%an%x1f%at%x1f%s")
	if err != nil {
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\x1f", 4)
		if len(fields) != 4 {
			continue
		}
		epoch, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			continue
		}
		commits = append(commits, Commit{
			Hash:    fields[0],
			Author:  fields[1],
			Time:    time.Unix(epoch, 0).UTC(),
			Message: fields[3],
		})
	}
	return commits, nil
}
