package types

import (
	"fmt"
	"regexp"
)

// projectNameRE is the allowed shape of a project name. The name is used
// verbatim as the on-disk directory name, so it must not contain path
// separators or traversal sequences.
var projectNameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,100}$`)

// ValidateProjectName checks that a project name is 1-100 characters of
// ASCII letters, digits, underscore, or hyphen. Returns an error wrapping
// ErrMalformedEntity otherwise.
func ValidateProjectName(name string) error {
	if !projectNameRE.MatchString(name) {
		return fmt.Errorf("%w: project name must be 1-100 characters of letters, digits, underscore, or hyphen", ErrMalformedEntity)
	}
	return nil
}

// RequirementLevel is one entry in a project's requirement hierarchy.
type RequirementLevel struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ValidateLevels checks a level sequence: it must be non-empty and level
// names must be unique. Returns an error wrapping ErrMalformedEntity
// otherwise.
func ValidateLevels(levels []RequirementLevel) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: at least one requirement level is required", ErrMalformedEntity)
	}
	seen := make(map[string]bool, len(levels))
	for _, level := range levels {
		if level.Name == "" {
			return fmt.Errorf("%w: level name must not be empty", ErrMalformedEntity)
		}
		if seen[level.Name] {
			return fmt.Errorf("%w: duplicate level name %q", ErrMalformedEntity, level.Name)
		}
		seen[level.Name] = true
	}
	return nil
}

// ProjectSettings holds the policy switches evaluated when a requirement
// is created or updated. Both default to disabled.
type ProjectSettings struct {
	// EnforceSingleParent rejects requirements with more than one parent.
	EnforceSingleParent bool `json:"enforce_single_parent"`

	// PreventOrphansAtLowerLevels rejects parentless requirements whose
	// level is not the top level.
	PreventOrphansAtLowerLevels bool `json:"prevent_orphans_at_lower_levels"`
}

// ProjectConfig describes a project: its immutable name (also the on-disk
// directory name), the ordered requirement hierarchy, an opaque risk-matrix
// blob, and the policy settings.
type ProjectConfig struct {
	Name       string             `json:"name"`
	Levels     []RequirementLevel `json:"levels"`
	RiskMatrix map[string]any     `json:"risk_matrix,omitempty"`
	Settings   ProjectSettings    `json:"settings"`
}

// DefaultLevels is the level hierarchy assigned to new projects that do
// not specify one.
func DefaultLevels() []RequirementLevel {
	return []RequirementLevel{{Name: "User"}, {Name: "System"}}
}

// Validate checks the project name and level sequence.
func (c ProjectConfig) Validate() error {
	if err := ValidateProjectName(c.Name); err != nil {
		return err
	}
	return ValidateLevels(c.Levels)
}

// TopLevel returns the name of the first configured level, or "" when no
// levels are configured. Requirements at the top level are exempt from
// orphan prevention.
func (c ProjectConfig) TopLevel() string {
	if len(c.Levels) == 0 {
		return ""
	}
	return c.Levels[0].Name
}
