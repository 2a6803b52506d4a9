package project

import (
	"fmt"

	"github.com/sealmit/asig/pkg/types"
)

// ValidateRequirement decides whether a candidate requirement may be
// inserted into (or updated within) the given project state. Pure decision
// function: no side effects on the candidate or the state.
//
// Rules, in order: the level must be defined in the project configuration;
// single-parent enforcement; orphan prevention at non-top levels; every
// effective parent must exist and be a requirement. The effective parent
// set is the union of the parent-ID list and the legacy single-parent
// field.
func ValidateRequirement(state *types.ProjectState, candidate *types.Requirement) error {
	levelKnown := false
	for _, level := range state.Config.Levels {
		if level.Name == candidate.Level {
			levelKnown = true
			break
		}
	}
	if !levelKnown {
		return fmt.Errorf("%w: level %q is not defined in the project configuration",
			types.ErrMalformedEntity, candidate.Level)
	}

	parents := candidate.EffectiveParents()
	settings := state.Config.Settings

	if settings.EnforceSingleParent && len(parents) > 1 {
		return fmt.Errorf("%w: requirement has %d parents but the project enforces a single parent",
			types.ErrPolicyViolation, len(parents))
	}

	if settings.PreventOrphansAtLowerLevels &&
		len(parents) == 0 &&
		candidate.Level != state.Config.TopLevel() {
		return fmt.Errorf("%w: requirement at level %q must have a parent",
			types.ErrPolicyViolation, candidate.Level)
	}

	for _, parentID := range parents {
		parent, ok := state.Artifacts[parentID]
		if !ok {
			return fmt.Errorf("%w: parent %q does not exist", types.ErrBadReference, parentID)
		}
		if _, ok := parent.(*types.Requirement); !ok {
			return fmt.Errorf("%w: parent %q is not a requirement", types.ErrBadReference, parentID)
		}
	}
	return nil
}
