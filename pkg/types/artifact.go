package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Artifact type discriminators.
const (
	TypeRequirement          = "requirement"
	TypeRiskHazard           = "risk_hazard"
	TypeRiskCause            = "risk_cause"
	TypeVerificationActivity = "verification_activity"
)

// validArtifactTypes is the set of recognized artifact type values.
var validArtifactTypes = map[string]bool{
	TypeRequirement:          true,
	TypeRiskHazard:           true,
	TypeRiskCause:            true,
	TypeVerificationActivity: true,
}

// Verification methods for VerificationActivity.
const (
	MethodTest     = "test"
	MethodAnalysis = "analysis"
	MethodReview   = "review"
)

// validVerificationMethods is the set of recognized verification methods.
var validVerificationMethods = map[string]bool{
	MethodTest:     true,
	MethodAnalysis: true,
	MethodReview:   true,
}

// Artifact is the common interface over all artifact variants.
// Concrete types embed ArtifactBase; callers switch on Kind for
// variant-specific fields.
type Artifact interface {
	// Base returns the shared fields of the artifact.
	Base() *ArtifactBase

	// Kind returns the type discriminator (one of the Type constants).
	Kind() string

	// Validate checks structural constraints. It returns an error wrapping
	// ErrMalformedEntity if a required field is missing or an enumerated
	// field holds an unrecognized value.
	Validate() error
}

// ArtifactBase holds the fields shared by every artifact variant.
type ArtifactBase struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// NewArtifactID generates a unique artifact identifier. UUID v7 keeps IDs
// time-sortable; falls back to v4 if v7 generation fails.
func NewArtifactID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// newBase constructs an ArtifactBase with a fresh ID and timestamps.
func newBase(artifactType, title string) ArtifactBase {
	now := time.Now().UTC()
	return ArtifactBase{
		ID:        NewArtifactID(),
		Type:      artifactType,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// validate checks the shared fields against the given type discriminator.
func (b *ArtifactBase) validate(kind string) error {
	if b.ID == "" {
		return fmt.Errorf("%w: artifact ID must not be empty", ErrMalformedEntity)
	}
	if b.Title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrMalformedEntity)
	}
	if b.Type != kind {
		return fmt.Errorf("%w: type %q does not match variant %q", ErrMalformedEntity, b.Type, kind)
	}
	return nil
}

// Touch updates the last-modified timestamp.
func (b *ArtifactBase) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Requirement is an engineering requirement at a configured level of the
// project hierarchy.
type Requirement struct {
	ArtifactBase

	// Level names a RequirementLevel in the owning project's configuration.
	Level string `json:"level"`

	// ParentIDs references other requirements this one refines.
	ParentIDs []string `json:"parent_ids,omitempty"`

	// ParentID is the deprecated single-parent field. It is retained for
	// readers of the legacy format: writers set it to the first parent (or
	// leave it empty) and readers fold it into ParentIDs.
	ParentID string `json:"parent_id,omitempty"`

	Justification string `json:"justification,omitempty"`
}

// NewRequirement creates a requirement with a fresh ID and timestamps.
func NewRequirement(title, level string) *Requirement {
	return &Requirement{ArtifactBase: newBase(TypeRequirement, title), Level: level}
}

func (r *Requirement) Base() *ArtifactBase { return &r.ArtifactBase }
func (r *Requirement) Kind() string        { return TypeRequirement }

func (r *Requirement) Validate() error {
	if err := r.validate(TypeRequirement); err != nil {
		return err
	}
	if r.Level == "" {
		return fmt.Errorf("%w: requirement level must not be empty", ErrMalformedEntity)
	}
	return nil
}

// EffectiveParents returns the union of ParentIDs and the legacy ParentID
// field, preserving order and dropping duplicates.
func (r *Requirement) EffectiveParents() []string {
	seen := make(map[string]bool, len(r.ParentIDs)+1)
	var parents []string
	for _, id := range r.ParentIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		parents = append(parents, id)
	}
	if r.ParentID != "" && !seen[r.ParentID] {
		parents = append(parents, r.ParentID)
	}
	return parents
}

// RiskHazard records a hazard identified during risk analysis.
type RiskHazard struct {
	ArtifactBase

	Severity string `json:"severity,omitempty"`
}

// NewRiskHazard creates a risk hazard with a fresh ID and timestamps.
func NewRiskHazard(title string) *RiskHazard {
	return &RiskHazard{ArtifactBase: newBase(TypeRiskHazard, title)}
}

func (h *RiskHazard) Base() *ArtifactBase { return &h.ArtifactBase }
func (h *RiskHazard) Kind() string        { return TypeRiskHazard }
func (h *RiskHazard) Validate() error     { return h.validate(TypeRiskHazard) }

// RiskCause records a cause that can lead to a hazard.
type RiskCause struct {
	ArtifactBase

	Probability string `json:"probability,omitempty"`
}

// NewRiskCause creates a risk cause with a fresh ID and timestamps.
func NewRiskCause(title string) *RiskCause {
	return &RiskCause{ArtifactBase: newBase(TypeRiskCause, title)}
}

func (c *RiskCause) Base() *ArtifactBase { return &c.ArtifactBase }
func (c *RiskCause) Kind() string        { return TypeRiskCause }
func (c *RiskCause) Validate() error     { return c.validate(TypeRiskCause) }

// VerificationActivity records how an artifact is verified and whether the
// verification passed.
type VerificationActivity struct {
	ArtifactBase

	// Method is one of the Method constants (test, analysis, review).
	Method    string `json:"method"`
	Procedure string `json:"procedure,omitempty"`
	Setup     string `json:"setup,omitempty"`
	Passed    bool   `json:"passed"`
}

// NewVerificationActivity creates a verification activity with a fresh ID
// and timestamps. Passed defaults to false.
func NewVerificationActivity(title, method string) *VerificationActivity {
	return &VerificationActivity{ArtifactBase: newBase(TypeVerificationActivity, title), Method: method}
}

func (v *VerificationActivity) Base() *ArtifactBase { return &v.ArtifactBase }
func (v *VerificationActivity) Kind() string        { return TypeVerificationActivity }

func (v *VerificationActivity) Validate() error {
	if err := v.validate(TypeVerificationActivity); err != nil {
		return err
	}
	if !validVerificationMethods[v.Method] {
		return fmt.Errorf("%w: unknown verification method %q", ErrMalformedEntity, v.Method)
	}
	return nil
}

// UnmarshalArtifact decodes a JSON artifact payload into the concrete
// variant named by its "type" field. The decoded artifact is not validated;
// callers run Validate separately.
func UnmarshalArtifact(data []byte) (Artifact, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntity, err)
	}

	var artifact Artifact
	switch probe.Type {
	case TypeRequirement:
		artifact = &Requirement{}
	case TypeRiskHazard:
		artifact = &RiskHazard{}
	case TypeRiskCause:
		artifact = &RiskCause{}
	case TypeVerificationActivity:
		artifact = &VerificationActivity{}
	default:
		return nil, fmt.Errorf("%w: unknown artifact type %q", ErrMalformedEntity, probe.Type)
	}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntity, err)
	}
	return artifact, nil
}
