package types

import "fmt"

// Trace relationship types.
const (
	TraceSatisfies = "satisfies"
	TraceVerifies  = "verifies"
	TraceMitigates = "mitigates"
	TraceCauses    = "causes"
)

// validTraceTypes is the set of recognized trace relationship values.
var validTraceTypes = map[string]bool{
	TraceSatisfies: true,
	TraceVerifies:  true,
	TraceMitigates: true,
	TraceCauses:    true,
}

// Trace is a directed, typed link between two artifacts of the same
// project. The (SourceID, TargetID, Type) triple is unique within a
// project.
type Trace struct {
	SourceID    string `json:"source_id"`
	TargetID    string `json:"target_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Validate checks structural constraints. It returns an error wrapping
// ErrMalformedEntity on an empty endpoint or unrecognized type.
func (t Trace) Validate() error {
	if t.SourceID == "" {
		return fmt.Errorf("%w: trace source ID must not be empty", ErrMalformedEntity)
	}
	if t.TargetID == "" {
		return fmt.Errorf("%w: trace target ID must not be empty", ErrMalformedEntity)
	}
	if !validTraceTypes[t.Type] {
		return fmt.Errorf("%w: unknown trace type %q", ErrMalformedEntity, t.Type)
	}
	return nil
}

// SameTriple reports whether two traces share source, target, and type.
// Description is not part of trace identity.
func (t Trace) SameTriple(o Trace) bool {
	return t.SourceID == o.SourceID && t.TargetID == o.TargetID && t.Type == o.Type
}

// Touches reports whether the trace references the given artifact ID as
// either endpoint.
func (t Trace) Touches(artifactID string) bool {
	return t.SourceID == artifactID || t.TargetID == artifactID
}
