package xmlcodec

import (
	"encoding/xml"

	"github.com/sealmit/asig/pkg/types"
)

// artifactDoc is the on-disk shape of a single artifact file. One struct
// covers every variant; EncodeArtifact fills only the fields of the
// variant being written, and omitted optionals never appear in output.
type artifactDoc struct {
	XMLName     xml.Name `xml:"Artifact"`
	ID          string   `xml:"ID"`
	Type        string   `xml:"Type"`
	Title       string   `xml:"Title"`
	Description string   `xml:"Description,omitempty"`
	CreatedAt   string   `xml:"CreatedAt,omitempty"`
	UpdatedAt   string   `xml:"UpdatedAt,omitempty"`

	Attributes []attributeDoc `xml:"Attributes>Attribute,omitempty"`

	// Requirement fields. ParentIDs is the current-generation parent set;
	// ParentID is the legacy single-parent element, written as a duplicate
	// of the first parent so legacy readers keep working.
	Level         string     `xml:"Level,omitempty"`
	ParentIDs     *idListDoc `xml:"ParentIDs"`
	ParentID      string     `xml:"ParentID,omitempty"`
	Justification string     `xml:"Justification,omitempty"`

	// RiskHazard / RiskCause fields.
	Severity    string `xml:"Severity,omitempty"`
	Probability string `xml:"Probability,omitempty"`

	// VerificationActivity fields. Passed is a pointer so its absence on
	// read is distinguishable; the write path always emits it.
	Method    string  `xml:"Method,omitempty"`
	Procedure string  `xml:"Procedure,omitempty"`
	Setup     string  `xml:"Setup,omitempty"`
	Passed    *string `xml:"Passed"`
}

type idListDoc struct {
	ParentID []string `xml:"ParentID"`
}

// EncodeArtifact renders an artifact file in the current schema generation.
func EncodeArtifact(artifact types.Artifact) ([]byte, error) {
	base := artifact.Base()
	attrs, err := encodeAttributes(base.Attributes)
	if err != nil {
		return nil, err
	}

	doc := artifactDoc{
		ID:          base.ID,
		Type:        artifact.Kind(),
		Title:       base.Title,
		Description: base.Description,
		CreatedAt:   formatTime(base.CreatedAt),
		UpdatedAt:   formatTime(base.UpdatedAt),
		Attributes:  attrs,
	}

	switch a := artifact.(type) {
	case *types.Requirement:
		doc.Level = a.Level
		if parents := a.EffectiveParents(); len(parents) > 0 {
			doc.ParentIDs = &idListDoc{ParentID: parents}
			doc.ParentID = parents[0]
		}
		doc.Justification = a.Justification
	case *types.RiskHazard:
		doc.Severity = a.Severity
	case *types.RiskCause:
		doc.Probability = a.Probability
	case *types.VerificationActivity:
		doc.Method = a.Method
		doc.Procedure = a.Procedure
		doc.Setup = a.Setup
		passed := formatBool(a.Passed)
		doc.Passed = &passed
	default:
		return nil, corrupt("unsupported artifact variant %T", artifact)
	}

	return marshal(doc)
}

// DecodeArtifact parses an artifact file of either schema generation into
// the concrete variant named by its Type element.
func DecodeArtifact(data []byte) (types.Artifact, error) {
	var doc artifactDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, corrupt("%v", err)
	}
	if doc.ID == "" {
		return nil, corrupt("artifact file missing ID")
	}
	if doc.Title == "" {
		return nil, corrupt("artifact %s missing title", doc.ID)
	}

	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, corrupt("artifact %s: %v", doc.ID, err)
	}
	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, corrupt("artifact %s: %v", doc.ID, err)
	}
	attrs, err := decodeAttributes(doc.Attributes)
	if err != nil {
		return nil, err
	}

	base := types.ArtifactBase{
		ID:          doc.ID,
		Type:        doc.Type,
		Title:       doc.Title,
		Description: doc.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Attributes:  attrs,
	}

	switch doc.Type {
	case types.TypeRequirement:
		r := &types.Requirement{
			ArtifactBase:  base,
			Level:         doc.Level,
			Justification: doc.Justification,
		}
		// Legacy files carry a single ParentID; current files carry a
		// ParentIDs list plus the duplicated legacy element. Either way
		// the legacy field is folded into the parent set on load.
		if doc.ParentIDs != nil {
			r.ParentIDs = doc.ParentIDs.ParentID
		}
		r.ParentID = doc.ParentID
		r.ParentIDs = r.EffectiveParents()
		if len(r.ParentIDs) > 0 {
			r.ParentID = r.ParentIDs[0]
		} else {
			r.ParentID = ""
		}
		return r, nil
	case types.TypeRiskHazard:
		return &types.RiskHazard{ArtifactBase: base, Severity: doc.Severity}, nil
	case types.TypeRiskCause:
		return &types.RiskCause{ArtifactBase: base, Probability: doc.Probability}, nil
	case types.TypeVerificationActivity:
		v := &types.VerificationActivity{
			ArtifactBase: base,
			Method:       doc.Method,
			Procedure:    doc.Procedure,
			Setup:        doc.Setup,
		}
		if doc.Passed != nil {
			passed, err := parseBool(*doc.Passed)
			if err != nil {
				return nil, corrupt("artifact %s: %v", doc.ID, err)
			}
			v.Passed = passed
		}
		return v, nil
	}
	return nil, corrupt("artifact %s has unknown type %q", doc.ID, doc.Type)
}
