package types

import (
	"encoding/json"
	"fmt"
)

// ProjectState is the aggregate root for a single project: its
// configuration, all artifacts keyed by ID, and the ordered trace list.
// It is the unit of load, validation, and persistence; callers always
// operate on the full materialized state.
type ProjectState struct {
	Config    ProjectConfig       `json:"config"`
	Artifacts map[string]Artifact `json:"artifacts"`
	Traces    []Trace             `json:"traces"`
}

// NewProjectState creates an empty state for the given configuration.
func NewProjectState(config ProjectConfig) *ProjectState {
	return &ProjectState{
		Config:    config,
		Artifacts: make(map[string]Artifact),
		Traces:    []Trace{},
	}
}

// Requirement returns the artifact with the given ID if it exists and is a
// requirement.
func (s *ProjectState) Requirement(id string) (*Requirement, bool) {
	r, ok := s.Artifacts[id].(*Requirement)
	return r, ok
}

// UnmarshalJSON decodes the polymorphic artifact map through
// UnmarshalArtifact.
func (s *ProjectState) UnmarshalJSON(data []byte) error {
	var raw struct {
		Config    ProjectConfig              `json:"config"`
		Artifacts map[string]json.RawMessage `json:"artifacts"`
		Traces    []Trace                    `json:"traces"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	artifacts := make(map[string]Artifact, len(raw.Artifacts))
	for id, payload := range raw.Artifacts {
		artifact, err := UnmarshalArtifact(payload)
		if err != nil {
			return fmt.Errorf("artifact %s: %w", id, err)
		}
		artifacts[id] = artifact
	}

	s.Config = raw.Config
	s.Artifacts = artifacts
	s.Traces = raw.Traces
	if s.Traces == nil {
		s.Traces = []Trace{}
	}
	return nil
}
