// Package types defines the entity model for engineering lifecycle
// projects: artifacts (requirements, risk hazards, risk causes,
// verification activities), traceability links between them, project
// configuration, and the standard error values shared by the storage
// and service layers.
package types
