// Package domain holds the records that flow between the reconciler, the
// journal and the event publishers.
package domain

import "time"

// Resource kinds managed on the service.
const (
	ResourceSchema = "schema"
	ResourceIndex  = "index"
)

// ChangeKind describes what a reconcile step did to a resource.
type ChangeKind string

const (
	ChangeSchemaApplied ChangeKind = "schema.applied"
	ChangeIndexCreated  ChangeKind = "index.created"
	ChangeIndexPresent  ChangeKind = "index.present"
	ChangeIndexDeleted  ChangeKind = "index.deleted"
)

// Change is one effect of a reconcile pass.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Resource string     `json:"resource"`
	Name     string     `json:"name"`
	// Digest identifies the definition that was applied; empty for deletions.
	Digest string    `json:"digest,omitempty"`
	At     time.Time `json:"at"`
}
