package publishers

import (
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/gds-client/internal/domain"
)

// Event is the payload published downstream for every reconcile change.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Resource   string    `json:"resource"`
	Name       string    `json:"name"`
	Digest     string    `json:"digest,omitempty"`
	Target     string    `json:"target"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent wraps change for publication. target is the API root the change was applied to.
func NewEvent(target string, change domain.Change) Event {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	return Event{
		ID:         uuid.NewString(),
		Kind:       string(change.Kind),
		Resource:   change.Resource,
		Name:       change.Name,
		Digest:     change.Digest,
		Target:     target,
		OccurredAt: at.UTC(),
	}
}

// Attributes are the routing fields copied into message attributes.
func (e Event) Attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"kind":     e.Kind,
		"resource": e.Resource,
		"name":     e.Name,
	}
}
