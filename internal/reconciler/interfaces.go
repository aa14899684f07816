package reconciler

import (
	"context"

	"github.com/samvad-hq/gds-client/pkg/gds"
	"github.com/samvad-hq/gds-client/pkg/publishers"
)

// IndexAPI is the part of *gds.IndexService the reconciler drives.
type IndexAPI interface {
	Status(ctx context.Context, name string) (gds.Object, error)
	Create(ctx context.Context, def gds.IndexDefinition) (gds.Object, error)
	Delete(ctx context.Context, name string) (gds.Object, error)
}

// SchemaAPI is the part of *gds.SchemaService the reconciler drives.
type SchemaAPI interface {
	Get(ctx context.Context) (*gds.SchemaEnvelope, error)
	Set(ctx context.Context, def gds.SchemaDefinition) (*gds.SchemaEnvelope, error)
}

// EventPublisher publishes change events downstream; *publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
