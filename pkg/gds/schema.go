package gds

import (
	"context"
	"net/http"
)

// SchemaService groups the /schema endpoints.
type SchemaService struct {
	c *Client
}

// Get fetches the current schema (GET /schema). The returned envelope's
// result.data lists the schema definitions.
func (s *SchemaService) Get(ctx context.Context) (*SchemaEnvelope, error) {
	code, body, err := s.c.do(ctx, OpSchemaGet, http.MethodGet, schemaPath(), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeSchemaEnvelope(OpSchemaGet, code, body)
}

// Set posts def (POST /schema). On success result.data[0] is the schema the
// service applied, see SchemaEnvelope.Applied.
func (s *SchemaService) Set(ctx context.Context, def SchemaDefinition) (*SchemaEnvelope, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	code, body, err := s.c.do(ctx, OpSchemaSet, http.MethodPost, schemaPath(), def, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeSchemaEnvelope(OpSchemaSet, code, body)
}

// GetAsync is the callback form of Get.
func (s *SchemaService) GetAsync(ctx context.Context, cb Callback[*SchemaEnvelope]) *Pending {
	return dispatch(ctx, s.c.log, OpSchemaGet, s.Get, cb)
}

// SetAsync is the callback form of Set.
func (s *SchemaService) SetAsync(ctx context.Context, def SchemaDefinition, cb Callback[*SchemaEnvelope]) *Pending {
	return dispatch(ctx, s.c.log, OpSchemaSet, func(ctx context.Context) (*SchemaEnvelope, error) {
		return s.Set(ctx, def)
	}, cb)
}
