package gds

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// IndexService groups the /index endpoints.
type IndexService struct {
	c *Client
}

// List returns the names of the existing indexes (GET /index).
func (s *IndexService) List(ctx context.Context) ([]string, error) {
	code, body, err := s.c.do(ctx, OpIndexList, http.MethodGet, indexesPath(), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeNames(OpIndexList, code, body)
}

// Get describes one index (GET /index/{name}).
func (s *IndexService) Get(ctx context.Context, name string) (Object, error) {
	return s.getObject(ctx, OpIndexGet, name)
}

// Status reports the state of one index. The service serves status from the
// same resource as Get.
func (s *IndexService) Status(ctx context.Context, name string) (Object, error) {
	return s.getObject(ctx, OpIndexStatus, name)
}

// Create submits def (POST /index). The service answers 201 with a possibly
// empty object. Name uniqueness is left to the service.
func (s *IndexService) Create(ctx context.Context, def IndexDefinition) (Object, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	code, body, err := s.c.do(ctx, OpIndexCreate, http.MethodPost, indexesPath(), def, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return decodeObject(OpIndexCreate, code, body)
}

// Delete removes one index (DELETE /index/{name}).
func (s *IndexService) Delete(ctx context.Context, name string) (Object, error) {
	if err := checkName(OpIndexDelete, name); err != nil {
		return nil, err
	}
	code, body, err := s.c.do(ctx, OpIndexDelete, http.MethodDelete, indexPath(name), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeObject(OpIndexDelete, code, body)
}

func (s *IndexService) getObject(ctx context.Context, op, name string) (Object, error) {
	if err := checkName(op, name); err != nil {
		return nil, err
	}
	code, body, err := s.c.do(ctx, op, http.MethodGet, indexPath(name), nil, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return decodeObject(op, code, body)
}

// ListAsync is the callback form of List.
func (s *IndexService) ListAsync(ctx context.Context, cb Callback[[]string]) *Pending {
	return dispatch(ctx, s.c.log, OpIndexList, s.List, cb)
}

// GetAsync is the callback form of Get.
func (s *IndexService) GetAsync(ctx context.Context, name string, cb Callback[Object]) *Pending {
	return dispatch(ctx, s.c.log, OpIndexGet, func(ctx context.Context) (Object, error) {
		return s.Get(ctx, name)
	}, cb)
}

// StatusAsync is the callback form of Status.
func (s *IndexService) StatusAsync(ctx context.Context, name string, cb Callback[Object]) *Pending {
	return dispatch(ctx, s.c.log, OpIndexStatus, func(ctx context.Context) (Object, error) {
		return s.Status(ctx, name)
	}, cb)
}

// CreateAsync is the callback form of Create.
func (s *IndexService) CreateAsync(ctx context.Context, def IndexDefinition, cb Callback[Object]) *Pending {
	return dispatch(ctx, s.c.log, OpIndexCreate, func(ctx context.Context) (Object, error) {
		return s.Create(ctx, def)
	}, cb)
}

// DeleteAsync is the callback form of Delete.
func (s *IndexService) DeleteAsync(ctx context.Context, name string, cb Callback[Object]) *Pending {
	return dispatch(ctx, s.c.log, OpIndexDelete, func(ctx context.Context) (Object, error) {
		return s.Delete(ctx, name)
	}, cb)
}

func checkName(op, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Op: op, Details: map[string]string{"name": "is required"}, Err: errors.New("empty index name")}
	}
	return nil
}
