package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Makepad-fr/dropwise/internal/model"
)

// Drops is the CRUD surface for /drops.
type Drops struct {
	c *Client
}

// List accepts either a bare array or {"drops": [...]}.
func (d *Drops) List(ctx context.Context) ([]model.Drop, error) {
	var raw json.RawMessage
	if err := d.c.do(ctx, http.MethodGet, "/drops", nil, &raw); err != nil {
		return nil, err
	}
	return decodeDropList(raw)
}

func decodeDropList(raw json.RawMessage) ([]model.Drop, error) {
	raw = bytes.TrimSpace(raw)
	out := []model.Drop{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, &Error{Status: http.StatusOK, Message: MsgGeneric, Err: fmt.Errorf("decode drops: %w", err)}
		}
		return out, nil
	}
	var wrapped struct {
		Drops []model.Drop `json:"drops"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, &Error{Status: http.StatusOK, Message: MsgGeneric, Err: fmt.Errorf("decode drops: %w", err)}
	}
	if wrapped.Drops != nil {
		out = wrapped.Drops
	}
	return out, nil
}

func (d *Drops) Create(ctx context.Context, in model.DropInput) (model.Drop, error) {
	var out model.Drop
	err := d.c.do(ctx, http.MethodPost, "/drops", normalize(in), &out)
	return out, err
}

func (d *Drops) Update(ctx context.Context, id string, in model.DropInput) (model.Drop, error) {
	var out model.Drop
	err := d.c.do(ctx, http.MethodPut, "/drops/"+url.PathEscape(id), normalize(in), &out)
	return out, err
}

// Delete ignores any response body.
func (d *Drops) Delete(ctx context.Context, id string) error {
	return d.c.do(ctx, http.MethodDelete, "/drops/"+url.PathEscape(id), nil, nil)
}

func normalize(in model.DropInput) model.DropInput {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return in
}
