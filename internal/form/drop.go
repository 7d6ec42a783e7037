package form

import (
	"context"
	"strings"

	"github.com/Makepad-fr/dropwise/internal/api"
	"github.com/Makepad-fr/dropwise/internal/drops"
	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/route"
)

const (
	MsgAddFailed    = "Failed to add drop. Please check the details and try again."
	MsgUpdateFailed = "Failed to update drop. Please check the details and try again."
)

// DropWriter is satisfied by *api.Drops.
type DropWriter interface {
	Create(ctx context.Context, in model.DropInput) (model.Drop, error)
	Update(ctx context.Context, id string, in model.DropInput) (model.Drop, error)
}

// Drop edits a new or existing drop.
type Drop struct {
	Form
	id string // empty when adding
}

var dropFields = []Field{URL, Topic, Tags, Notes}

func NewAddDrop() *Drop {
	return &Drop{Form: newForm(dropFields, nil, dropValidator(true))}
}

// NewEditDrop seeds the form from d; tags are shown comma separated.
func NewEditDrop(d model.Drop) *Drop {
	initial := map[Field]string{
		URL:   d.URL,
		Topic: d.Topic,
		Tags:  model.JoinTags(d.Tags),
		Notes: d.Notes(),
	}
	return &Drop{Form: newForm(dropFields, initial, dropValidator(false)), id: d.ID}
}

func dropValidator(strictURL bool) validator {
	return func(v map[Field]string) map[Field]string {
		return map[Field]string{
			URL:   ValidateURL(v[URL], strictURL),
			Topic: ValidateTopic(v[Topic]),
		}
	}
}

func (d *Drop) Editing() bool { return d.id != "" }

func (d *Drop) ID() string { return d.id }

// Input builds the request body from the current values.
func (d *Drop) Input() model.DropInput {
	return model.DropInput{
		URL:       strings.TrimSpace(d.Get(URL)),
		Topic:     strings.TrimSpace(d.Get(Topic)),
		UserNotes: d.Get(Notes),
		Tags:      model.ParseTags(d.Get(Tags)),
	}
}

// Complete applies a successful result to list. A 401 is handled by the
// session reset, so it does not become a form error.
func (d *Drop) Complete(saved model.Drop, err error, list *drops.List) Outcome {
	if err != nil {
		msg := MsgAddFailed
		if d.Editing() {
			msg = MsgUpdateFailed
		}
		if api.IsUnauthorized(err) {
			d.Submitting = false
			return Outcome{}
		}
		d.finish(err, msg)
		return Outcome{}
	}
	d.finish(nil, "")
	if saved.ID == "" {
		return Outcome{OK: true, Next: route.Home, Refetch: true}
	}
	if d.Editing() {
		list.Upsert(saved)
	} else {
		list.Prepend(saved)
	}
	return Outcome{OK: true, Next: route.Home}
}

// Call performs the network request for the current values.
func (d *Drop) Call(ctx context.Context, svc DropWriter) (model.Drop, error) {
	if d.Editing() {
		return svc.Update(ctx, d.id, d.Input())
	}
	return svc.Create(ctx, d.Input())
}

func (d *Drop) Submit(ctx context.Context, svc DropWriter, list *drops.List) Outcome {
	if !d.Begin() {
		return Outcome{}
	}
	saved, err := d.Call(ctx, svc)
	return d.Complete(saved, err, list)
}
