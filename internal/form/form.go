// Package form holds the state and submission lifecycle of the login,
// signup and drop forms. Controllers are plain values owned by the UI
// event loop; network calls happen between Begin and the matching
// Complete.
package form

// Field names a form input.
type Field string

const (
	Email    Field = "email"
	Password Field = "password"
	Confirm  Field = "confirmPassword"
	URL      Field = "url"
	Topic    Field = "topic"
	Tags     Field = "tags"
	Notes    Field = "user_notes"
)

// MsgUnexpected replaces failures that carry no message.
const MsgUnexpected = "An unexpected error occurred. Please try again later."

type validator func(values map[Field]string) map[Field]string

// Form is the shared state: values, per-field errors, the submitting
// flag and a general error slot.
type Form struct {
	fields     []Field
	initial    map[Field]string
	Values     map[Field]string
	Errors     map[Field]string
	Submitting bool
	General    string

	validate validator
}

func newForm(fields []Field, initial map[Field]string, v validator) Form {
	f := Form{fields: fields, initial: initial, validate: v}
	f.Reset()
	return f
}

// Fields lists the inputs in display order.
func (f *Form) Fields() []Field { return f.fields }

func (f *Form) Get(field Field) string { return f.Values[field] }

// Set updates a value and clears its error and the general error.
func (f *Form) Set(field Field, v string) {
	f.Values[field] = v
	delete(f.Errors, field)
	f.General = ""
}

// Reset restores the initial values and clears all errors.
func (f *Form) Reset() {
	f.Values = make(map[Field]string, len(f.fields))
	for _, fd := range f.fields {
		f.Values[fd] = f.initial[fd]
	}
	f.Errors = map[Field]string{}
	f.General = ""
	f.Submitting = false
}

// Validate replaces the field errors and reports whether there are none.
func (f *Form) Validate() bool {
	f.Errors = map[Field]string{}
	if f.validate == nil {
		return true
	}
	for k, v := range f.validate(f.Values) {
		if v != "" {
			f.Errors[k] = v
		}
	}
	return len(f.Errors) == 0
}

// Begin starts a submission. It returns false, leaving the form idle,
// when a submission is already running or validation fails.
func (f *Form) Begin() bool {
	if f.Submitting {
		return false
	}
	if !f.Validate() {
		return false
	}
	f.Errors = map[Field]string{}
	f.General = ""
	f.Submitting = true
	return true
}

// finish ends a submission; on error the general slot gets msg, or the
// error's own message when msg is empty.
func (f *Form) finish(err error, msg string) {
	f.Submitting = false
	if err == nil {
		return
	}
	if msg == "" {
		msg = err.Error()
	}
	if msg == "" {
		msg = MsgUnexpected
	}
	f.General = msg
}
