package intake

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"utitriage/domain/patient"
	"utitriage/internal/errors"
)

// FormError collects every invalid form field, keyed by feature name
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// DecodeForm builds a record from submitted form values. It asks for the same
// fields as the prompts and applies the same defaults.
func DecodeForm(mode Mode, values url.Values) (patient.Record, error) {
	rec := newRecord()
	problems := map[string]string{}
	for _, q := range Questions(mode) {
		if err := apply(&rec, q, values.Get(q.Key)); err != nil {
			var fe *patient.FieldError
			if errors.As(err, &fe) {
				problems[q.Key] = fe.Reason
			} else {
				problems[q.Key] = err.Error()
			}
		}
	}
	if len(problems) > 0 {
		return patient.Record{}, &FormError{Fields: problems}
	}
	return rec, nil
}
