package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var listKeys = []string{"data", "items", "rows", "results", "records"}

// list decodes either a bare JSON array or an object that wraps one. Several
// endpoints answer with a plain array, others nest it under a named key.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var rows []T
		if err := json.Unmarshal(b, &rows); err != nil {
			return err
		}
		*l = rows
		return nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(b, &object); err != nil {
		return err
	}
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range append(append([]string(nil), listKeys...), keys...) {
		raw := bytes.TrimSpace(object[key])
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		var rows []T
		if err := json.Unmarshal(raw, &rows); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		*l = rows
		return nil
	}
	return fmt.Errorf("expected a list, got object with keys [%s]", strings.Join(keys, " "))
}

// ID accepts a JSON string or number. Backends disagree on which one an id is.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

func (id ID) String() string {
	return string(id)
}
