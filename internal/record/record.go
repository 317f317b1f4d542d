// Package record provides an ordered JSON object for dataset submissions.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is a JSON object that remembers the order its keys were inserted in.
// Submissions are decoded into a Record so every consumer sees the same key order
// the client sent.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// FromMap builds a record from a plain map. Keys follow the order given in keys;
// map entries not listed in keys are dropped.
func FromMap(m map[string]any, keys ...string) *Record {
	r := New()
	for _, k := range keys {
		if v, ok := m[k]; ok {
			r.Set(k, v)
		}
	}
	return r
}

// Set stores value under key. A key that already exists keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under the exact key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// GetFold looks key up ignoring case. An exact match wins; otherwise the first
// key in insertion order that equals key under Unicode case folding is used.
func (r *Record) GetFold(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r.values[key]; ok {
		return v, true
	}
	for _, k := range r.keys {
		if strings.EqualFold(k, key) {
			return r.values[k], true
		}
	}
	return nil, false
}

// String returns the text form of the value under key, or "" when absent.
func (r *Record) String(key string) string {
	v, _ := r.Get(key)
	return Text(v)
}

// Delete removes key from the record.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is a copy.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len reports the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Values returns the values in key order.
func (r *Record) Values() []any {
	if r == nil {
		return nil
	}
	out := make([]any, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.values[k])
	}
	return out
}

// Map returns a shallow copy of the record as a plain map.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, r.Len())
	if r == nil {
		return out
	}
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy that preserves key order.
func (r *Record) Clone() *Record {
	c := New()
	if r == nil {
		return c
	}
	for _, k := range r.keys {
		c.Set(k, r.values[k])
	}
	return c
}

// Merge copies every key of other into r. Existing keys are overwritten in place.
func (r *Record) Merge(other *Record) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		r.Set(k, other.values[k])
	}
}

// MarshalJSON writes the record as a JSON object with keys in insertion order.
// '<', '>' and '&' are written as is.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping its key order. Nested objects
// are decoded into *Record as well so dictionary entries keep their order too.
// A key repeated in the input keeps its first position and its last value.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}
	out, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*r = *out
	return nil
}

func decodeObject(dec *json.Decoder) (*Record, error) {
	r := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("record: expected object key, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		r.Set(key, v)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			var list []any
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if list == nil {
				list = []any{}
			}
			return list, nil
		}
		return nil, fmt.Errorf("record: unexpected delimiter %v", t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, nil
		}
		return t.String(), nil
	default:
		// string, bool or nil
		return t, nil
	}
}

// Text coerces a decoded JSON value to the text used for keyword matching.
// nil becomes "", numbers use their shortest decimal form, arrays join their
// elements with commas and nested objects are rendered as compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Text(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case *Record:
		b, err := t.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Records extracts the object elements of a JSON array value. Non-object
// elements are skipped.
func Records(v any) []*Record {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]*Record, 0, len(list))
	for _, e := range list {
		switch t := e.(type) {
		case *Record:
			out = append(out, t)
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out = append(out, FromMap(t, keys...))
		}
	}
	return out
}
