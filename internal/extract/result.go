package extract

import (
	"bytes"
	"encoding/json"

	"github.com/joseph-ayodele/formfill/constants"
)

// Result is the field mapping produced for one document. Every key of the
// document type's field set is always present; a key without a value is
// reported as absent.
type Result struct {
	Type   constants.DocumentType
	keys   []string
	values map[string]string
}

// NewResult returns a Result with every field of t absent.
func NewResult(t constants.DocumentType) *Result {
	return &Result{
		Type:   t,
		keys:   constants.FieldsFor(t),
		values: make(map[string]string),
	}
}

// Set records a value for key. Empty values and keys outside the field set
// are ignored.
func (r *Result) Set(key, value string) {
	if value == "" || !r.has(key) {
		return
	}
	r.values[key] = value
}

func (r *Result) clear(key string) {
	delete(r.values, key)
}

// Get returns the value for key and whether it was found.
func (r *Result) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the fixed, ordered field set.
func (r *Result) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Found reports how many fields carry a value.
func (r *Result) Found() int {
	return len(r.values)
}

// Map returns every key, with nil for absent values.
func (r *Result) Map() map[string]*string {
	out := make(map[string]*string, len(r.keys))
	for _, k := range r.keys {
		if v, ok := r.values[k]; ok {
			v := v
			out[k] = &v
		} else {
			out[k] = nil
		}
	}
	return out
}

// Strings returns every key, with "" for absent values.
func (r *Result) Strings() map[string]string {
	out := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.values[k]
	}
	return out
}

func (r *Result) has(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

// MarshalJSON writes the fields in key order, absent values as null.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if v, ok := r.values[k]; ok {
			vb, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
