package inline

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Manifest is a package.json document. Values are never interpreted, so
// keys this package does not touch survive a rewrite unchanged and in
// place.
type Manifest struct {
	doc []byte
}

// npm writes package.json with two-space indentation and one array
// element per line.
var manifestStyle = &pretty.Options{Indent: "  "}

// ParseManifest reads a JSON object. Comments and trailing commas are
// tolerated. A key repeated in the source keeps its first position and
// its last value.
func ParseManifest(data []byte) (*Manifest, error) {
	doc := jsonc.ToJSON(data)
	if !gjson.ValidBytes(doc) {
		return nil, errors.New("manifest is not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("manifest must be a JSON object, starts with %.16q", root.Raw)
	}

	var keys []string
	values := make(map[string]string)
	pairs := 0
	root.ForEach(func(k, v gjson.Result) bool {
		if _, seen := values[k.Str]; !seen {
			keys = append(keys, k.Str)
		}
		values[k.Str] = v.Raw
		pairs++
		return true
	})
	if pairs == len(keys) {
		return &Manifest{doc: doc}, nil
	}

	m := &Manifest{doc: []byte("{}")}
	for _, k := range keys {
		out, err := sjson.SetRawBytes(m.doc, gjson.Escape(k), []byte(values[k]))
		if err != nil {
			return nil, fmt.Errorf("rebuild manifest key %q: %w", k, err)
		}
		m.doc = out
	}
	return m, nil
}

// Keys returns the keys in order.
func (m *Manifest) Keys() []string {
	var keys []string
	gjson.ParseBytes(m.doc).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.Str)
		return true
	})
	return keys
}

// Get returns the value of key.
func (m *Manifest) Get(key string) gjson.Result {
	return gjson.GetBytes(m.doc, gjson.Escape(key))
}

// GetString returns key's value when it is a JSON string.
func (m *Manifest) GetString(key string) (string, bool) {
	v := m.Get(key)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// Set overwrites key with value in place, or appends it when absent.
func (m *Manifest) Set(key string, value any) error {
	out, err := sjson.SetBytes(m.doc, gjson.Escape(key), value)
	if err != nil {
		return fmt.Errorf("set manifest key %q: %w", key, err)
	}
	m.doc = out
	return nil
}

// Merge sets every entry of values, in the order of keys.
func (m *Manifest) Merge(keys []string, values map[string]any) error {
	for _, k := range keys {
		if err := m.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Marshal writes the object the way npm writes package.json, ending with
// a newline.
func (m *Manifest) Marshal() []byte {
	return pretty.PrettyOptions(m.doc, manifestStyle)
}
