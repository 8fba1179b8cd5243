package models

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Info is an insertion-ordered string map. Element metadata is displayed in
// file order, so a plain Go map is not enough.
type Info struct {
	keys   []string
	values map[string]string
}

// NewInfo builds an Info from alternating key/value pairs.
func NewInfo(pairs ...string) Info {
	var info Info
	for i := 0; i+1 < len(pairs); i += 2 {
		info.Set(pairs[i], pairs[i+1])
	}
	return info
}

// Set stores value under key. Existing keys keep their position.
func (i *Info) Set(key, value string) {
	if i.values == nil {
		i.values = make(map[string]string)
	}
	if _, ok := i.values[key]; !ok {
		i.keys = append(i.keys, key)
	}
	i.values[key] = value
}

// SetIfAbsent stores value only when key is not present yet.
func (i *Info) SetIfAbsent(key, value string) bool {
	if _, ok := i.values[key]; ok {
		return false
	}
	i.Set(key, value)
	return true
}

func (i Info) Get(key string) (string, bool) {
	v, ok := i.values[key]
	return v, ok
}

func (i Info) Len() int {
	return len(i.keys)
}

// Keys returns the keys in insertion order.
func (i Info) Keys() []string {
	out := make([]string, len(i.keys))
	copy(out, i.keys)
	return out
}

// Range calls fn for each pair in order until fn returns false.
func (i Info) Range(fn func(key, value string) bool) {
	for _, k := range i.keys {
		if !fn(k, i.values[k]) {
			return
		}
	}
}

func (i Info) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for n, k := range i.keys {
		if n > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(i.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the document's key order. Non-string values are
// stored as their JSON text, null as the empty string.
func (i *Info) UnmarshalJSON(data []byte) error {
	*i = Info{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		i.Set(key, stringify(raw))
		return nil
	})
}

func stringify(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// decodeObject streams the members of a JSON object in document order.
func decodeObject(data []byte, member func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.Wrapf(err, "decode value of %q", key)
		}
		if err := member(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

type infoField struct {
	key   string
	value json.RawMessage
}

// ModelInfo is the file-level info block. Only comments are interpreted;
// every other member is carried through unchanged.
type ModelInfo struct {
	Comments []Comment
	extra    []infoField
}

func (m ModelInfo) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	comments := m.Comments
	if comments == nil {
		comments = []Comment{}
	}
	cb, err := json.Marshal(comments)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"comments":`)
	buf.Write(cb)
	for _, f := range m.extra {
		kb, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *ModelInfo) UnmarshalJSON(data []byte) error {
	*m = ModelInfo{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		if key == "comments" {
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				return nil
			}
			return errors.Wrap(json.Unmarshal(raw, &m.Comments), "decode comments")
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return err
		}
		m.extra = append(m.extra, infoField{key: key, value: compact.Bytes()})
		return nil
	})
}
