package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Keyed is implemented by records whose id is the collection key.
type Keyed interface {
	SetKey(id string)
}

// Collection is an insertion-ordered map of records keyed by id.
//
// It decodes from and encodes to a YAML mapping, keeping key order, and
// remembers whether the mapping was present in the source document so the
// validator can tell "missing" from "empty".
//
// Thread-safety: Collection is not safe for concurrent mutation. Snapshots
// hand out clones.
type Collection[T any] struct {
	keys    []string
	items   map[string]*T
	present bool
}

// NewCollection creates an empty collection marked present.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: map[string]*T{}, present: true}
}

// Present reports whether the collection exists in the document.
func (c *Collection[T]) Present() bool {
	return c.present
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.keys)
}

// Keys returns record ids in document order.
func (c *Collection[T]) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Has reports whether id exists.
func (c *Collection[T]) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Get returns the record for id.
func (c *Collection[T]) Get(id string) (*T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Put inserts or replaces a record. New ids are appended at the end;
// existing ids keep their position.
func (c *Collection[T]) Put(id string, v *T) {
	if c.items == nil {
		c.items = map[string]*T{}
	}
	if k, ok := any(v).(Keyed); ok {
		k.SetKey(id)
	}
	if _, exists := c.items[id]; !exists {
		c.keys = append(c.keys, id)
	}
	c.items[id] = v
	c.present = true
}

// Delete removes id and reports whether it existed.
func (c *Collection[T]) Delete(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, k := range c.keys {
		if k == id {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every record in document order.
func (c *Collection[T]) Each(fn func(id string, v *T)) {
	for _, k := range c.keys {
		fn(k, c.items[k])
	}
}

// UnmarshalYAML decodes a YAML mapping, rejecting duplicate keys.
func (c *Collection[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of id to record", node.Line)
	}
	c.keys = make([]string, 0, len(node.Content)/2)
	c.items = make(map[string]*T, len(node.Content)/2)
	c.present = true

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		id := keyNode.Value
		if _, dup := c.items[id]; dup {
			return fmt.Errorf("line %d: duplicate id %q", keyNode.Line, id)
		}
		item := new(T)
		// A bare "id:" with no body decodes as an empty record.
		if !(valNode.Kind == yaml.ScalarNode && valNode.ShortTag() == "!!null") {
			if err := valNode.Decode(item); err != nil {
				return fmt.Errorf("record %q: %w", id, err)
			}
		}
		c.Put(id, item)
	}
	return nil
}

// MarshalYAML encodes the collection as an ordered YAML mapping.
func (c Collection[T]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range c.keys {
		var val yaml.Node
		if err := val.Encode(c.items[k]); err != nil {
			return nil, fmt.Errorf("record %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return node, nil
}

// MarshalJSON encodes the collection as an ordered JSON object.
func (c Collection[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.items[k])
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
