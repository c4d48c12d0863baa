package fs

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Structure describes a directory tree to materialize. Entries keep the
// order in which they appeared in the JSON document.
type Structure struct {
	entries []StructureEntry
}

// StructureEntry is a file (Children == nil) or a folder.
type StructureEntry struct {
	Name     string
	Content  string
	Children *Structure
}

// IsFolder reports whether the entry is a folder.
func (e StructureEntry) IsFolder() bool {
	return e.Children != nil
}

// NewStructure builds a Structure from entries.
func NewStructure(entries ...StructureEntry) *Structure {
	return &Structure{entries: entries}
}

// Folder builds a folder entry.
func Folder(name string, children ...StructureEntry) StructureEntry {
	return StructureEntry{Name: name, Children: NewStructure(children...)}
}

// File builds a file entry.
func File(name, content string) StructureEntry {
	return StructureEntry{Name: name, Content: content}
}

// Entries returns the top-level entries in document order.
func (s *Structure) Entries() []StructureEntry {
	if s == nil {
		return nil
	}
	return s.entries
}

// Len returns the number of top-level entries.
func (s *Structure) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// UnmarshalJSON decodes {"name": {...} | "content"}. Objects become folders,
// strings become files, null becomes an empty file and numbers or booleans
// are written as their literal text.
func (s *Structure) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, om); err != nil {
		return fmt.Errorf("structure must be an object: %w", err)
	}

	s.entries = make([]StructureEntry, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		raw := bytes.TrimSpace(pair.Value)
		if len(raw) == 0 {
			return fmt.Errorf("structure entry %q: empty value", pair.Key)
		}

		entry := StructureEntry{Name: pair.Key}
		switch raw[0] {
		case '{':
			child := &Structure{}
			if err := child.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("structure entry %q: %w", pair.Key, err)
			}
			entry.Children = child
		case '"':
			if err := json.Unmarshal(raw, &entry.Content); err != nil {
				return fmt.Errorf("structure entry %q: %w", pair.Key, err)
			}
		case '[':
			return fmt.Errorf("structure entry %q: arrays are not supported", pair.Key)
		case 'n':
			// null
		default:
			entry.Content = string(raw)
		}
		s.entries = append(s.entries, entry)
	}
	return nil
}

// MarshalJSON encodes the structure in entry order.
func (s Structure) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()
	for _, e := range s.entries {
		if e.IsFolder() {
			om.Set(e.Name, e.Children)
		} else {
			om.Set(e.Name, e.Content)
		}
	}
	return json.Marshal(om)
}
