package fs

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructureUnmarshalKeepsOrder(t *testing.T) {
	var s Structure
	data := `{"zeta": "z", "src": {"main.go": "package main", "lib": {}}, "alpha": "a"}`
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	want := NewStructure(
		File("zeta", "z"),
		Folder("src", File("main.go", "package main"), Folder("lib")),
		File("alpha", "a"),
	)
	if diff := cmp.Diff(want.Entries(), s.Entries(), cmp.AllowUnexported(Structure{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestStructureUnmarshalScalars(t *testing.T) {
	var s Structure
	require.NoError(t, json.Unmarshal([]byte(`{"n": null, "num": 42, "flag": true}`), &s))

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "", entries[0].Content)
	assert.Equal(t, "42", entries[1].Content)
	assert.Equal(t, "true", entries[2].Content)
	for _, e := range entries {
		assert.False(t, e.IsFolder())
	}
}

func TestStructureUnmarshalErrors(t *testing.T) {
	for _, data := range []string{`[]`, `"text"`, `{"a": [1, 2]}`, `{"a": {"b": [1]}}`} {
		var s Structure
		assert.Error(t, json.Unmarshal([]byte(data), &s), data)
	}
}

func TestStructureMarshal(t *testing.T) {
	s := NewStructure(
		File("b.txt", "b"),
		Folder("a", File("x", "1")),
	)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"b.txt":"b","a":{"x":"1"}}`, string(data))
}

func TestStructureNil(t *testing.T) {
	var s *Structure
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Entries())
}
