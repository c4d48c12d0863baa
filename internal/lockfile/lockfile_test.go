package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aifm.lock")

	l, err := Acquire(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strconv.Itoa(os.Getpid())+"\n"))

	require.NoError(t, l.Release())
	assert.NoFileExists(t, path)
	require.NoError(t, l.Release())
}

func TestAcquireHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aifm.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	_, err = Acquire(path)
	require.ErrorIs(t, err, ErrHeld)
	var held *HeldError
	require.ErrorAs(t, err, &held)
	assert.Equal(t, os.Getpid(), held.PID)
}

func TestAcquireReplacesStale(t *testing.T) {
	tests := map[string]string{
		"garbage":  "not a pid\n",
		"empty":    "",
		"dead":     "999999999\n2020-01-01T00:00:00Z\n",
		"negative": "-4\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "aifm.lock")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			l, err := Acquire(path)
			require.NoError(t, err)
			assert.NoError(t, l.Release())
		})
	}
}
