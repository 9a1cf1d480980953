// ABOUTME: Tests for the badger-backed preference store.
// ABOUTME: Covers defaults, overwrites, deletes, and persistence across reopen.
package prefs

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolDefaultsToFalse(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Bool("missing")
	require.NoError(t, err)
	assert.False(t, v)
}

func TestSetBoolOverwrites(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetBool("flag", true))
	v, err := s.Bool("flag")
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, s.SetBool("flag", false))
	v, err = s.Bool("flag")
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, s.SetBool("flag", true))
	require.NoError(t, s.Delete("flag"))
	require.NoError(t, s.Delete("flag"))
	v, err = s.Bool("flag")
	require.NoError(t, err)
	assert.False(t, v)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	log := logrus.NewEntry(logrus.New())

	s, err := Open(dir, log)
	require.NoError(t, err)
	require.NoError(t, s.SetBool("initial_exercise_import_completed", true))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s, err = Open(dir, log)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Bool("initial_exercise_import_completed")
	require.NoError(t, err)
	assert.True(t, v)
}
