package lineedit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func upper(s string) (string, error) { return s + "!", nil }

func TestApplyRewritesOnlyTargetLine(t *testing.T) {
	path := writeTemp(t, "one\ntwo\nthree\n")

	require.NoError(t, Apply(path, 2, upper))

	assert.Equal(t, "one\ntwo!\nthree\n", readBack(t, path))
}

func TestApplyPreservesMissingTrailingNewline(t *testing.T) {
	path := writeTemp(t, "one\ntwo")

	require.NoError(t, Apply(path, 1, upper))

	assert.Equal(t, "one!\ntwo", readBack(t, path))
}

func TestApplyBounds(t *testing.T) {
	path := writeTemp(t, "one\ntwo\n")

	for _, line := range []int{0, -1, 3} {
		err := Apply(path, line, upper)
		assert.ErrorIs(t, err, ErrLineOutOfRange, "line %d", line)
	}

	// Nothing was written.
	assert.Equal(t, "one\ntwo\n", readBack(t, path))
}

func TestApplyTransformErrorAbortsWrite(t *testing.T) {
	path := writeTemp(t, "one\ntwo\n")
	boom := errors.New("boom")

	err := Apply(path, 1, func(string) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	assert.Equal(t, "one\ntwo\n", readBack(t, path))
}

func TestApplyMissingFile(t *testing.T) {
	err := Apply(filepath.Join(t.TempDir(), "absent.txt"), 1, upper)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteRemovesPhysicalLine(t *testing.T) {
	path := writeTemp(t, "one\ntwo\nthree\nfour\nfive\n")

	require.NoError(t, Delete(path, 3))

	assert.Equal(t, "one\ntwo\nfour\nfive\n", readBack(t, path))
}

func TestDeleteLastRemainingLine(t *testing.T) {
	path := writeTemp(t, "only\n")

	require.NoError(t, Delete(path, 1))

	assert.Equal(t, "", readBack(t, path))
}

func TestDeleteBounds(t *testing.T) {
	path := writeTemp(t, "one\n")

	assert.ErrorIs(t, Delete(path, 2), ErrLineOutOfRange)
	assert.ErrorIs(t, Delete(path, 0), ErrLineOutOfRange)
}
