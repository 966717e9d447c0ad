package cliutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "restparams v%s\n", "1.2.3")
	assert.Equal(t, "restparams v1.2.3\n", buf.String())
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("simulated write error")
}

func TestWritef_WriteError(t *testing.T) {
	assert.NotPanics(t, func() { Writef(errorWriter{}, "lost") })
}

func TestKeyValues(t *testing.T) {
	got, err := KeyValues([]string{"a=1", "b=x=y", "a=2", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []string{"1", "2"}, "b": "x=y", "c": ""}, got)

	got, err = KeyValues(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, bad := range []string{"novalue", "=1"} {
		_, err := KeyValues([]string{bad})
		assert.Error(t, err, bad)
	}
}
