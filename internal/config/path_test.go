package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CASH_TEST_DIR", "/data")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "tilde", input: "~", want: home},
		{name: "tilde path", input: "~/keys/sa.json", want: filepath.Join(home, "keys/sa.json")},
		{name: "env var", input: "$CASH_TEST_DIR/sa.json", want: "/data/sa.json"},
		{name: "plain", input: "/etc/cash.yaml", want: "/etc/cash.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestDefaultTokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultTokenFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "cash", "sheets-token.json"), path)
}
