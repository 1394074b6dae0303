package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v, c, d string) {
	t.Helper()
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() {
		version, commit, date = origVersion, origCommit, origDate
		versionShort = false
	})
	version, commit, date = v, c, d
}

func TestVersionOutput(t *testing.T) {
	withVersion(t, "1.2.3", "abc1234", "2025-01-08T12:00:00Z")

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)

	output := buf.String()
	assert.Contains(t, output, "beamtop v1.2.3")
	assert.Contains(t, output, "commit: abc1234")
	assert.Contains(t, output, "built: 2025-01-08T12:00:00Z")
	assert.Contains(t, output, "go: "+runtime.Version())
	assert.Contains(t, output, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionShort(t *testing.T) {
	withVersion(t, "1.2.3", "abc1234", "today")
	versionShort = true

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "1.2.3\n", buf.String())
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"dev", "dev"},
		{"", ""},
		{"0.1.0-beta", "v0.1.0-beta"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatVersion(tt.input))
		})
	}
}

func TestSetVersionInfo(t *testing.T) {
	withVersion(t, "dev", "none", "unknown")
	origRoot := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = origRoot })

	SetVersionInfo("2.0.0", "deadbeef", "2025-06-01")

	require.Equal(t, "2.0.0", GetVersion())
	assert.Equal(t, "deadbeef", commit)
	assert.Equal(t, "2025-06-01", date)
	assert.Equal(t, "v2.0.0", rootCmd.Version)
}
