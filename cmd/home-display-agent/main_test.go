package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/home-display-agent/internal/config"
	"github.com/alucardeht/home-display-agent/internal/metrics"
	"github.com/alucardeht/home-display-agent/pkg/version"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "ERROR")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestToolsCommand(t *testing.T) {
	t.Setenv("MCP_TOOLS", "*")
	out := runCmd(t, "tools")

	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 15)
	assert.Equal(t, "audio_identify", listed[0]["name"])
}

func TestToolsCommandFiltered(t *testing.T) {
	t.Setenv("MCP_TOOLS", "monitor_*,dispatcher_cancel")
	out := runCmd(t, "tools")

	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &listed))

	names := make([]string, 0, len(listed))
	for _, tool := range listed {
		names = append(names, tool["name"].(string))
	}
	assert.Equal(t, []string{
		"dispatcher_cancel",
		"monitor_health",
		"monitor_stream_status",
		"monitor_failures",
		"monitor_metrics",
	}, names)
}

func TestVersionCommand(t *testing.T) {
	out := runCmd(t, "version")
	assert.Contains(t, out, version.Version)
	assert.Contains(t, out, version.ProtocolVersion)
}

func TestBuildRegistryInvalidPattern(t *testing.T) {
	cfg := &config.Config{Tools: []string{"monitor_[health"}}
	_, err := buildRegistry(cfg, metrics.New(nil))
	assert.Error(t, err)
}
