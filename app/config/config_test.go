package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
generator:
  model: qwen:0.5b
`))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Generator.Backend)
	assert.Equal(t, "http://localhost:11434", cfg.Generator.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Face.Tick)
	assert.Equal(t, 10*time.Second, cfg.Face.SleepTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Face.IdleDelayMin)
	assert.Equal(t, 5*time.Second, cfg.Face.IdleDelayMax)
	assert.Equal(t, 6, cfg.Chat.HistorySize)
	assert.Equal(t, 100*time.Millisecond, cfg.Translation.WordDelay)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_ReadsDurationsAndOverlays(t *testing.T) {
	cfg, err := Parse([]byte(`
generator:
  backend: openai
  base_url: https://openrouter.ai/api/v1
  token: secret
  model: some-model
face:
  tick: 250ms
  overlays:
    - kind: blinking
      weight: 1
      revert_min: 50ms
      revert_max: 80ms
player:
  command: aplay
`))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Face.Tick)
	require.Len(t, cfg.Face.Overlays, 1)
	assert.Equal(t, 80*time.Millisecond, cfg.Face.Overlays[0].RevertMax)
	assert.Equal(t, []string{"-q", "-"}, cfg.Player.Args)
}

func TestParse_RejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing model":             "generator:\n  backend: ollama\n",
		"unknown backend":           "generator:\n  backend: llamafile\n  model: m\n",
		"mcp without http":          "generator:\n  model: m\nmcp:\n  enabled: true\n",
		"translation without model": "generator:\n  model: m\ntranslation:\n  enabled: true\n",
		"inverted idle delay":       "generator:\n  model: m\nface:\n  idle_delay_min: 5s\n  idle_delay_max: 1s\n",
		"unknown overlay":           "generator:\n  model: m\nface:\n  overlays:\n    - kind: dancing\n      weight: 1\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  model: m\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "m", cfg.Generator.Model)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "qwen:0.5b", cfg.Generator.Model)
	assert.Len(t, cfg.Generator.Examples, 2)
	assert.True(t, cfg.MCP.Enabled)
	assert.Equal(t, 10*time.Millisecond, cfg.Voice.Gap)
}
