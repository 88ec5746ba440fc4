package voice

import (
	"os"
	"path/filepath"
	"testing"

	"bertraco/app/config"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFromConfig(t *testing.T, voiceCfg config.Voice) *Synthesizer {
	t.Helper()

	di := do.New()
	do.ProvideValue(di, &config.Config{Voice: voiceCfg})

	synth, err := New(di)
	require.NoError(t, err)

	return synth
}

func TestNew_VoiceEnabledOnlyWithSamples(t *testing.T) {
	assert.False(t, newFromConfig(t, config.Voice{SampleRate: 1000}).Enabled())
	assert.False(t, newFromConfig(t, config.Voice{SamplesDir: t.TempDir(), SampleRate: 1000}).Enabled())
	assert.False(t, newFromConfig(t, config.Voice{SamplesDir: filepath.Join(t.TempDir(), "missing"), SampleRate: 1000}).Enabled())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wav"), encodeWAV([]int16{1, 2}, 1000), 0o644))

	assert.True(t, newFromConfig(t, config.Voice{SamplesDir: dir, SampleRate: 1000}).Enabled())
}
