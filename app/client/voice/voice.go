package voice

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/oops"
)

// ErrNothingToSay is returned for text without a single voiced letter.
var ErrNothingToSay = errors.New("nothing to say")

// Clip is mono 16-bit audio.
type Clip struct {
	Samples    []int16
	SampleRate int
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}

	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

func (c Clip) WAV() []byte {
	return encodeWAV(c.Samples, c.SampleRate)
}

type Options struct {
	SampleRate          int
	Gap                 time.Duration
	PitchRangeSemitones float64
}

// Synthesizer speaks text by gluing one short sample per letter, each with a random pitch.
type Synthesizer struct {
	samples    map[rune][]int16
	sampleRate int
	gap        int
	pitchRange float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSynthesizer(samples map[rune][]int16, opts Options, rnd *rand.Rand) *Synthesizer {
	return &Synthesizer{
		samples:    samples,
		sampleRate: opts.SampleRate,
		gap:        int(opts.Gap * time.Duration(opts.SampleRate) / time.Second),
		pitchRange: opts.PitchRangeSemitones,
		rnd:        rnd,
	}
}

// Enabled reports whether any letter has a sample.
func (s *Synthesizer) Enabled() bool {
	return len(s.samples) > 0
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) (Clip, error) {
	var result []int16

	for _, r := range strings.ToLower(text) {
		if err := ctx.Err(); err != nil {
			return Clip{}, err
		}

		sample, ok := s.samples[r]
		if !ok {
			continue
		}

		step := math.Pow(2, s.randomSemitones()/12)
		result = append(result, resample(sample, step)...)
		result = append(result, make([]int16, s.gap)...)
	}

	if len(result) == 0 {
		return Clip{}, ErrNothingToSay
	}

	return Clip{
		Samples:    result,
		SampleRate: s.sampleRate,
	}, nil
}

// randomSemitones is uniform in [-range/2, range/2).
func (s *Synthesizer) randomSemitones() float64 {
	if s.pitchRange == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return (s.rnd.Float64() - 0.5) * s.pitchRange
}

// LoadSamples reads <letter>.wav files from dir and converts them to sampleRate.
// Unreadable files are skipped with a warning.
func LoadSamples(dir string, sampleRate int) (map[rune][]int16, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, oops.In("voice").With("dir", dir).Wrapf(err, "failed to read samples directory")
	}

	result := make(map[rune][]int16)

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}

		stem := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if utf8.RuneCountInString(stem) != 1 {
			continue
		}
		letter, _ := utf8.DecodeRuneInString(stem)

		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Failed to read voice sample", "path", path, "error", err)
			continue
		}

		samples, rate, err := decodeWAV(data)
		if err != nil {
			slog.Warn("Failed to decode voice sample", "path", path, "error", err)
			continue
		}

		result[letter] = resample(samples, float64(rate)/float64(sampleRate))
	}

	return result, nil
}
