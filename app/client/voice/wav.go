package voice

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zaf/g711"
)

const (
	formatPCM  = 1
	formatALaw = 6
	formatULaw = 7
)

type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// decodeWAV returns mono 16-bit samples and the sample rate of a RIFF/WAVE file.
// 16-bit PCM, µ-law and A-law payloads are supported.
func decodeWAV(data []byte) ([]int16, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, errors.New("not a RIFF/WAVE file")
	}

	var (
		format  *wavFormat
		payload []byte
	)

	for rest := data[12:]; len(rest) >= 8; {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if size > len(rest) {
			size = len(rest)
		}
		body := rest[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			format = &wavFormat{
				audioFormat:   binary.LittleEndian.Uint16(body[0:2]),
				channels:      binary.LittleEndian.Uint16(body[2:4]),
				sampleRate:    binary.LittleEndian.Uint32(body[4:8]),
				bitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
			}
		case "data":
			payload = body
		}

		rest = rest[size:]
		// chunks are word aligned
		if size%2 == 1 && len(rest) > 0 {
			rest = rest[1:]
		}
	}

	if format == nil {
		return nil, 0, errors.New("missing fmt chunk")
	}
	if payload == nil {
		return nil, 0, errors.New("missing data chunk")
	}
	if format.sampleRate == 0 {
		return nil, 0, errors.New("zero sample rate")
	}

	var pcm []byte
	switch format.audioFormat {
	case formatPCM:
		if format.bitsPerSample != 16 {
			return nil, 0, fmt.Errorf("unsupported PCM sample size: %d bits", format.bitsPerSample)
		}
		pcm = payload
	case formatULaw:
		pcm = g711.DecodeUlaw(payload)
	case formatALaw:
		pcm = g711.DecodeAlaw(payload)
	default:
		return nil, 0, fmt.Errorf("unsupported audio format: %d", format.audioFormat)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}

	return downmix(samples, int(format.channels)), int(format.sampleRate), nil
}

func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}

	result := make([]int16, len(samples)/channels)
	for i := range result {
		var sum int
		for c := range channels {
			sum += int(samples[i*channels+c])
		}
		result[i] = int16(sum / channels)
	}

	return result
}

// encodeWAV wraps mono 16-bit samples into a WAV file.
func encodeWAV(samples []int16, sampleRate int) []byte {
	const (
		bitsPerSample = 16
		channels      = 1
		subchunk1Size = 16
	)

	blockAlign := channels * bitsPerSample / 8
	dataSize := len(samples) * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(subchunk1Size))
	_ = binary.Write(buf, binary.LittleEndian, uint16(formatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	_ = binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// resample steps through the input by step samples per output sample, interpolating linearly.
// A step above one shortens the sound and raises its pitch.
func resample(samples []int16, step float64) []int16 {
	if len(samples) == 0 || step <= 0 {
		return nil
	}
	if step == 1 {
		return append([]int16(nil), samples...)
	}

	n := int(float64(len(samples)) / step)
	result := make([]int16, n)

	last := len(samples) - 1
	for i := range result {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= last {
			result[i] = samples[last]
			continue
		}

		frac := pos - float64(idx)
		a, b := float64(samples[idx]), float64(samples[idx+1])
		result[i] = int16(a + (b-a)*frac)
	}

	return result
}
