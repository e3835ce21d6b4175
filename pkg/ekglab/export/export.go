// Package export writes a waveform to files other tools can open.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/encoding"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

const (
	bitDepth   = 16
	numChans   = 1
	pcmFormat  = 1
	maxPCMCode = 1<<(bitDepth-1) - 1
)

// CSV writes one "<time>,<voltage>" line per sample, no END marker.
func CSV(w io.Writer, samples []model.SamplePoint) error {
	for _, s := range samples {
		if _, err := io.WriteString(w, encoding.Line(s)); err != nil {
			return err
		}
	}
	return nil
}

// WAV writes the voltages as mono 16-bit PCM. One sample is emitted per
// sampling period and fullScale millivolts map to the largest PCM code;
// louder values are clipped.
func WAV(w io.WriteSeeker, samples []model.SamplePoint, period time.Duration, fullScale float64) error {
	if period <= 0 {
		return fmt.Errorf("sampling period must be positive, got %v", period)
	}
	if !(fullScale > 0) {
		return fmt.Errorf("full scale must be positive, got %v", fullScale)
	}
	rate := int(math.Round(float64(time.Second) / float64(period)))
	if rate < 1 {
		return errors.New("sampling period longer than one second")
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		v := s.Voltage / fullScale
		v = math.Max(-1, math.Min(1, v))
		data[i] = int(math.Round(v * maxPCMCode))
	}

	enc := wav.NewEncoder(w, rate, bitDepth, numChans, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing pcm data: %w", err)
	}
	return enc.Close()
}

// WAVFile creates path and writes the waveform into it.
func WAVFile(path string, samples []model.SamplePoint, period time.Duration, fullScale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WAV(f, samples, period, fullScale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FullScale returns the viewport's largest absolute voltage bound.
func FullScale(vp model.Viewport) float64 {
	return math.Max(math.Abs(vp.MinVoltage), math.Abs(vp.MaxVoltage))
}

// ReadWAV decodes a file written by WAV back into voltages, with sample
// times derived from the file's sample rate.
func ReadWAV(r io.ReadSeeker, fullScale float64) ([]model.SamplePoint, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}

	step := 1 / float64(decoder.SampleRate)
	maxVal := float64(int(1)<<(uint(decoder.BitDepth)-1) - 1)
	out := make([]model.SamplePoint, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = model.SamplePoint{Time: float64(i) * step, Voltage: float64(v) / maxVal * fullScale}
	}
	return out, nil
}
