package encoding

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

func TestEncode(t *testing.T) {
	samples := []model.SamplePoint{
		{Time: 0, Voltage: 0},
		{Time: 0.001, Voltage: 1.49987},
		{Time: 1.2345, Voltage: -0.5},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, samples); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := "0.000,0.000\n0.001,1.500\n1.234,-0.500\nEND"
	if buf.String() != expected {
		t.Errorf("Encode output = %q, expected %q", buf.String(), expected)
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if buf.String() != End {
		t.Errorf("Expected only END, got %q", buf.String())
	}
}

func TestLines(t *testing.T) {
	lines := Lines([]model.SamplePoint{{Time: 0.5, Voltage: 0.2}})

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "0.500,0.200\n" || lines[1] != "END" {
		t.Errorf("Unexpected lines: %q", lines)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	samples := []model.SamplePoint{{Time: 0, Voltage: -0.15}, {Time: 0.02, Voltage: 1.5}, {Time: 0.04, Voltage: 0.45}}

	var buf bytes.Buffer
	if err := Encode(&buf, samples); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(decoded))
	}
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Errorf("Sample %d = %+v, expected %+v", i, decoded[i], samples[i])
		}
	}
}

func TestDecodeStopsAtEnd(t *testing.T) {
	decoded, err := Decode(strings.NewReader("0.000,0.100\nEND\n9.000,9.000\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != 1 {
		t.Errorf("Expected 1 sample before END, got %d", len(decoded))
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []string{"0.000;0.100\n", "abc,0.1\n", "0.1,\n"}

	for _, in := range inputs {
		if _, err := Decode(strings.NewReader(in)); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("Decode(%q) error = %v, expected ErrMalformedLine", in, err)
		}
	}
}
