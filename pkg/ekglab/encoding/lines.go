// Package encoding implements the plain-text sample stream understood by the
// EKG display device: one "<time>,<voltage>" line per sample, both with three
// decimals, terminated by an END line.
package encoding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// End is the control line that closes a stream.
const End = "END"

var ErrMalformedLine = errors.New("malformed sample line")

// Line formats one sample, newline included.
func Line(s model.SamplePoint) string {
	b := make([]byte, 0, 24)
	b = strconv.AppendFloat(b, s.Time, 'f', 3, 64)
	b = append(b, ',')
	b = strconv.AppendFloat(b, s.Voltage, 'f', 3, 64)
	b = append(b, '\n')
	return string(b)
}

// Lines returns the sample lines followed by End.
func Lines(samples []model.SamplePoint) []string {
	out := make([]string, 0, len(samples)+1)
	for _, s := range samples {
		out = append(out, Line(s))
	}
	return append(out, End)
}

// Encode writes the full stream, END included, to w.
func Encode(w io.Writer, samples []model.SamplePoint) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		if _, err := bw.WriteString(Line(s)); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(End); err != nil {
		return err
	}
	return bw.Flush()
}

// ParseLine parses a single sample line. A trailing newline is allowed.
func ParseLine(line string) (model.SamplePoint, error) {
	line = strings.TrimRight(line, "\r\n")
	ts, vs, ok := strings.Cut(line, ",")
	if !ok {
		return model.SamplePoint{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	t, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return model.SamplePoint{}, fmt.Errorf("%w: bad time in %q", ErrMalformedLine, line)
	}
	v, err := strconv.ParseFloat(vs, 64)
	if err != nil {
		return model.SamplePoint{}, fmt.Errorf("%w: bad voltage in %q", ErrMalformedLine, line)
	}
	return model.SamplePoint{Time: t, Voltage: v}, nil
}

// Decode reads sample lines until END or EOF. Empty lines are skipped.
func Decode(r io.Reader) ([]model.SamplePoint, error) {
	var out []model.SamplePoint
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == End {
			return out, nil
		}
		s, err := ParseLine(line)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
