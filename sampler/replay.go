package sampler

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReplaySource replays recorded samples separated by white space or commas.
// NaN and infinite values are returned as errors, so they never reach the
// accumulators.
type ReplaySource struct {
	scanner *bufio.Scanner
	pending []string
	n       int
}

// NewReplaySource returns a source reading samples from r.
func NewReplaySource(r io.Reader) *ReplaySource {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	return &ReplaySource{
		scanner: scanner,
	}
}

// Sample returns the next recorded sample, or io.EOF at the end of the
// recording.
func (s *ReplaySource) Sample() (float64, error) {
	for len(s.pending) == 0 {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		for _, f := range strings.Split(s.scanner.Text(), ",") {
			if f != "" {
				s.pending = append(s.pending, f)
			}
		}
	}

	field := s.pending[0]
	s.pending = s.pending[1:]
	s.n++

	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("sample %d: %w", s.n, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("sample %d: %q is not finite", s.n, field)
	}
	return v, nil
}
