// Package seismic turns raw accelerometer records into plot-ready derived
// series. Every extractor is a pure function of its RawSignal and Params.
package seismic

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

const (
	// DefaultHeaderToken prefixes metadata lines in .asc exports.
	DefaultHeaderToken = "EVENT_NAME"
	// DefaultSampleRate is the assumed acquisition rate when none is configured.
	DefaultSampleRate = 100.0
	// DefaultMaxSamples bounds time-domain features.
	DefaultMaxSamples = 10500
	// SpectrumMaxSamples bounds the Fourier amplitude spectrum.
	SpectrumMaxSamples = 10000
)

// LoadOptions controls how a signal file is parsed.
type LoadOptions struct {
	MaxSamples  int     // 0 keeps every sample
	SampleRate  float64 // Hz
	HeaderToken string
}

// DefaultLoadOptions returns the options used for AFAD .asc exports.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		MaxSamples:  DefaultMaxSamples,
		SampleRate:  DefaultSampleRate,
		HeaderToken: DefaultHeaderToken,
	}
}

// ReadSignal parses one numeric sample per line. Blank lines, header lines
// and lines that are not a finite float ("NaN", "Inf") are skipped.
func ReadSignal(r io.Reader, opts LoadOptions) (domain.RawSignal, error) {
	if opts.SampleRate <= 0 {
		return domain.RawSignal{}, fmt.Errorf("invalid sample rate %v", opts.SampleRate)
	}

	var samples []float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if opts.HeaderToken != "" && strings.HasPrefix(line, opts.HeaderToken) {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		samples = append(samples, v)
		if opts.MaxSamples > 0 && len(samples) == opts.MaxSamples {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.RawSignal{}, fmt.Errorf("read signal: %w", err)
	}
	if len(samples) == 0 {
		return domain.RawSignal{}, fmt.Errorf("no valid numeric data found: %w", domain.ErrEmptyInput)
	}

	return domain.RawSignal{Samples: samples, SampleRate: opts.SampleRate}, nil
}

// LoadSignal reads a signal file from disk.
func LoadSignal(path string, opts LoadOptions) (domain.RawSignal, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawSignal{}, fmt.Errorf("%w: %w", domain.ErrMissingResource, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	sig, err := ReadSignal(f, opts)
	if err != nil {
		return domain.RawSignal{}, fmt.Errorf("load signal %s: %w", path, err)
	}
	sig.Source = path
	return sig, nil
}

// Truncate returns sig limited to the first n samples. n <= 0 is a no-op.
func Truncate(sig domain.RawSignal, n int) domain.RawSignal {
	if n <= 0 || len(sig.Samples) <= n {
		return sig
	}
	sig.Samples = sig.Samples[:n]
	return sig
}
