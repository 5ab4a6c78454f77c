// internal/feature/extractor.go
// Package feature derives a fixed-length acoustic embedding from an audio
// file. The pipeline decodes to mono 16 kHz, runs a 2048-point STFT with a
// 512-sample hop, and concatenates summary statistics of standard
// spectral/harmonic descriptors in a fixed order. The concatenation order
// and block sizes are part of the stored-vector contract and must not
// change without bumping Version.
package feature

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/Kingvic300/Voice-Embedding-Api/internal/audio"
)

const (
	// SampleRate is the waveform rate the pipeline operates at.
	SampleRate = 16000

	fftSize = 2048
	hopSize = 512

	numMFCC          = 13
	numMelBands      = 128
	numContrastBands = 7 // 6 octave bands plus the sub-band
	numChroma        = 12
	numTonnetz       = 6

	// Dimension is the fixed embedding length:
	// MFCC mean+std (26) + centroid mean/std (2) + rolloff mean/std (2) +
	// contrast band means (7) + ZCR mean/std (2) + chroma means (12) +
	// tonnetz means (6) + tempo (1).
	Dimension = 2*numMFCC + 2 + 2 + numContrastBands + 2 + numChroma + numTonnetz + 1

	// Version tags the feature recipe. Stored alongside every vector so a
	// future recipe change cannot silently corrupt comparisons against old
	// records.
	Version = 1
)

const logEps = 1e-10

// Extractor converts an audio file into a fixed-length embedding vector.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]float32, error)
}

// ExtractionError wraps any decode or computation failure during extraction.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("feature extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Pipeline is the DSP implementation of Extractor. The precomputed filter
// banks are read-only after construction, so a single Pipeline is safe for
// concurrent use.
type Pipeline struct {
	window       []float64
	melBank      [][]float64 // [numMelBands][fftSize/2+1]
	dct          [][]float64 // [numMFCC][numMelBands]
	chromaBank   [][]float64 // [numChroma][fftSize/2+1]
	contrastBins []int       // numContrastBands+1 band edges as FFT bins
	tonnetzBasis [][]float64 // [numTonnetz][numChroma]
}

// NewPipeline precomputes the window and filter banks.
func NewPipeline() *Pipeline {
	return &Pipeline{
		window:       hannWindow(fftSize),
		melBank:      melFilterBank(numMelBands, fftSize, SampleRate, 0, SampleRate/2),
		dct:          dctMatrix(numMFCC, numMelBands),
		chromaBank:   chromaFilterBank(numChroma, fftSize, SampleRate),
		contrastBins: contrastBandEdges(fftSize, SampleRate),
		tonnetzBasis: tonnetzBasis(numChroma),
	}
}

// Extract decodes the file at path, resamples to SampleRate and computes the
// embedding. Every failure is wrapped in *ExtractionError.
func (p *Pipeline) Extract(ctx context.Context, path string) ([]float32, error) {
	samples, srcRate, err := audio.Decode(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	samples, err = audio.Resample(samples, srcRate, SampleRate)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if len(samples) == 0 {
		return nil, &ExtractionError{Path: path, Err: errors.New("decoded audio is empty")}
	}

	vec := p.compute(samples)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out, nil
}

// compute runs the STFT and assembles the feature blocks in their fixed
// order. Silence must produce valid floats, so every per-frame descriptor
// guards its zero-energy case.
func (p *Pipeline) compute(samples []float64) []float64 {
	spec := p.spectrogram(samples)
	nFrames := len(spec)

	mfccs := make([][]float64, nFrames)
	centroids := make([]float64, nFrames)
	rolloffs := make([]float64, nFrames)
	contrasts := make([][]float64, nFrames)
	chromas := make([][]float64, nFrames)
	tons := make([][]float64, nFrames)
	melLogs := make([][]float64, nFrames)

	for t, mag := range spec {
		power := make([]float64, len(mag))
		for k, m := range mag {
			power[k] = m * m
		}

		melLogs[t] = p.logMelEnergies(power)
		mfccs[t] = p.mfcc(melLogs[t])
		centroids[t] = spectralCentroid(mag, SampleRate, fftSize)
		rolloffs[t] = spectralRolloff(mag, SampleRate, fftSize, 0.85)
		contrasts[t] = p.spectralContrast(power)
		chromas[t] = p.chroma(power)
		tons[t] = p.tonnetz(chromas[t])
	}

	zcrs := zeroCrossingRates(samples, fftSize, hopSize, nFrames)

	vec := make([]float64, 0, Dimension)

	// (a) MFCC means then stds, per coefficient.
	for c := 0; c < numMFCC; c++ {
		vec = append(vec, meanOf(mfccs, c))
	}
	for c := 0; c < numMFCC; c++ {
		vec = append(vec, stdOf(mfccs, c))
	}

	// (b) spectral centroid, (c) roll-off.
	m, s := meanStd(centroids)
	vec = append(vec, m, s)
	m, s = meanStd(rolloffs)
	vec = append(vec, m, s)

	// (d) spectral contrast band means.
	for b := 0; b < numContrastBands; b++ {
		vec = append(vec, meanOf(contrasts, b))
	}

	// (e) zero-crossing rate.
	m, s = meanStd(zcrs)
	vec = append(vec, m, s)

	// (f) chroma means.
	for c := 0; c < numChroma; c++ {
		vec = append(vec, meanOf(chromas, c))
	}

	// (g) tonnetz means.
	for c := 0; c < numTonnetz; c++ {
		vec = append(vec, meanOf(tons, c))
	}

	// (h) global tempo estimate.
	vec = append(vec, estimateTempo(onsetEnvelope(melLogs)))

	return vec
}

// meanStd returns mean and standard deviation of xs, with the degenerate
// single-frame case reporting zero deviation instead of NaN.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean := stat.Mean(xs, nil)
	if len(xs) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(xs, nil)
}

func meanOf(rows [][]float64, col int) float64 {
	if len(rows) == 0 {
		return 0
	}
	xs := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r[col]
	}
	return stat.Mean(xs, nil)
}

func stdOf(rows [][]float64, col int) float64 {
	if len(rows) < 2 {
		return 0
	}
	xs := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r[col]
	}
	return stat.StdDev(xs, nil)
}
