// internal/audio/resample.go
package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// DefaultSampleRate is the rate the feature pipeline operates at.
const DefaultSampleRate = 16000

// Resample converts a mono waveform from srcRate to dstRate. Same-rate and
// empty input are returned unchanged.
func Resample(samples []float64, srcRate, dstRate int) ([]float64, error) {
	if srcRate == dstRate || len(samples) == 0 {
		return samples, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}

	out, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample %d->%d: %w", srcRate, dstRate, err)
	}
	return out, nil
}
