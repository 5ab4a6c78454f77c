// internal/feature/spectral.go
package feature

import (
	"math"
	"sort"
)

// binFrequency maps an FFT bin index to Hz.
func binFrequency(k, sampleRate, fftSize int) float64 {
	return float64(k) * float64(sampleRate) / float64(fftSize)
}

// spectralCentroid is the magnitude-weighted mean frequency, 0 for an empty
// spectrum.
func spectralCentroid(mag []float64, sampleRate, fftSize int) float64 {
	var weighted, total float64
	for k, m := range mag {
		weighted += binFrequency(k, sampleRate, fftSize) * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// spectralRolloff is the frequency below which the given fraction of total
// spectral energy lies.
func spectralRolloff(mag []float64, sampleRate, fftSize int, fraction float64) float64 {
	var total float64
	for _, m := range mag {
		total += m
	}
	if total == 0 {
		return 0
	}
	threshold := fraction * total
	var cum float64
	for k, m := range mag {
		cum += m
		if cum >= threshold {
			return binFrequency(k, sampleRate, fftSize)
		}
	}
	return binFrequency(len(mag)-1, sampleRate, fftSize)
}

// contrastBandEdges returns FFT bin indices delimiting the sub-band plus six
// octave bands starting at 200 Hz, ending at Nyquist.
func contrastBandEdges(fftSize, sampleRate int) []int {
	freqs := []float64{0, 200, 400, 800, 1600, 3200, 6400, float64(sampleRate) / 2}
	halfFFT := fftSize/2 + 1
	bins := make([]int, len(freqs))
	for i, f := range freqs {
		bin := int(math.Round(f * float64(fftSize) / float64(sampleRate)))
		if bin > halfFFT {
			bin = halfFFT
		}
		bins[i] = bin
	}
	// Bands must be non-empty even at coarse resolutions.
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			bins[i] = bins[i-1] + 1
		}
	}
	bins[len(bins)-1] = halfFFT
	return bins
}

// spectralContrast computes, per band, the log ratio between the strongest
// and weakest spectral content (peak minus valley in log power).
func (p *Pipeline) spectralContrast(power []float64) []float64 {
	const alpha = 0.02

	out := make([]float64, numContrastBands)
	for b := 0; b < numContrastBands; b++ {
		lo := p.contrastBins[b]
		hi := p.contrastBins[b+1]
		if hi > len(power) {
			hi = len(power)
		}
		if hi <= lo {
			continue
		}
		band := make([]float64, hi-lo)
		copy(band, power[lo:hi])
		sort.Float64s(band)

		q := int(alpha * float64(len(band)))
		if q < 1 {
			q = 1
		}
		var valley, peak float64
		for i := 0; i < q; i++ {
			valley += band[i]
			peak += band[len(band)-1-i]
		}
		valley /= float64(q)
		peak /= float64(q)
		out[b] = math.Log(peak+logEps) - math.Log(valley+logEps)
	}
	return out
}
