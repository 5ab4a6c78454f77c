// internal/feature/stft.go
package feature

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// hannWindow generates a Hann window of the given length.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// spectrogram returns magnitude spectra, one row per frame of fftSize
// samples advanced by hopSize. Input shorter than one frame is zero-padded
// so at least one frame is produced. The FFT plan is created per call;
// gonum's FFT is not safe for concurrent use.
func (p *Pipeline) spectrogram(samples []float64) [][]float64 {
	if len(samples) < fftSize {
		padded := make([]float64, fftSize)
		copy(padded, samples)
		samples = padded
	}

	fft := fourier.NewFFT(fftSize)
	nFrames := 1 + (len(samples)-fftSize)/hopSize
	spec := make([][]float64, nFrames)
	buf := make([]float64, fftSize)

	for f := 0; f < nFrames; f++ {
		off := f * hopSize
		for i := range buf {
			buf[i] = samples[off+i] * p.window[i]
		}
		coeff := fft.Coefficients(nil, buf)
		mag := make([]float64, len(coeff))
		for i, c := range coeff {
			mag[i] = cmplx.Abs(c)
		}
		spec[f] = mag
	}
	return spec
}

// zeroCrossingRates computes the per-frame fraction of sign changes using
// the same framing as the spectrogram. nFrames matches the spectrogram
// frame count so the statistics line up.
func zeroCrossingRates(samples []float64, frameLen, hop, nFrames int) []float64 {
	zcrs := make([]float64, nFrames)
	for f := 0; f < nFrames; f++ {
		off := f * hop
		end := off + frameLen
		if end > len(samples) {
			end = len(samples)
		}
		if end-off < 2 {
			continue
		}
		crossings := 0
		for i := off + 1; i < end; i++ {
			if (samples[i-1] >= 0) != (samples[i] >= 0) {
				crossings++
			}
		}
		zcrs[f] = float64(crossings) / float64(end-off-1)
	}
	return zcrs
}
