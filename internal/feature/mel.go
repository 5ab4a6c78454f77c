// internal/feature/mel.go
package feature

import "math"

// hzToMel converts frequency in Hz to mel scale.
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz converts mel scale frequency back to Hz.
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterBank creates a triangular mel filterbank matrix of shape
// [numMels][fftSize/2+1].
func melFilterBank(numMels, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	halfFFT := fftSize/2 + 1
	if highFreq <= 0 {
		highFreq = float64(sampleRate) / 2
	}
	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)

	// numMels + 2 equally spaced mel points
	melPoints := make([]float64, numMels+2)
	step := (highMel - lowMel) / float64(numMels+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*step
	}

	// Convert mel points to FFT bin indices.
	bins := make([]int, numMels+2)
	for i, m := range melPoints {
		hz := melToHz(m)
		bin := int(math.Round(hz * float64(fftSize) / float64(sampleRate)))
		if bin >= halfFFT {
			bin = halfFFT - 1
		}
		bins[i] = bin
	}

	// Ensure each filter has at least 1 bin width.
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			bins[i] = bins[i-1] + 1
		}
	}

	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filter := make([]float64, halfFFT)
		left := bins[m]
		center := bins[m+1]
		right := bins[m+2]

		for k := left; k < center && k < halfFFT; k++ {
			if center != left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right && k < halfFFT; k++ {
			if right != center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}
		bank[m] = filter
	}
	return bank
}

// dctMatrix builds an orthonormal DCT-II matrix of shape [nCoeff][nBands],
// used to decorrelate log mel energies into cepstral coefficients.
func dctMatrix(nCoeff, nBands int) [][]float64 {
	m := make([][]float64, nCoeff)
	for k := 0; k < nCoeff; k++ {
		row := make([]float64, nBands)
		scale := math.Sqrt(2.0 / float64(nBands))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(nBands))
		}
		for n := 0; n < nBands; n++ {
			row[n] = scale * math.Cos(math.Pi*float64(k)*(float64(n)+0.5)/float64(nBands))
		}
		m[k] = row
	}
	return m
}

// logMelEnergies applies the mel filterbank to a power spectrum and takes
// the log with a floor so silence stays finite.
func (p *Pipeline) logMelEnergies(power []float64) []float64 {
	out := make([]float64, numMelBands)
	for b, filter := range p.melBank {
		var e float64
		for k, w := range filter {
			if w != 0 {
				e += w * power[k]
			}
		}
		out[b] = math.Log(e + logEps)
	}
	return out
}

// mfcc projects log mel energies onto the DCT basis.
func (p *Pipeline) mfcc(logMel []float64) []float64 {
	out := make([]float64, numMFCC)
	for k, row := range p.dct {
		var sum float64
		for b, w := range row {
			sum += w * logMel[b]
		}
		out[k] = sum
	}
	return out
}
