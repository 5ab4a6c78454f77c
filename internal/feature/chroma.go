// internal/feature/chroma.go
package feature

import "math"

// chromaFilterBank maps FFT bins to the 12 pitch classes. Each bin's energy
// is assigned to the pitch class of its nearest equal-tempered note
// (A4 = 440 Hz). Bins below the audible floor are ignored.
func chromaFilterBank(numClasses, fftSize, sampleRate int) [][]float64 {
	halfFFT := fftSize/2 + 1
	bank := make([][]float64, numClasses)
	for c := range bank {
		bank[c] = make([]float64, halfFFT)
	}
	for k := 1; k < halfFFT; k++ {
		freq := binFrequency(k, sampleRate, fftSize)
		if freq < 20 {
			continue
		}
		midi := 69 + 12*math.Log2(freq/440.0)
		pc := ((int(math.Round(midi)) % numClasses) + numClasses) % numClasses
		bank[pc][k] = 1
	}
	return bank
}

// chroma accumulates power per pitch class, normalized so the strongest
// class in a frame is 1. A silent frame stays all-zero.
func (p *Pipeline) chroma(power []float64) []float64 {
	out := make([]float64, numChroma)
	maxVal := 0.0
	for c, filter := range p.chromaBank {
		var e float64
		for k, w := range filter {
			if w != 0 {
				e += power[k]
			}
		}
		out[c] = e
		if e > maxVal {
			maxVal = e
		}
	}
	if maxVal > 0 {
		for c := range out {
			out[c] /= maxVal
		}
	}
	return out
}

// tonnetzBasis builds the 6-dimensional tonal centroid projection: sin/cos
// pairs over the circle of fifths, minor thirds and major thirds, with the
// thirds radius halved.
func tonnetzBasis(numClasses int) [][]float64 {
	angles := []float64{7 * math.Pi / 6, 3 * math.Pi / 2, 2 * math.Pi / 3}
	radii := []float64{1, 1, 0.5}

	basis := make([][]float64, numTonnetz)
	for d := range basis {
		basis[d] = make([]float64, numClasses)
	}
	for j := 0; j < numClasses; j++ {
		for i, angle := range angles {
			basis[2*i][j] = radii[i] * math.Sin(float64(j)*angle)
			basis[2*i+1][j] = radii[i] * math.Cos(float64(j)*angle)
		}
	}
	return basis
}

// tonnetz projects an L1-normalized chroma frame onto the tonal centroid
// basis. Silent frames map to the origin.
func (p *Pipeline) tonnetz(chroma []float64) []float64 {
	var norm float64
	for _, c := range chroma {
		norm += math.Abs(c)
	}
	out := make([]float64, numTonnetz)
	if norm == 0 {
		return out
	}
	for d, row := range p.tonnetzBasis {
		var sum float64
		for j, w := range row {
			sum += w * chroma[j] / norm
		}
		out[d] = sum
	}
	return out
}
