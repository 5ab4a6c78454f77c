// internal/feature/tempo.go
package feature

import "gonum.org/v1/gonum/stat"

const (
	minBPM = 40.0
	maxBPM = 240.0
)

// onsetEnvelope computes a spectral-flux onset strength signal: per frame,
// the summed positive change in log mel energy since the previous frame.
func onsetEnvelope(melLogs [][]float64) []float64 {
	env := make([]float64, len(melLogs))
	for t := 1; t < len(melLogs); t++ {
		var flux float64
		for b := range melLogs[t] {
			if d := melLogs[t][b] - melLogs[t-1][b]; d > 0 {
				flux += d
			}
		}
		env[t] = flux
	}
	return env
}

// estimateTempo picks the BPM whose beat period maximizes the
// autocorrelation of the onset envelope. A flat envelope (silence, constant
// tone) reports 0 rather than an arbitrary tempo.
func estimateTempo(env []float64) float64 {
	if len(env) < 4 {
		return 0
	}

	frameRate := float64(SampleRate) / float64(hopSize)
	lagMin := int(60 * frameRate / maxBPM)
	lagMax := int(60 * frameRate / minBPM)
	if lagMin < 1 {
		lagMin = 1
	}
	if lagMax >= len(env) {
		lagMax = len(env) - 1
	}
	if lagMax < lagMin {
		return 0
	}

	mean := stat.Mean(env, nil)
	centered := make([]float64, len(env))
	anySignal := false
	for i, v := range env {
		centered[i] = v - mean
		if v != 0 {
			anySignal = true
		}
	}
	if !anySignal {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := lagMin; lag <= lagMax; lag++ {
		var corr float64
		for i := lag; i < len(centered); i++ {
			corr += centered[i] * centered[i-lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return 60 * frameRate / float64(bestLag)
}
