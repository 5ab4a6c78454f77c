// internal/audio/ffmpeg.go
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"time"
)

const ffmpegTimeout = 5 * time.Minute

// decodeFFmpeg shells out to ffmpeg and reads mono f32le PCM at the
// requested rate from stdout. Used for containers we cannot decode natively
// (M4A/AAC). ffmpeg must be on PATH; if it is not, the error surfaces as an
// extraction failure to the caller.
func decodeFFmpeg(ctx context.Context, path string, sampleRate int) ([]float64, int, error) {
	ctx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()

	args := []string{
		"-hide_banner", "-v", "error",
		"-i", path,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-f", "f32le",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, 0, fmt.Errorf("ffmpeg decode: %w: %s", err, msg)
		}
		return nil, 0, fmt.Errorf("ffmpeg decode: %w", err)
	}

	raw := out.Bytes()
	if len(raw) == 0 {
		return nil, 0, errors.New("ffmpeg decode: empty audio stream")
	}
	if len(raw)%4 != 0 {
		return nil, 0, errors.New("ffmpeg decode: unexpected byte length")
	}

	n := len(raw) / 4
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples, sampleRate, nil
}
