// internal/audio/decode.go
// Package audio decodes uploaded audio files into mono float64 waveforms.
//
// WAV, MP3 and FLAC are decoded natively; M4A falls back to an ffmpeg
// subprocess because no pure-Go AAC decoder exists. Multi-channel input is
// downmixed to mono by averaging channels.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// Extensions lists the accepted upload extensions (lower case, with dot).
var Extensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
}

// Decode reads the audio file at path and returns its samples as mono
// float64 in [-1, 1] along with the source sample rate. The decoder is
// selected by file extension.
func Decode(ctx context.Context, path string) ([]float64, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(path)
	case ".mp3":
		return decodeMP3(path)
	case ".flac":
		return decodeFLAC(path)
	case ".m4a":
		return decodeFFmpeg(ctx, path, DefaultSampleRate)
	default:
		return nil, 0, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

func decodeWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav decode: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("wav decode: empty audio stream")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}
	return samples, buf.Format.SampleRate, nil
}

func decodeMP3(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode: %w", err)
	}
	if len(raw) < 4 {
		return nil, 0, errors.New("mp3 decode: empty audio stream")
	}

	frames := len(raw) / 4
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = (float64(left) + float64(right)) / 2 / 32768.0
	}
	return samples, dec.SampleRate(), nil
}

func decodeFLAC(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, 0, fmt.Errorf("flac decode: %w", err)
	}

	info := stream.Info
	scale := float64(int64(1) << (info.BitsPerSample - 1))

	var samples []float64
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("flac decode: %w", err)
		}
		channels := len(frame.Subframes)
		if channels == 0 {
			continue
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var sum float64
			for _, sf := range frame.Subframes {
				sum += float64(sf.Samples[i])
			}
			samples = append(samples, sum/float64(channels)/scale)
		}
	}
	if len(samples) == 0 {
		return nil, 0, errors.New("flac decode: empty audio stream")
	}
	return samples, int(info.SampleRate), nil
}
