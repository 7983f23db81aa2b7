package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WAV framing for 16-bit PCM. The corpus carries no audio codec dependency;
// the 44-byte canonical header is written directly.

const (
	wavFormatPCM   = 1
	wavBitsPerSamp = 16
)

// EncodeWAV writes the clip as a mono 16-bit PCM WAV stream.
func EncodeWAV(w io.Writer, clip Clip) error {
	if clip.Rate <= 0 {
		return fmt.Errorf("encode wav: invalid sample rate %d", clip.Rate)
	}
	dataSize := len(clip.Samples) * 2
	blockAlign := wavBitsPerSamp / 8
	byteRate := clip.Rate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)
	buf.WriteString("RIFF")
	writeU32(&buf, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeU32(&buf, 16)
	writeU16(&buf, wavFormatPCM)
	writeU16(&buf, 1) // channels
	writeU32(&buf, uint32(clip.Rate))
	writeU32(&buf, uint32(byteRate))
	writeU16(&buf, uint16(blockAlign))
	writeU16(&buf, wavBitsPerSamp)
	buf.WriteString("data")
	writeU32(&buf, uint32(dataSize))

	for _, sample := range clip.Samples {
		buf.Write(pcm16Bytes(sample))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteWAVFile writes the clip to path, creating or truncating it.
func WriteWAVFile(path string, clip Clip) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	if err := EncodeWAV(file, clip); err != nil {
		file.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// DecodeWAV reads a 16-bit PCM WAV stream. Multi-channel input is averaged
// down to mono.
func DecodeWAV(r io.Reader) (Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Clip{}, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("decode wav: not a RIFF/WAVE stream")
	}

	var (
		rate      int
		channels  int
		bits      int
		havePCM   bool
		pcm       []byte
		havePCMIn bool
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Clip{}, fmt.Errorf("decode wav: truncated fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if format != wavFormatPCM {
				return Clip{}, fmt.Errorf("decode wav: unsupported format %d (want PCM)", format)
			}
			havePCM = true
		case "data":
			pcm = data[body : body+chunkSize]
			havePCMIn = true
		}
		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !havePCM || !havePCMIn {
		return Clip{}, fmt.Errorf("decode wav: missing fmt or data chunk")
	}
	if bits != wavBitsPerSamp {
		return Clip{}, fmt.Errorf("decode wav: unsupported bit depth %d (want 16)", bits)
	}
	if channels <= 0 || rate <= 0 {
		return Clip{}, fmt.Errorf("decode wav: invalid fmt (channels=%d rate=%d)", channels, rate)
	}

	frameBytes := channels * 2
	frames := len(pcm) / frameBytes
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			idx := i*frameBytes + ch*2
			raw := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float64(raw) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}
	return Clip{Samples: samples, Rate: rate}, nil
}

// ReadWAVFile reads a WAV file from path.
func ReadWAVFile(path string) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()
	clip, err := DecodeWAV(file)
	if err != nil {
		return Clip{}, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

func pcm16Bytes(sample float64) []byte {
	clamped := math.Max(-1, math.Min(1, sample))
	value := int16(math.Round(clamped * 32767))
	var out [2]byte
	binary.LittleEndian.PutUint16(out[:], uint16(value))
	return out[:]
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], v)
	buf.Write(out[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var out [2]byte
	binary.LittleEndian.PutUint16(out[:], v)
	buf.Write(out[:])
}
