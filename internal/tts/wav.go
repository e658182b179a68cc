package tts

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	bitsPerSample = 16
	channels      = 1
)

// WriteWAV writes the concatenated PCM chunks as one mono 16-bit WAV file.
// The file is written to a temp name and renamed, so a failure leaves nothing behind.
func WriteWAV(path string, chunks [][]byte, sampleRate int) error {
	var dataLen int
	for _, c := range chunks {
		dataLen += len(c)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tts-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeHeader(tmp, dataLen, sampleRate); err != nil {
		tmp.Close()
		return fmt.Errorf("write wav header: %w", err)
	}
	for _, c := range chunks {
		if _, err := tmp.Write(c); err != nil {
			tmp.Close()
			return fmt.Errorf("write wav data: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func writeHeader(w io.Writer, dataLen, sampleRate int) error {
	blockAlign := channels * bitsPerSample / 8
	header := struct {
		ChunkID       [4]byte
		ChunkSize     uint32
		Format        [4]byte
		Subchunk1ID   [4]byte
		Subchunk1Size uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Subchunk2ID   [4]byte
		Subchunk2Size uint32
	}{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + dataLen),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataLen),
	}
	return binary.Write(w, binary.LittleEndian, header)
}
