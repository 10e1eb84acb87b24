package tutor

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildWAV wraps PCM16 samples in a minimal RIFF/WAVE container.
func buildWAV(pcm []byte, sampleRate, channels int) []byte {
	buf := make([]byte, 44+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[44:], pcm)
	return buf
}

func TestDecodePCMUnwrapsWAV(t *testing.T) {
	samples := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	wav := buildWAV(samples, 22050, 2)

	pcm, rate, channels := decodePCM(wav)

	if !bytes.Equal(pcm, samples) {
		t.Errorf("pcm = %v, want %v (header must not leak into playback)", pcm, samples)
	}
	if rate != 22050 {
		t.Errorf("sample rate = %d, want 22050", rate)
	}
	if channels != 2 {
		t.Errorf("channels = %d, want 2", channels)
	}
}

func TestDecodePCMRawPassthrough(t *testing.T) {
	raw := []byte{0x10, 0x20, 0x30, 0x40}

	pcm, rate, channels := decodePCM(raw)

	if !bytes.Equal(pcm, raw) {
		t.Errorf("raw audio must pass through unchanged, got %v", pcm)
	}
	if rate != 16000 || channels != 1 {
		t.Errorf("format = %d/%d, want 16000/1", rate, channels)
	}
}

func TestDecodePCMSkipsExtraChunks(t *testing.T) {
	samples := []byte{0x0a, 0x0b, 0x0c, 0x0d}
	wav := buildWAV(samples, 16000, 1)

	// Splice a LIST chunk between fmt and data, as real encoders do.
	list := append([]byte("LIST"), 0x04, 0x00, 0x00, 0x00, 'I', 'N', 'F', 'O')
	spliced := append(append(append([]byte{}, wav[:36]...), list...), wav[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	pcm, rate, channels := decodePCM(spliced)

	if !bytes.Equal(pcm, samples) {
		t.Errorf("pcm = %v, want %v", pcm, samples)
	}
	if rate != 16000 || channels != 1 {
		t.Errorf("format = %d/%d, want 16000/1", rate, channels)
	}
}
