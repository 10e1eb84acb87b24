package web

import (
	"encoding/binary"
	"strings"

	"github.com/falalabs/go-fala/pkg/models"
)

// defaultCatalog mirrors a typical local model installation. Ratings
// follow the 1-5 scales the client's selection policy expects.
func defaultCatalog() []models.Info {
	return []models.Info{
		{ID: "llama3.2:1b", Size: "1.3GB", Cost: 1, SpeedRating: 5, QualityRating: 2, ContextWindow: 8192, Available: true},
		{ID: "gemma2:2b", Size: "1.6GB", Cost: 1, SpeedRating: 5, QualityRating: 3, ContextWindow: 8192, Available: true},
		{ID: "llama3.2:3b", Size: "2.0GB", Cost: 2, SpeedRating: 4, QualityRating: 4, ContextWindow: 8192, Available: true},
		{ID: "phi3:mini", Size: "2.2GB", Cost: 2, SpeedRating: 4, QualityRating: 3, ContextWindow: 4096, Available: true},
		{ID: "mistral:7b", Size: "4.1GB", Cost: 4, SpeedRating: 2, QualityRating: 5, ContextWindow: 8192, Available: true},
	}
}

// cannedTranscription stands in for a speech recognizer. An empty
// recording yields an empty transcription, which exercises the
// client's TranscriptionFailed path.
func cannedTranscription(audio []byte) string {
	if len(audio) == 0 {
		return ""
	}
	return "Hello, can we practice some English?"
}

// cannedReply produces a tutor-flavored reply without a model.
func cannedReply(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "house"):
		return "You say 'house'. For example: my house is small."
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! Of course, let's practice. How was your day?"
	case strings.HasSuffix(strings.TrimSpace(text), "?"):
		return "Good question! Let's break it down together."
	default:
		return "Nice sentence. Try saying it again a little slower."
	}
}

// simulatedPerformance derives plausible timing numbers from the
// model's speed rating so the client's stats and policy have real
// inputs to chew on.
func simulatedPerformance(m models.Info) (latencySeconds, tokensPerSecond float64) {
	speed := m.SpeedRating
	if speed < 1 {
		speed = 3
	}
	return 0.2 * float64(6-speed), 12 * float64(speed)
}

// wavSilence returns a minimal valid 16 kHz mono PCM16 WAV of the
// given duration.
func wavSilence(ms int) []byte {
	const sampleRate = 16000
	samples := sampleRate * ms / 1000
	dataLen := samples * 2

	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], sampleRate*2)
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	return buf
}
