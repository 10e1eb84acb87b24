package tutor

import "encoding/binary"

// Synthesis backends answer with 16 kHz mono PCM when no container is
// recognized.
const (
	fallbackSampleRate = 16000
	fallbackChannels   = 1
)

// decodePCM extracts raw PCM16 samples and their format from a
// synthesized audio payload. WAV containers are unwrapped so the
// header is never played as audio; anything else is treated as raw
// PCM at the fallback format.
func decodePCM(data []byte) (pcm []byte, sampleRate, channels int) {
	sampleRate = fallbackSampleRate
	channels = fallbackChannels

	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return data, sampleRate, channels
	}

	// Walk the RIFF chunks: "fmt " describes the format, "data" holds
	// the samples.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size >= 8 {
				if ch := int(binary.LittleEndian.Uint16(data[body+2 : body+4])); ch > 0 {
					channels = ch
				}
				if sr := int(binary.LittleEndian.Uint32(data[body+4 : body+8])); sr > 0 {
					sampleRate = sr
				}
			}
		case "data":
			pcm = data[body : body+size]
		}

		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if pcm == nil {
		// Malformed container; skip the standard header at least.
		pcm = data[44:]
	}
	return pcm, sampleRate, channels
}
