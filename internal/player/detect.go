package player

import (
	"bytes"
	"encoding/binary"
)

// detect identifies the decoder for data by its leading bytes.
func detect(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte("fLaC")):
		return "flac", nil
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav", nil
	case bytes.HasPrefix(data, []byte("OggS")):
		return detectOgg(data)
	}

	body := skipID3v2(data)
	if bytes.HasPrefix(body, []byte("fLaC")) {
		return "flac", nil
	}
	if len(body) >= 2 && body[0] == 0xFF && body[1]&0xE0 == 0xE0 {
		return "mp3", nil
	}
	return "", ErrUnknownFormat
}

// detectOgg picks the codec from the first packet of an Ogg stream.
func detectOgg(data []byte) (string, error) {
	packets, err := demuxOgg(data)
	if err != nil || len(packets) == 0 {
		return "", ErrUnknownFormat
	}
	switch first := packets[0].data; {
	case bytes.HasPrefix(first, []byte("OpusHead")):
		return "opus", nil
	case len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis":
		return "vorbis", nil
	}
	return "", ErrUnknownFormat
}

// skipID3v2 returns data without a leading ID3v2 tag. Some taggers prepend one
// to FLAC files, which the FLAC decoder does not handle.
func skipID3v2(data []byte) []byte {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return data
	}
	// Tag size is a 28-bit synchsafe integer excluding the 10-byte header.
	raw := binary.BigEndian.Uint32(data[6:10])
	size := int(raw&0x7F | (raw>>8&0x7F)<<7 | (raw>>16&0x7F)<<14 | (raw>>24&0x7F)<<21)
	end := 10 + size
	if data[5]&0x10 != 0 {
		end += 10 // footer present
	}
	if end > len(data) {
		return data[len(data):]
	}
	return data[end:]
}
