package player

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const (
	oggHeaderSize  = 27
	opusSampleRate = 48000
	maxOpusFrame   = 5760
)

// opusPreroll is the 80 ms of audio Opus needs to converge after a seek.
const opusPreroll = 3840

var (
	errOggMagic     = errors.New("ogg: invalid capture pattern")
	errOggVersion   = errors.New("ogg: unsupported version")
	errOggTruncated = errors.New("ogg: truncated page")
	errOggHeaders   = errors.New("ogg: missing codec headers")
	errOpusHead     = errors.New("opus: invalid OpusHead packet")
	errVorbisIdent  = errors.New("vorbis: invalid identification header")
)

// oggPacket is one codec packet. granule is the page granule position when
// the packet is the last one completed on its page, and -1 otherwise.
type oggPacket struct {
	data    []byte
	granule int64
}

// demuxOgg splits the first logical bitstream of an in-memory Ogg file into
// packets. A truncated final page ends the stream.
func demuxOgg(data []byte) ([]oggPacket, error) {
	var (
		packets []oggPacket
		partial []byte
		serial  uint32
	)
	first := true

	for off := 0; off < len(data); {
		if len(data)-off < oggHeaderSize {
			break
		}
		hdr := data[off : off+oggHeaderSize]
		if string(hdr[0:4]) != "OggS" {
			if first {
				return nil, errOggMagic
			}
			break
		}
		if hdr[4] != 0 {
			return nil, errOggVersion
		}
		granule := int64(binary.LittleEndian.Uint64(hdr[6:14])) //nolint:gosec // granule is signed on the wire
		pageSerial := binary.LittleEndian.Uint32(hdr[14:18])
		segments := int(hdr[26])

		tableStart := off + oggHeaderSize
		if tableStart+segments > len(data) {
			break
		}
		table := data[tableStart : tableStart+segments]
		bodyLen := 0
		for _, s := range table {
			bodyLen += int(s)
		}
		body := tableStart + segments
		if body+bodyLen > len(data) {
			if first {
				return nil, errOggTruncated
			}
			break
		}
		off = body + bodyLen

		if first {
			serial = pageSerial
			first = false
		} else if pageSerial != serial {
			continue
		}

		last := -1
		pos := body
		for _, s := range table {
			partial = append(partial, data[pos:pos+int(s)]...)
			pos += int(s)
			if s < 255 {
				packets = append(packets, oggPacket{data: partial, granule: -1})
				partial = nil
				last = len(packets) - 1
			}
		}
		if last >= 0 {
			packets[last].granule = granule
		}
	}

	if first {
		return nil, errOggMagic
	}
	return packets, nil
}

// oggCodec decodes the audio packets of one Ogg stream to interleaved PCM.
type oggCodec interface {
	channels() int
	sampleRate() int
	preSkip() int
	// headers is the number of leading header packets.
	headers() int
	// warmup is the number of packets that decode to nothing after reset.
	warmup() int
	decode(packet []byte) ([]float32, error)
	reset()
}

type vorbisCodec struct {
	dec   *vorbis.Decoder
	chans int
	rate  int
}

func newVorbisCodec(packets []oggPacket) (*vorbisCodec, error) {
	if len(packets) < 3 {
		return nil, errOggHeaders
	}
	ident := packets[0].data
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 {
		return nil, errVorbisIdent
	}
	dec := &vorbis.Decoder{}
	for _, p := range packets[:3] {
		if err := dec.ReadHeader(p.data); err != nil {
			return nil, fmt.Errorf("vorbis: %w", err)
		}
	}
	return &vorbisCodec{
		dec:   dec,
		chans: int(ident[11]),
		rate:  int(binary.LittleEndian.Uint32(ident[12:16])),
	}, nil
}

func (c *vorbisCodec) channels() int   { return c.chans }
func (c *vorbisCodec) sampleRate() int { return c.rate }
func (c *vorbisCodec) preSkip() int    { return 0 }
func (c *vorbisCodec) headers() int    { return 3 }
func (c *vorbisCodec) warmup() int     { return 1 }
func (c *vorbisCodec) reset()          { c.dec.Clear() }

func (c *vorbisCodec) decode(packet []byte) ([]float32, error) {
	return c.dec.Decode(packet)
}

type opusCodec struct {
	dec   *opus.Decoder
	chans int
	skip  int
	pcm   []float32
}

func newOpusCodec(packets []oggPacket) (*opusCodec, error) {
	if len(packets) < 2 {
		return nil, errOggHeaders
	}
	head := packets[0].data
	if len(head) < 19 || string(head[:8]) != "OpusHead" || head[8] != 1 {
		return nil, errOpusHead
	}
	chans := int(head[9])
	if chans < 1 || chans > 2 {
		return nil, fmt.Errorf("opus: unsupported channel count %d", chans)
	}
	dec, err := opus.NewDecoder(opusSampleRate, chans)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		dec:   dec,
		chans: chans,
		skip:  int(binary.LittleEndian.Uint16(head[10:12])),
		pcm:   make([]float32, maxOpusFrame*chans),
	}, nil
}

func (c *opusCodec) channels() int   { return c.chans }
func (c *opusCodec) sampleRate() int { return opusSampleRate }
func (c *opusCodec) preSkip() int    { return c.skip }
func (c *opusCodec) headers() int    { return 2 }
func (c *opusCodec) warmup() int     { return 0 }
func (c *opusCodec) reset()          {}

func (c *opusCodec) decode(packet []byte) ([]float32, error) {
	n, err := c.dec.DecodeFloat32(packet, c.pcm)
	if err != nil {
		return nil, err
	}
	return c.pcm[:n*c.chans], nil
}

func decodeVorbis(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	packets, err := demuxOgg(data)
	if err != nil {
		return nil, beep.Format{}, err
	}
	codec, err := newVorbisCodec(packets)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return newOggStream(codec, packets, 0)
}

func decodeOpus(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	packets, err := demuxOgg(data)
	if err != nil {
		return nil, beep.Format{}, err
	}
	codec, err := newOpusCodec(packets)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return newOggStream(codec, packets, opusPreroll)
}

// oggStream implements beep.StreamSeekCloser over demuxed packets.
type oggStream struct {
	codec   oggCodec
	packets []oggPacket // audio packets only
	preroll int

	next   int // next packet to decode
	pcm    []float32
	pcmPos int
	drop   int   // decoded samples to discard before output
	pos    int64 // output position in samples
	length int64
	err    error
}

func newOggStream(codec oggCodec, packets []oggPacket, preroll int) (*oggStream, beep.Format, error) {
	channels := codec.channels()
	if channels < 1 {
		return nil, beep.Format{}, errOggHeaders
	}
	audio := packets[codec.headers():]

	var last int64
	for _, p := range audio {
		last = max(last, p.granule)
	}

	s := &oggStream{
		codec:   codec,
		packets: audio,
		preroll: preroll,
		drop:    codec.preSkip(),
		length:  max(last-int64(codec.preSkip()), 0),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.sampleRate()),
		NumChannels: channels,
		Precision:   2,
	}
	return s, format, nil
}

// Stream reads audio samples into the provided buffer.
func (s *oggStream) Stream(samples [][2]float64) (n int, ok bool) {
	channels := s.codec.channels()

	for n < len(samples) {
		if s.pcmPos+channels <= len(s.pcm) {
			frame := s.pcm[s.pcmPos : s.pcmPos+channels]
			s.pcmPos += channels
			if s.drop > 0 {
				s.drop--
				continue
			}
			samples[n][0] = float64(frame[0])
			samples[n][1] = float64(frame[channels-1])
			n++
			s.pos++
			continue
		}

		if s.next >= len(s.packets) {
			return n, n > 0
		}
		pcm, err := s.codec.decode(s.packets[s.next].data)
		s.next++
		if err != nil {
			continue // skip undecodable packets
		}
		s.pcm = pcm
		s.pcmPos = 0
	}

	return n, true
}

func (s *oggStream) Err() error { return s.err }

func (s *oggStream) Len() int { return int(s.length) }

func (s *oggStream) Position() int { return int(min(s.pos, s.length)) }

// Seek restarts decoding at the last page boundary at least preroll samples
// before p and discards up to p. Warm-up packets are fed from before the
// boundary so the first decoded sample is the boundary sample.
func (s *oggStream) Seek(p int) error {
	target := min(max(int64(p), 0), s.length)
	skip := int64(s.codec.preSkip())

	start, base := 0, -skip
	for i, pkt := range s.packets {
		if pkt.granule < 0 {
			continue
		}
		if pkt.granule-skip > target-int64(s.preroll) {
			break
		}
		start, base = i+1, pkt.granule-skip
	}

	s.codec.reset()
	s.next = max(start-s.codec.warmup(), 0)
	s.pcm = nil
	s.pcmPos = 0
	s.drop = int(target - base)
	s.pos = target
	s.err = nil
	return nil
}

func (s *oggStream) Close() error { return nil }
