// Package packet implements the telemetry packet wire codec.
package packet

import (
	"hash/crc32"
	"math"

	"github.com/damnever/samplewire/internal/pkg/encoding"
)

const (
	// FixedPrefixSize covers the header, batch id and sample rate.
	FixedPrefixSize = HeaderSize + 8 + 4
	lenSize         = 4
	floatSize       = 4
	checksumSize    = 4
)

// Packet is a single telemetry packet.
//
// Wire layout, big-endian without padding:
//
//	packet_id u64 | packet_version u64 | batch_id u64 | sample_rate u32 |
//	n1 u32 | n1 x f32 | n2 u32 | n2 x f32 | checksum u32
//
// The checksum is CRC-32 (IEEE) over every preceding byte of the packet.
type Packet struct {
	Header

	BatchID      uint64
	SampleRate   uint32
	SampleData   []float32
	SpectrumData []float32
	Checksum     uint32
}

// EncodedSize returns the encoded size of a packet carrying n1 samples and
// n2 spectrum values.
func EncodedSize(n1, n2 int) int {
	return FixedPrefixSize + lenSize + floatSize*n1 + lenSize + floatSize*n2 + checksumSize
}

func (p *Packet) EncodedSize() int {
	return EncodedSize(len(p.SampleData), len(p.SpectrumData))
}

// Encode writes p into buf and returns the number of bytes written. Nothing is
// written when buf can not hold the whole packet. p.Checksum is updated.
func Encode(p *Packet, buf []byte) (int, error) {
	if err := checkLengths(len(p.SampleData), len(p.SpectrumData)); err != nil {
		return 0, err
	}
	if len(buf) < p.EncodedSize() {
		return 0, ErrBufferTooSmall
	}

	w := encoding.NewWriter(buf)
	h := EncodeHeader(p.Header)
	w.PutBytes(h[:])
	w.PutUint64(p.BatchID)
	w.PutUint32(p.SampleRate)
	w.PutUint32(uint32(len(p.SampleData)))
	w.PutFloat32s(p.SampleData)
	w.PutUint32(uint32(len(p.SpectrumData)))
	w.PutFloat32s(p.SpectrumData)

	sum := crc32.ChecksumIEEE(w.Written())
	w.PutUint32(sum)
	p.Checksum = sum
	return w.Offset(), nil
}

// checkLengths rejects arrays whose length does not fit the u32 length field.
func checkLengths(n1, n2 int) error {
	for _, arr := range [...]struct {
		field string
		n     int
	}{
		{"sample_data", n1},
		{"spectrum_data", n2},
	} {
		if uint64(arr.n) > math.MaxUint32 {
			return &LengthError{Field: arr.field, Declared: uint64(arr.n), Limit: math.MaxUint32}
		}
	}
	return nil
}

// Decode decodes one packet from the front of buf, bytes after the packet are
// ignored. On failure the packet is nil.
func Decode(buf []byte) (*Packet, error) {
	p, _, err := DecodeN(buf)
	return p, err
}

// DecodeN is like Decode and also returns the number of bytes the packet took.
func DecodeN(buf []byte) (*Packet, int, error) {
	h, n, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if h.PacketVersion != Version {
		return nil, 0, &VersionError{Got: h.PacketVersion, Want: Version}
	}

	r := encoding.NewReader(buf)
	r.Skip(n)

	p := &Packet{Header: h}
	var ok bool
	if p.BatchID, ok = r.Uint64(); !ok {
		return nil, 0, shortRead("batch_id")
	}
	if p.SampleRate, ok = r.Uint32(); !ok {
		return nil, 0, shortRead("sample_rate")
	}
	if p.SampleData, err = readFloats(r, "sample_data"); err != nil {
		return nil, 0, err
	}
	if p.SpectrumData, err = readFloats(r, "spectrum_data"); err != nil {
		return nil, 0, err
	}

	computed := crc32.ChecksumIEEE(r.Consumed())
	if p.Checksum, ok = r.Uint32(); !ok {
		return nil, 0, shortRead("checksum")
	}
	if p.Checksum != computed {
		return nil, 0, &ChecksumError{Stored: p.Checksum, Computed: computed}
	}
	return p, r.Offset(), nil
}

func readFloats(r *encoding.Reader, field string) ([]float32, error) {
	n, ok := r.Uint32()
	if !ok {
		return nil, shortRead(field + "_len")
	}
	if limit := uint64(r.Remaining() / floatSize); uint64(n) > limit {
		return nil, &LengthError{Field: field, Declared: uint64(n), Limit: limit, Truncated: true}
	}
	vs, ok := r.Float32s(int(n))
	if !ok {
		return nil, shortRead(field)
	}
	return vs, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Packet) MarshalBinary() ([]byte, error) {
	if err := checkLengths(len(p.SampleData), len(p.SpectrumData)); err != nil {
		return nil, err
	}
	buf := make([]byte, p.EncodedSize())
	n, err := Encode(p, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, data must hold
// exactly one packet. p is left untouched on failure.
func (p *Packet) UnmarshalBinary(data []byte) error {
	decoded, n, err := DecodeN(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return ErrTrailingBytes
	}
	*p = *decoded
	return nil
}
