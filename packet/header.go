package packet

import "encoding/binary"

const (
	// Version is the wire-format revision, encoder and decoder must agree on it.
	Version uint64 = 69

	HeaderSize = 16
)

// Header identifies a packet.
type Header struct {
	// PacketID increases by one for every packet a Producer makes.
	PacketID      uint64
	PacketVersion uint64
}

// EncodeHeader encodes the packet id and then the version, both big-endian.
func EncodeHeader(h Header) [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint64(b[0:8], h.PacketID)
	binary.BigEndian.PutUint64(b[8:16], h.PacketVersion)
	return b
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	b := EncodeHeader(h)
	return append(dst, b[:]...)
}

// DecodeHeader decodes a header from the front of b and returns the number of
// bytes consumed. The version is not validated here.
func DecodeHeader(b []byte) (Header, int, error) {
	if len(b) < HeaderSize {
		return Header{}, 0, shortRead("header")
	}
	return Header{
		PacketID:      binary.BigEndian.Uint64(b[0:8]),
		PacketVersion: binary.BigEndian.Uint64(b[8:16]),
	}, HeaderSize, nil
}
