package packet

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func randomPacket(rnd *rand.Rand, producer *Producer, n1, n2 int) *Packet {
	p := producer.MakePacket()
	p.BatchID = rnd.Uint64()
	p.SampleRate = rnd.Uint32()
	for i := 0; i < n1; i++ {
		p.SampleData = append(p.SampleData, rnd.Float32()*2-1)
	}
	for i := 0; i < n2; i++ {
		p.SpectrumData = append(p.SpectrumData, rnd.Float32()*1000)
	}
	return p
}

func mustMarshal(t *testing.T, p *Packet) []byte {
	data, err := p.MarshalBinary()
	require.Nil(t, err)
	return data
}

func TestEncodeDecodeScenario(t *testing.T) {
	p := NewProducer().MakePacket()
	p.BatchID = 42
	p.SampleRate = 48000
	p.SampleData = []float32{1.0, 2.0, 3.0}
	p.SpectrumData = []float32{}

	buf := make([]byte, 128)
	n, err := Encode(p, buf)
	require.Nil(t, err)
	require.Equal(t, HeaderSize+8+4+4+12+4+0+4, n)
	require.Equal(t, n, p.EncodedSize())
	require.Equal(t, crc32.ChecksumIEEE(buf[:n-4]), p.Checksum)
	require.Equal(t, p.Checksum, binary.BigEndian.Uint32(buf[n-4:n]))

	got, err := Decode(buf[:n])
	require.Nil(t, err)
	require.Equal(t, p.Header, got.Header)
	require.Equal(t, uint64(42), got.BatchID)
	require.Equal(t, uint32(48000), got.SampleRate)
	require.Equal(t, []float32{1.0, 2.0, 3.0}, got.SampleData)
	require.Empty(t, got.SpectrumData)
	require.Equal(t, p.Checksum, got.Checksum)
}

func TestWireLayout(t *testing.T) {
	p := &Packet{
		Header:       Header{PacketID: 1, PacketVersion: Version},
		BatchID:      2,
		SampleRate:   3,
		SampleData:   []float32{1.5},
		SpectrumData: []float32{-2},
	}
	data := mustMarshal(t, p)
	require.Equal(t, EncodedSize(1, 1), len(data))

	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 1, // packet_id
		0, 0, 0, 0, 0, 0, 0, 69, // packet_version
		0, 0, 0, 0, 0, 0, 0, 2, // batch_id
		0, 0, 0, 3, // sample_rate
		0, 0, 0, 1, // sample_data_len
		0x3f, 0xc0, 0, 0, // 1.5
		0, 0, 0, 1, // spectrum_data_len
		0xc0, 0, 0, 0, // -2
	}
	require.Equal(t, want, data[:len(data)-4])
	require.Equal(t, crc32.ChecksumIEEE(want), binary.BigEndian.Uint32(data[len(data)-4:]))
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(69))
	producer := NewProducer()
	for n1 := 0; n1 <= 9; n1++ {
		for _, n2 := range []int{0, 1, 5, 33} {
			p := randomPacket(rnd, producer, n1, n2)
			data := mustMarshal(t, p)
			require.Len(t, data, EncodedSize(n1, n2))

			got, err := Decode(data)
			require.Nil(t, err)
			if diff := cmp.Diff(p, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("n1=%d n2=%d: round trip mismatch (-want +got):\n%s", n1, n2, diff)
			}
		}
	}
}

func TestRoundTripSpecialFloats(t *testing.T) {
	p := NewProducer().MakePacket()
	p.SampleData = []float32{float32(math.Inf(1)), float32(math.Inf(-1)), math.MaxFloat32, math.SmallestNonzeroFloat32}
	p.SpectrumData = []float32{float32(math.Copysign(0, -1))}

	got, err := Decode(mustMarshal(t, p))
	require.Nil(t, err)
	require.Equal(t, p.SampleData, got.SampleData)
	require.Equal(t, math.Float32bits(p.SpectrumData[0]), math.Float32bits(got.SpectrumData[0]))
}

func TestEncodeBufferTooSmall(t *testing.T) {
	p := NewProducer().MakePacket()
	p.SampleData = []float32{1, 2, 3}
	p.SpectrumData = []float32{4}

	buf := make([]byte, p.EncodedSize()-1)
	n, err := Encode(p, buf)
	require.ErrorIs(t, err, ErrBufferTooSmall)
	require.Equal(t, 0, n)
	require.Equal(t, make([]byte, len(buf)), buf, "nothing may be written")
	require.Zero(t, p.Checksum)

	n, err = Encode(p, make([]byte, p.EncodedSize()+10))
	require.Nil(t, err)
	require.Equal(t, p.EncodedSize(), n)
}

func TestDecodeTruncated(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	data := mustMarshal(t, randomPacket(rnd, NewProducer(), 7, 4))
	for i := 0; i < len(data); i++ {
		p, err := Decode(data[:i])
		require.ErrorIs(t, err, ErrShortRead, "prefix of %d bytes", i)
		require.Nil(t, p)
	}
}

func TestDecodeCorruption(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	data := mustMarshal(t, randomPacket(rnd, NewProducer(), 5, 3))
	n1Off := FixedPrefixSize
	n2Off := n1Off + 4 + 4*5
	checksumOff := len(data) - 4

	for i := range data {
		corrupted := append([]byte(nil), data...)
		corrupted[i] ^= 0xff

		p, err := Decode(corrupted)
		require.Error(t, err, "byte %d", i)
		require.Nil(t, p)
		switch {
		case i >= 8 && i < 16:
			require.ErrorIs(t, err, ErrVersionMismatch, "byte %d", i)
		case i >= n1Off && i < n1Off+4, i >= n2Off && i < n2Off+4:
			if !errors.Is(err, ErrInvalidLength) {
				require.ErrorIs(t, err, ErrChecksumMismatch, "byte %d", i)
			}
		case i >= checksumOff:
			require.ErrorIs(t, err, ErrChecksumMismatch, "byte %d", i)
			var cerr *ChecksumError
			require.True(t, errors.As(err, &cerr))
			require.NotEqual(t, cerr.Stored, cerr.Computed)
		default:
			require.ErrorIs(t, err, ErrChecksumMismatch, "byte %d", i)
		}
	}
}

func TestDecodeVersionGate(t *testing.T) {
	p := NewProducer().MakePacket()
	p.BatchID = 9
	p.SampleData = []float32{1}
	data := mustMarshal(t, p)

	binary.BigEndian.PutUint64(data[8:16], Version+1)
	binary.BigEndian.PutUint32(data[len(data)-4:], crc32.ChecksumIEEE(data[:len(data)-4]))

	got, err := Decode(data)
	require.ErrorIs(t, err, ErrVersionMismatch)
	require.Nil(t, got)
	var verr *VersionError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, Version+1, verr.Got)
	require.Equal(t, Version, verr.Want)
}

func TestDecodeAdversarialLength(t *testing.T) {
	p := NewProducer().MakePacket()
	data := mustMarshal(t, p)
	binary.BigEndian.PutUint32(data[FixedPrefixSize:], math.MaxUint32)

	got, err := Decode(data)
	require.Nil(t, got)
	require.ErrorIs(t, err, ErrInvalidLength)
	require.ErrorIs(t, err, ErrShortRead)
	var lerr *LengthError
	require.True(t, errors.As(err, &lerr))
	require.Equal(t, "sample_data", lerr.Field)
	require.Equal(t, uint64(math.MaxUint32), lerr.Declared)
	require.Equal(t, uint64(2), lerr.Limit) // spectrum length and checksum remain
}

func TestDecodeNTrailingBytes(t *testing.T) {
	p := NewProducer().MakePacket()
	p.SampleData = []float32{1, 2}
	data := mustMarshal(t, p)
	padded := append(append([]byte(nil), data...), 0xde, 0xad)

	got, n, err := DecodeN(padded)
	require.Nil(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, p.SampleData, got.SampleData)

	dst := &Packet{BatchID: 77}
	require.ErrorIs(t, dst.UnmarshalBinary(padded), ErrTrailingBytes)
	require.Equal(t, &Packet{BatchID: 77}, dst)

	require.Nil(t, dst.UnmarshalBinary(data))
	require.Equal(t, p, dst)
}

func TestUnmarshalBinaryLeavesReceiverOnError(t *testing.T) {
	p := NewProducer().MakePacket()
	data := mustMarshal(t, p)
	data[len(data)-1] ^= 1

	dst := &Packet{SampleRate: 5}
	require.ErrorIs(t, dst.UnmarshalBinary(data), ErrChecksumMismatch)
	require.Equal(t, &Packet{SampleRate: 5}, dst)
}

func TestCheckLengths(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("lengths above MaxUint32 do not fit in int")
	}
	var tooLong uint64 = math.MaxUint32 + 1

	require.Nil(t, checkLengths(0, int(tooLong-1)))
	err := checkLengths(int(tooLong), 0)
	require.ErrorIs(t, err, ErrInvalidLength)
	require.False(t, errors.Is(err, ErrShortRead))
	var lerr *LengthError
	require.True(t, errors.As(err, &lerr))
	require.Equal(t, "sample_data", lerr.Field)
	require.Equal(t, tooLong, lerr.Declared)

	require.True(t, errors.As(checkLengths(1, int(tooLong)), &lerr))
	require.Equal(t, "spectrum_data", lerr.Field)
}
