// Package stream reads and writes packets over sequential byte streams such
// as files, sockets or in-memory buffers.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	bytesext "github.com/damnever/libext-go/bytes"
	"github.com/damnever/samplewire/internal/pkg/ioutil"
	"github.com/damnever/samplewire/packet"
	"go.uber.org/zap"
)

// DefaultMaxElements bounds the element count of a single array read from a stream.
const DefaultMaxElements = 1 << 20

const maxPooledSize = 512 << 7

var _pool = bytesext.NewPoolWith(7, 512) // Max: maxPooledSize

// Published under the "samplewire" expvar.
var (
	writtenPackets  = newCounter("stream", "written")
	writeRejections = newCounter("stream", "rejected", "write")
	readPackets     = newCounter("stream", "read")
	readRejections  = newCounter("stream", "rejected", "read")
)

type Config struct {
	// MaxElements is the largest array length a Reader accepts before
	// allocating, the declared size of a stream is unknown up front.
	MaxElements int
	// Flush flushes the underlying writer after every packet if it supports it.
	Flush  bool
	Logger *zap.Logger
}

func (conf *Config) withDefaults() {
	if conf.MaxElements <= 0 {
		conf.MaxElements = DefaultMaxElements
	}
	if conf.Logger == nil {
		conf.Logger = DefaultLogger
	}
}

// Writer writes encoded packets to an io.Writer, one packet per call.
type Writer struct {
	conf   Config
	logger *zap.Logger

	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer, conf Config) *Writer {
	(&conf).withDefaults()
	return &Writer{
		conf:   conf,
		logger: conf.Logger.Named("writer"),
		w:      w,
	}
}

// WritePacket encodes p and writes all of it, short writes are retried until
// the writer makes no progress. It returns the number of bytes written.
func (w *Writer) WritePacket(p *packet.Packet) (int, error) {
	var buf []byte
	if size := p.EncodedSize(); size <= maxPooledSize {
		buf = _pool.Get(size)
		defer _pool.Put(buf)
	} else {
		buf = make([]byte, size)
	}

	n, err := packet.Encode(p, buf)
	if err != nil {
		writeRejections.Inc()
		w.logger.Debug("encode packet failed", zap.Uint64("packet_id", p.PacketID), zap.Error(err))
		return 0, err
	}

	w.mu.Lock()
	nw, err := ioutil.WriteFull(w.w, buf[:n], w.conf.Flush)
	w.mu.Unlock()
	if err != nil {
		if errors.Is(err, io.ErrShortWrite) {
			err = fmt.Errorf("%w: %d of %d bytes", packet.ErrShortWrite, nw, n)
		}
		writeRejections.Inc()
		w.logger.Debug("write packet failed",
			zap.Uint64("packet_id", p.PacketID),
			zap.Int("written", nw),
			zap.Error(err),
		)
		return nw, err
	}
	writtenPackets.Inc()
	return nw, nil
}

// Reader reads packets from an io.Reader, one packet per call.
type Reader struct {
	conf   Config
	logger *zap.Logger

	mu  sync.Mutex
	r   io.Reader
	buf []byte
}

func NewReader(r io.Reader, conf Config) *Reader {
	(&conf).withDefaults()
	return &Reader{
		conf:   conf,
		logger: conf.Logger.Named("reader"),
		r:      r,
	}
}

// ReadPacket reads exactly one packet. It returns io.EOF if the stream ends
// cleanly before the packet starts, packet.ErrShortRead if it ends inside one.
func (r *Reader) ReadPacket() (*packet.Packet, error) {
	r.mu.Lock()
	p, err := r.readPacket()
	nread := len(r.buf)
	r.mu.Unlock()
	if err != nil {
		if err != io.EOF {
			readRejections.Inc()
			r.logger.Debug("read packet failed", zap.Int("read", nread), zap.Error(err))
		}
		return nil, err
	}
	readPackets.Inc()
	return p, nil
}

func (r *Reader) readPacket() (*packet.Packet, error) {
	r.buf = r.buf[:0]
	if err := r.fill(packet.FixedPrefixSize + 4); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	h, _, err := packet.DecodeHeader(r.buf)
	if err != nil {
		return nil, err
	}
	if h.PacketVersion != packet.Version {
		return nil, &packet.VersionError{Got: h.PacketVersion, Want: packet.Version}
	}

	// Each array is read together with the 4 bytes after it: the next length or the checksum.
	for _, field := range [...]string{"sample_data", "spectrum_data"} {
		n := binary.BigEndian.Uint32(r.buf[len(r.buf)-4:])
		if uint64(n) > uint64(r.conf.MaxElements) {
			return nil, &packet.LengthError{
				Field:    field,
				Declared: uint64(n),
				Limit:    uint64(r.conf.MaxElements),
			}
		}
		if err := r.fill(4*int(n) + 4); err != nil {
			return nil, err
		}
	}
	return packet.Decode(r.buf)
}

// fill appends exactly n bytes from the stream to r.buf.
func (r *Reader) fill(n int) error {
	start := len(r.buf)
	if cap(r.buf)-start < n {
		grown := make([]byte, start, start+n)
		copy(grown, r.buf)
		r.buf = grown
	}
	r.buf = r.buf[:start+n]
	nr, err := io.ReadFull(r.r, r.buf[start:])
	r.buf = r.buf[:start+nr]
	switch {
	case err == nil:
		return nil
	case err == io.EOF && len(r.buf) == 0:
		return io.EOF
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return fmt.Errorf("%w: stream ended after %d bytes", packet.ErrShortRead, len(r.buf))
	default:
		return err
	}
}
