package ioutil

import (
	"io"

	ioext "github.com/damnever/libext-go/io"
)

// WriteFull is modified from io.copyBuffer, it keeps writing until p is
// consumed and flushes the writer afterwards whenever possible.
// A write that makes no progress without an error yields io.ErrShortWrite.
func WriteFull(dst io.Writer, p []byte, flush bool) (written int, err error) {
	for written < len(p) {
		nw, ew := dst.Write(p[written:])
		if nw < 0 || nw > len(p)-written {
			// Misbehaving writer, see io.errInvalidWrite.
			nw = 0
			if ew == nil {
				ew = io.ErrShortWrite
			}
		}
		written += nw
		if ew != nil {
			return written, ew
		}
		if nw == 0 {
			return written, io.ErrShortWrite
		}
	}
	if flush {
		if f, ok := dst.(ioext.Flusher); ok {
			err = f.Flush()
		}
	}
	return written, err
}
