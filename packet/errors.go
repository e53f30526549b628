package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrShortRead is returned when the source is exhausted before a field
	// or a declared array is fully read.
	ErrShortRead = errors.New("samplewire/packet: short read")
	// ErrShortWrite is returned when the destination stops accepting bytes.
	ErrShortWrite = errors.New("samplewire/packet: short write")
	// ErrBufferTooSmall is returned before anything is written.
	ErrBufferTooSmall   = errors.New("samplewire/packet: buffer too small")
	ErrVersionMismatch  = errors.New("samplewire/packet: version mismatch")
	ErrChecksumMismatch = errors.New("samplewire/packet: checksum mismatch")
	ErrInvalidLength    = errors.New("samplewire/packet: invalid length")
	ErrTrailingBytes    = errors.New("samplewire/packet: trailing bytes")
)

func shortRead(field string) error {
	return fmt.Errorf("%w: %s", ErrShortRead, field)
}

type VersionError struct {
	Got  uint64
	Want uint64
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%v: got %d, want %d", ErrVersionMismatch, e.Got, e.Want)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrVersionMismatch
}

type ChecksumError struct {
	Stored   uint32
	Computed uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%v: stored %#08x, computed %#08x", ErrChecksumMismatch, e.Stored, e.Computed)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// LengthError reports an array length that can not be honored. A length
// that points past the end of the available bytes is also a short read.
type LengthError struct {
	Field    string
	Declared uint64
	// Limit is the largest acceptable element count at the point of failure.
	Limit     uint64
	Truncated bool
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%v: %s declares %d elements, at most %d allowed",
		ErrInvalidLength, e.Field, e.Declared, e.Limit)
}

func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidLength || (e.Truncated && target == ErrShortRead)
}
