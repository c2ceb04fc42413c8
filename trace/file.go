package trace

import (
	"bufio"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/xranby/apitrace/errors"
)

// File is the byte source a Parser decodes from. All operations are
// synchronous. End of stream is signalled by Getc returning -1; Read and
// Skip past the end are permitted and silently truncated.
//
// Offsets are positions in the decoded byte stream, not in the container:
// compressed backends report virtual offsets that grow monotonically with
// consumed bytes and can be seeked back to.
type File interface {
	// Getc reads one byte, or returns -1 at end of stream.
	Getc() int

	// Read fills p with up to len(p) bytes and returns how many were read.
	Read(p []byte) int

	// Skip advances the stream by up to n bytes.
	Skip(n uint64)

	// CurrentOffset returns the offset of the next byte to be read.
	CurrentOffset() uint64

	// SetCurrentOffset repositions the stream. Seeking backwards is always
	// supported; seeking forward past the end leaves the stream at EOF.
	SetCurrentOffset(offset uint64)

	// Close releases the underlying file.
	Close() error
}

// Container magic bytes.
const (
	snappyByte1 = 'a'
	snappyByte2 = 't'

	gzipByte1 = 0x1f
	gzipByte2 = 0x8b
)

// OpenForRead opens a trace capture, sniffing the container format from the
// leading magic bytes: "at" selects the snappy chunk container, a gzip
// header selects the gzip backend, anything else is read raw.
func OpenForRead(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Open(path, err)
	}

	var magic [2]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		// Too short for any compressed container; hand it to the raw
		// backend and let the parser hit EOF.
		return newRawFile(f, 0)
	}

	switch {
	case magic[0] == snappyByte1 && magic[1] == snappyByte2:
		return newSnappyFile(f)
	case magic[0] == gzipByte1 && magic[1] == gzipByte2:
		return newGzipFile(f)
	default:
		return newRawFile(f, 0)
	}
}

// rawFile reads an uncompressed capture with buffered sequential access.
type rawFile struct {
	f      *os.File
	r      *bufio.Reader
	offset uint64
}

func newRawFile(f *os.File, offset uint64) (*rawFile, error) {
	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		f.Close()
		return nil, errors.IO("seek", err)
	}
	return &rawFile{
		f:      f,
		r:      bufio.NewReader(f),
		offset: offset,
	}, nil
}

func (f *rawFile) Getc() int {
	b, err := f.r.ReadByte()
	if err != nil {
		return -1
	}
	f.offset++
	return int(b)
}

func (f *rawFile) Read(p []byte) int {
	n, _ := io.ReadFull(f.r, p)
	f.offset += uint64(n)
	return n
}

func (f *rawFile) Skip(n uint64) {
	for n > 0 {
		step := n
		const maxInt = int(^uint(0) >> 1)
		if step > uint64(maxInt) {
			step = uint64(maxInt)
		}
		d, err := f.r.Discard(int(step))
		f.offset += uint64(d)
		if err != nil {
			return
		}
		n -= uint64(d)
	}
}

func (f *rawFile) CurrentOffset() uint64 {
	return f.offset
}

func (f *rawFile) SetCurrentOffset(offset uint64) {
	if _, err := f.f.Seek(int64(offset), io.SeekStart); err != nil {
		Logger().Warn("raw seek failed", zap.Uint64("offset", offset), zap.Error(err))
		return
	}
	f.r.Reset(f.f)
	f.offset = offset
}

func (f *rawFile) Close() error {
	return f.f.Close()
}
