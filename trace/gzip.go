package trace

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/xranby/apitrace/errors"
)

// gzipFile reads legacy gzip-compressed captures. The stream only
// decompresses forward, so offsets are virtual positions in the decoded
// stream: forward seeks discard bytes, backward seeks rewind the container
// and discard from the start.
type gzipFile struct {
	f      *os.File
	zr     *gzip.Reader
	r      *bufio.Reader
	offset uint64
}

func newGzipFile(f *os.File) (*gzipFile, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.IO("seek", err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.CorruptFile("gzip header", err)
	}
	return &gzipFile{
		f:  f,
		zr: zr,
		r:  bufio.NewReader(zr),
	}, nil
}

func (f *gzipFile) Getc() int {
	b, err := f.r.ReadByte()
	if err != nil {
		return -1
	}
	f.offset++
	return int(b)
}

func (f *gzipFile) Read(p []byte) int {
	n, _ := io.ReadFull(f.r, p)
	f.offset += uint64(n)
	return n
}

func (f *gzipFile) Skip(n uint64) {
	d, _ := io.CopyN(io.Discard, f.r, int64(n))
	f.offset += uint64(d)
}

func (f *gzipFile) CurrentOffset() uint64 {
	return f.offset
}

func (f *gzipFile) SetCurrentOffset(offset uint64) {
	if offset < f.offset {
		if _, err := f.f.Seek(0, io.SeekStart); err != nil {
			Logger().Warn("gzip rewind failed", zap.Error(err))
			return
		}
		if err := f.zr.Reset(f.f); err != nil {
			Logger().Warn("gzip reset failed", zap.Error(err))
			return
		}
		f.r.Reset(f.zr)
		f.offset = 0
	}
	f.Skip(offset - f.offset)
}

func (f *gzipFile) Close() error {
	f.zr.Close()
	return f.f.Close()
}
