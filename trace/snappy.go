package trace

import (
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/snappy"
	"go.uber.org/zap"
)

// snappyHeaderSize is the container magic ("at") preceding the first chunk.
const snappyHeaderSize = 2

// snappyChunkRef locates one compressed chunk inside the container.
type snappyChunkRef struct {
	virtualStart uint64 // offset of the chunk's first byte in the decoded stream
	headerOffset int64  // file offset of the chunk's length prefix
}

// snappyFile reads the snappy chunk container: after the magic, the file is
// a sequence of [uint32-LE compressed length][snappy block] chunks. Offsets
// reported to the parser are positions in the decoded stream; a chunk index
// built while reading forward supports backward seeks without re-reading the
// whole file.
type snappyFile struct {
	f *os.File

	chunk      []byte // decoded current chunk
	pos        int    // read position within chunk
	chunkStart uint64 // virtual offset of chunk[0]
	nextHeader int64  // file offset of the chunk after the current one

	index      []snappyChunkRef
	maxIndexed int64
}

func newSnappyFile(f *os.File) (*snappyFile, error) {
	return &snappyFile{
		f:          f,
		nextHeader: snappyHeaderSize,
		maxIndexed: -1,
	}, nil
}

// loadChunk decodes the chunk whose length prefix sits at headerOffset and
// makes it current, recording it in the seek index if unseen.
func (f *snappyFile) loadChunk(headerOffset int64, virtualStart uint64) bool {
	if _, err := f.f.Seek(headerOffset, io.SeekStart); err != nil {
		Logger().Warn("snappy chunk seek failed", zap.Int64("offset", headerOffset), zap.Error(err))
		return false
	}

	var hdr [4]byte
	if _, err := io.ReadFull(f.f, hdr[:]); err != nil {
		// Normal end of container.
		return false
	}
	length := binary.LittleEndian.Uint32(hdr[:])

	compressed := make([]byte, length)
	if _, err := io.ReadFull(f.f, compressed); err != nil {
		Logger().Warn("truncated snappy chunk", zap.Int64("offset", headerOffset), zap.Error(err))
		return false
	}

	decoded, err := snappy.Decode(nil, compressed)
	if err != nil {
		Logger().Warn("corrupt snappy chunk", zap.Int64("offset", headerOffset), zap.Error(err))
		return false
	}

	f.chunk = decoded
	f.pos = 0
	f.chunkStart = virtualStart
	f.nextHeader = headerOffset + 4 + int64(length)

	if headerOffset > f.maxIndexed {
		f.index = append(f.index, snappyChunkRef{virtualStart: virtualStart, headerOffset: headerOffset})
		f.maxIndexed = headerOffset
	}
	return true
}

func (f *snappyFile) loadNextChunk() bool {
	return f.loadChunk(f.nextHeader, f.chunkStart+uint64(len(f.chunk)))
}

func (f *snappyFile) Getc() int {
	for f.pos >= len(f.chunk) {
		if !f.loadNextChunk() {
			return -1
		}
	}
	b := f.chunk[f.pos]
	f.pos++
	return int(b)
}

func (f *snappyFile) Read(p []byte) int {
	n := 0
	for n < len(p) {
		if f.pos >= len(f.chunk) {
			if !f.loadNextChunk() {
				break
			}
			continue
		}
		c := copy(p[n:], f.chunk[f.pos:])
		f.pos += c
		n += c
	}
	return n
}

func (f *snappyFile) Skip(n uint64) {
	f.SetCurrentOffset(f.CurrentOffset() + n)
}

func (f *snappyFile) CurrentOffset() uint64 {
	return f.chunkStart + uint64(f.pos)
}

func (f *snappyFile) SetCurrentOffset(offset uint64) {
	// Within the current chunk.
	if offset >= f.chunkStart && offset <= f.chunkStart+uint64(len(f.chunk)) {
		f.pos = int(offset - f.chunkStart)
		return
	}

	if offset < f.chunkStart {
		// Backward: every earlier chunk has been indexed already.
		i := sort.Search(len(f.index), func(i int) bool {
			return f.index[i].virtualStart > offset
		}) - 1
		if i < 0 {
			i = 0
		}
		ref := f.index[i]
		if !f.loadChunk(ref.headerOffset, ref.virtualStart) {
			return
		}
		f.pos = int(offset - ref.virtualStart)
		if f.pos > len(f.chunk) {
			f.pos = len(f.chunk)
		}
		return
	}

	// Forward: decode chunks until the target falls inside one.
	for offset > f.chunkStart+uint64(len(f.chunk)) {
		if !f.loadNextChunk() {
			f.pos = len(f.chunk)
			return
		}
	}
	f.pos = int(offset - f.chunkStart)
}

func (f *snappyFile) Close() error {
	return f.f.Close()
}
