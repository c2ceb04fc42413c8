package trace

import (
	"encoding/binary"
	"math"

	"github.com/xranby/apitrace/errors"
)

// Primitive readers. Every reader tolerates end of stream: a truncated
// varint yields the bits accumulated so far, a truncated string or float
// yields the bytes that were present. Callers detect EOF at tag boundaries
// via readByte.

func (p *Parser) readByte() int {
	return p.file.Getc()
}

func (p *Parser) skipByte() {
	p.file.Skip(1)
}

// readUInt decodes a little-endian base-128 varint. There is no length cap;
// payload bits past the 64th fall off the top of the shift and are
// discarded, matching the wire producers this decoder must accept.
func (p *Parser) readUInt() uint64 {
	var value uint64
	var shift uint
	for {
		c := p.file.Getc()
		if c == -1 {
			break
		}
		value |= uint64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
	}
	return value
}

func (p *Parser) skipUInt() {
	for {
		c := p.file.Getc()
		if c == -1 || c&0x80 == 0 {
			return
		}
	}
}

// readSInt decodes the tagged integer form: one type byte, then a varint,
// negated when the tag is TypeSint. Any other tag is fatal.
func (p *Parser) readSInt() (int64, error) {
	c := p.readByte()
	switch c {
	case TypeSint:
		return -int64(p.readUInt()), nil
	case TypeUint:
		return int64(p.readUInt()), nil
	case -1:
		return 0, nil
	default:
		return 0, errors.UnexpectedType(p.file.CurrentOffset(), c)
	}
}

func (p *Parser) skipSInt() {
	p.skipByte()
	p.skipUInt()
}

func (p *Parser) readFloat() float32 {
	var buf [4]byte
	p.file.Read(buf[:])
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
}

func (p *Parser) skipFloat() {
	p.file.Skip(4)
}

func (p *Parser) readDouble() float64 {
	var buf [8]byte
	p.file.Read(buf[:])
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
}

func (p *Parser) skipDouble() {
	p.file.Skip(8)
}

func (p *Parser) readString() string {
	length := p.readUInt()
	if length == 0 {
		return ""
	}
	buf := make([]byte, length)
	n := p.file.Read(buf)
	return string(buf[:n])
}

func (p *Parser) skipString() {
	length := p.readUInt()
	p.file.Skip(length)
}
