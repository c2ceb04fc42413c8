package trace

import (
	"testing"
)

// memFile is an in-memory byte source for decoder tests.
type memFile struct {
	data []byte
	pos  int
}

func (f *memFile) Getc() int {
	if f.pos >= len(f.data) {
		return -1
	}
	b := f.data[f.pos]
	f.pos++
	return int(b)
}

func (f *memFile) Read(p []byte) int {
	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n
}

func (f *memFile) Skip(n uint64) {
	f.SetCurrentOffset(uint64(f.pos) + n)
}

func (f *memFile) CurrentOffset() uint64 {
	return uint64(f.pos)
}

func (f *memFile) SetCurrentOffset(offset uint64) {
	if offset > uint64(len(f.data)) {
		offset = uint64(len(f.data))
	}
	f.pos = int(offset)
}

func (f *memFile) Close() error {
	return nil
}

func parserOver(data []byte) *Parser {
	return &Parser{file: &memFile{data: data}, version: TraceVersion}
}

func appendUvarint(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

func TestReadUIntRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 255, 256, 16383, 16384, 624485,
		0xFFFFFFFF, 0x100000000, 0x7FFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF,
	}
	for _, v := range values {
		encoded := appendUvarint(nil, v)
		p := parserOver(encoded)
		if got := p.readUInt(); got != v {
			t.Errorf("readUInt(% x): got %d, want %d", encoded, got, v)
		}
		if off := p.file.CurrentOffset(); off != uint64(len(encoded)) {
			t.Errorf("readUInt(%d): consumed %d of %d bytes", v, off, len(encoded))
		}
	}
}

func TestReadUIntPartialOnEOF(t *testing.T) {
	// Continuation bit set but the stream ends: the bits accumulated so far
	// are returned.
	p := parserOver([]byte{0xFF, 0x81})
	if got := p.readUInt(); got != 0x7F|0x01<<7 {
		t.Errorf("partial varint: got %d", got)
	}

	p = parserOver(nil)
	if got := p.readUInt(); got != 0 {
		t.Errorf("empty stream: got %d, want 0", got)
	}
}

func TestReadUIntMasksExcessBits(t *testing.T) {
	// 11 payload groups: bits past the 64th are silently discarded.
	encoded := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x03}
	p := parserOver(encoded)
	if got := p.readUInt(); got != 0xFFFFFFFFFFFFFFFF {
		t.Errorf("oversized varint: got %#x", got)
	}
	if off := p.file.CurrentOffset(); off != uint64(len(encoded)) {
		t.Errorf("oversized varint: consumed %d of %d bytes", off, len(encoded))
	}
}

func TestSkipUIntMatchesRead(t *testing.T) {
	for _, v := range []uint64{0, 127, 128, 0xFFFFFFFFFFFFFFFF} {
		encoded := appendUvarint(nil, v)
		read := parserOver(encoded)
		read.readUInt()
		skip := parserOver(encoded)
		skip.skipUInt()
		if read.file.CurrentOffset() != skip.file.CurrentOffset() {
			t.Errorf("skipUInt(%d): offset %d, read offset %d",
				v, skip.file.CurrentOffset(), read.file.CurrentOffset())
		}
	}
}

func TestReadSInt(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int64
	}{
		{[]byte{TypeSint, 0x00}, 0},
		{[]byte{TypeSint, 0x2A}, -42},
		{[]byte{TypeUint, 0x2A}, 42},
		{nil, 0}, // EOF yields zero
	}
	for _, tt := range tests {
		p := parserOver(tt.encoded)
		got, err := p.readSInt()
		if err != nil {
			t.Fatalf("readSInt(% x): %v", tt.encoded, err)
		}
		if got != tt.want {
			t.Errorf("readSInt(% x): got %d, want %d", tt.encoded, got, tt.want)
		}
	}

	p := parserOver([]byte{TypeString, 0x00})
	if _, err := p.readSInt(); err == nil {
		t.Error("readSInt with string tag: expected error")
	}
}

func TestReadString(t *testing.T) {
	data := appendUvarint(nil, 5)
	data = append(data, "hello"...)
	p := parserOver(data)
	if got := p.readString(); got != "hello" {
		t.Errorf("readString: got %q", got)
	}

	// zero length
	p = parserOver([]byte{0x00})
	if got := p.readString(); got != "" {
		t.Errorf("empty string: got %q", got)
	}

	// truncated payload keeps the bytes that were present
	data = appendUvarint(nil, 10)
	data = append(data, "abc"...)
	p = parserOver(data)
	if got := p.readString(); got != "abc" {
		t.Errorf("truncated string: got %q", got)
	}
}

// buildComplexValue encodes a value exercising every composite kind.
func buildComplexValue() []byte {
	var b []byte
	b = append(b, TypeStruct)
	b = appendUvarint(b, 0)                  // struct sig id
	b = appendUvarint(b, 4)                  // name "rect"
	b = append(b, "rect"...)
	b = appendUvarint(b, 3)                  // three members
	for _, m := range []string{"a", "b", "c"} {
		b = appendUvarint(b, uint64(len(m)))
		b = append(b, m...)
	}

	// member a: array of two values
	b = append(b, TypeArray)
	b = appendUvarint(b, 2)
	b = append(b, TypeSint)
	b = appendUvarint(b, 7)
	b = append(b, TypeDouble)
	b = append(b, 0, 0, 0, 0, 0, 0, 0, 0x40)

	// member b: enum
	b = append(b, TypeEnum)
	b = appendUvarint(b, 0) // enum sig id
	b = appendUvarint(b, 2) // two values
	b = appendUvarint(b, 4)
	b = append(b, "GL_A"...)
	b = append(b, TypeUint)
	b = appendUvarint(b, 1)
	b = appendUvarint(b, 4)
	b = append(b, "GL_B"...)
	b = append(b, TypeUint)
	b = appendUvarint(b, 2)
	b = append(b, TypeSint) // the enum's value
	b = appendUvarint(b, 1)

	// member c: bitmask
	b = append(b, TypeBitmask)
	b = appendUvarint(b, 0) // bitmask sig id
	b = appendUvarint(b, 1)
	b = appendUvarint(b, 5)
	b = append(b, "FLAG1"...)
	b = appendUvarint(b, 1)
	b = appendUvarint(b, 3) // bitmask value

	return b
}

func TestScanValueMatchesParseValue(t *testing.T) {
	cases := [][]byte{
		{TypeNull},
		{TypeFalse},
		{TypeTrue},
		append([]byte{TypeSint}, appendUvarint(nil, 300)...),
		append([]byte{TypeUint}, appendUvarint(nil, 300)...),
		{TypeFloat, 0, 0, 0x80, 0x3F},
		{TypeDouble, 0, 0, 0, 0, 0, 0, 0xF0, 0x3F},
		append(appendUvarint([]byte{TypeString}, 3), 'a', 'b', 'c'),
		append(appendUvarint([]byte{TypeBlob}, 4), 1, 2, 3, 4),
		append([]byte{TypeBlob}, 0x00),
		append([]byte{TypeOpaque}, appendUvarint(nil, 0xdeadbeef)...),
		buildComplexValue(),
	}

	for _, encoded := range cases {
		parse := parserOver(encoded)
		if _, err := parse.parseValue(FullParse); err != nil {
			t.Fatalf("parseValue(% x): %v", encoded, err)
		}

		scan := parserOver(encoded)
		if err := scan.scanValue(); err != nil {
			t.Fatalf("scanValue(% x): %v", encoded, err)
		}

		if parse.file.CurrentOffset() != scan.file.CurrentOffset() {
			t.Errorf("scan/parse offset mismatch for % x: parse %d, scan %d",
				encoded, parse.file.CurrentOffset(), scan.file.CurrentOffset())
		}
	}
}

func TestParseValueUnknownTagIsFatal(t *testing.T) {
	p := parserOver([]byte{0x3F})
	if _, err := p.parseValue(FullParse); err == nil {
		t.Error("unknown value tag: expected error")
	}
	p = parserOver([]byte{0x3F})
	if err := p.scanValue(); err == nil {
		t.Error("unknown value tag: expected scan error")
	}
}

func TestParseValueEOF(t *testing.T) {
	p := parserOver(nil)
	v, err := p.parseValue(FullParse)
	if err != nil {
		t.Fatalf("parseValue at EOF: %v", err)
	}
	if v != nil {
		t.Errorf("parseValue at EOF: got %#v, want nil", v)
	}
}

func TestParseBlobZeroLength(t *testing.T) {
	p := parserOver([]byte{TypeBlob, 0x00})
	v, err := p.parseValue(FullParse)
	if err != nil {
		t.Fatalf("parseValue: %v", err)
	}
	blob, ok := v.(*Blob)
	if !ok {
		t.Fatalf("got %#v, want *Blob", v)
	}
	if len(blob.Buf) != 0 {
		t.Errorf("zero-length blob has %d bytes", len(blob.Buf))
	}
}

func TestParseStructTruncatedMembers(t *testing.T) {
	// Struct announces 3 members but the stream ends after one; the missing
	// members stay nil.
	var b []byte
	b = append(b, TypeStruct)
	b = appendUvarint(b, 0)
	b = appendUvarint(b, 1)
	b = append(b, 's')
	b = appendUvarint(b, 3)
	for _, m := range []string{"x", "y", "z"} {
		b = appendUvarint(b, uint64(len(m)))
		b = append(b, m...)
	}
	b = append(b, TypeTrue)

	p := parserOver(b)
	v, err := p.parseValue(FullParse)
	if err != nil {
		t.Fatalf("parseValue: %v", err)
	}
	s := v.(*Struct)
	if len(s.Members) != 3 {
		t.Fatalf("got %d members, want 3", len(s.Members))
	}
	if s.Members[0] != Bool(true) || s.Members[1] != nil || s.Members[2] != nil {
		t.Errorf("members: %#v", s.Members)
	}
}
