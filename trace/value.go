package trace

import "github.com/xranby/apitrace/errors"

// parseValue decodes one tagged value into an owned tree. It returns
// (nil, nil) when the stream ends at the tag boundary; an unknown tag is
// fatal.
func (p *Parser) parseValue(mode Mode) (Value, error) {
	c := p.readByte()
	switch c {
	case TypeNull:
		return Null{}, nil
	case TypeFalse:
		return Bool(false), nil
	case TypeTrue:
		return Bool(true), nil
	case TypeSint:
		return SInt(-int64(p.readUInt())), nil
	case TypeUint:
		return UInt(p.readUInt()), nil
	case TypeFloat:
		return Float(p.readFloat()), nil
	case TypeDouble:
		return Double(p.readDouble()), nil
	case TypeString:
		return String(p.readString()), nil
	case TypeEnum:
		return p.parseEnum()
	case TypeBitmask:
		return p.parseBitmask()
	case TypeArray:
		return p.parseArray(mode)
	case TypeStruct:
		return p.parseStruct(mode)
	case TypeBlob:
		return p.parseBlob(), nil
	case TypeOpaque:
		return Pointer(p.readUInt()), nil
	case -1:
		return nil, nil
	default:
		return nil, errors.UnknownType(p.file.CurrentOffset(), c)
	}
}

// scanValue advances the stream past one tagged value without materializing
// it. It follows exactly the offsets parseValue would.
func (p *Parser) scanValue() error {
	c := p.readByte()
	switch c {
	case TypeNull, TypeFalse, TypeTrue, -1:
		return nil
	case TypeSint, TypeUint, TypeOpaque:
		p.skipUInt()
		return nil
	case TypeFloat:
		p.skipFloat()
		return nil
	case TypeDouble:
		p.skipDouble()
		return nil
	case TypeString:
		p.skipString()
		return nil
	case TypeEnum:
		return p.scanEnum()
	case TypeBitmask:
		return p.scanBitmask()
	case TypeArray:
		return p.scanArray()
	case TypeStruct:
		return p.scanStruct()
	case TypeBlob:
		p.scanBlob()
		return nil
	default:
		return errors.UnknownType(p.file.CurrentOffset(), c)
	}
}

func (p *Parser) parseEnum() (Value, error) {
	if p.version >= 3 {
		sig, err := p.parseEnumSig()
		if err != nil {
			return nil, err
		}
		value, err := p.readSInt()
		if err != nil {
			return nil, err
		}
		return &Enum{Sig: sig, Value: value}, nil
	}

	// Pre-v3 enums carry their single value in the signature itself.
	sig, err := p.parseOldEnumSig()
	if err != nil {
		return nil, err
	}
	var value int64
	if len(sig.Values) > 0 {
		value = sig.Values[0].Value
	}
	return &Enum{Sig: sig, Value: value}, nil
}

func (p *Parser) scanEnum() error {
	if p.version >= 3 {
		if _, err := p.parseEnumSig(); err != nil {
			return err
		}
		p.skipSInt()
		return nil
	}
	_, err := p.parseOldEnumSig()
	return err
}

func (p *Parser) parseBitmask() (Value, error) {
	sig := p.parseBitmaskSig()
	value := p.readUInt()
	return &Bitmask{Sig: sig, Value: value}, nil
}

func (p *Parser) scanBitmask() error {
	p.parseBitmaskSig()
	p.skipUInt()
	return nil
}

func (p *Parser) parseArray(mode Mode) (Value, error) {
	length := p.readUInt()
	array := &Array{Values: make([]Value, length)}
	for i := range array.Values {
		v, err := p.parseValue(mode)
		if err != nil {
			return nil, err
		}
		array.Values[i] = v
	}
	return array, nil
}

func (p *Parser) scanArray() error {
	length := p.readUInt()
	for i := uint64(0); i < length; i++ {
		if err := p.scanValue(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseStruct(mode Mode) (Value, error) {
	sig := p.parseStructSig()
	value := &Struct{Sig: sig, Members: make([]Value, len(sig.MemberNames))}
	for i := range value.Members {
		v, err := p.parseValue(mode)
		if err != nil {
			return nil, err
		}
		value.Members[i] = v
	}
	return value, nil
}

func (p *Parser) scanStruct() error {
	sig := p.parseStructSig()
	for range sig.MemberNames {
		if err := p.scanValue(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseBlob() Value {
	size := p.readUInt()
	blob := &Blob{Buf: make([]byte, size)}
	if size > 0 {
		n := p.file.Read(blob.Buf)
		blob.Buf = blob.Buf[:n]
	}
	return blob
}

func (p *Parser) scanBlob() {
	size := p.readUInt()
	if size > 0 {
		p.file.Skip(size)
	}
}
