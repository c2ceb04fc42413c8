package trace

import "go.uber.org/zap"

// Signature interning. Signatures are transmitted inline the first time
// their id appears and referenced by id thereafter. The encoder may also
// retransmit a body it already sent (it happens after a seek in the write
// path); that case is detected by the current offset sitting before the
// offset recorded when the signature was first consumed, and the body is
// skipped structurally.

// lookupSlot grows table to hold id and returns a pointer to its slot, which
// is nil when the id has not been interned yet.
func lookupSlot[T any](table *[]*T, id uint32) **T {
	if n := uint64(id) + 1; n > uint64(len(*table)) {
		grown := make([]*T, n)
		copy(grown, *table)
		*table = grown
	}
	return &(*table)[id]
}

func (p *Parser) parseFunctionSig() *FunctionSig {
	id := uint32(p.readUInt())

	slot := lookupSlot(&p.functions, id)
	if sig := *slot; sig != nil {
		if p.file.CurrentOffset() < sig.offset {
			// retransmitted body
			p.skipString() // name
			numArgs := p.readUInt()
			for i := uint64(0); i < numArgs; i++ {
				p.skipString() // arg name
			}
		}
		return sig
	}

	sig := &FunctionSig{
		ID:   id,
		Name: p.readString(),
	}
	numArgs := p.readUInt()
	sig.ArgNames = make([]string, numArgs)
	for i := range sig.ArgNames {
		sig.ArgNames[i] = p.readString()
	}
	sig.Flags = LookupCallFlags(sig.Name)
	sig.offset = p.file.CurrentOffset()
	*slot = sig

	// Note down signatures of special functions for future reference. All
	// name comparisons happen here, never per call.
	if len(sig.ArgNames) == 0 && sig.Name == "glGetError" {
		p.glGetErrorSig = sig
	}

	return sig
}

func (p *Parser) parseStructSig() *StructSig {
	id := uint32(p.readUInt())

	slot := lookupSlot(&p.structs, id)
	if sig := *slot; sig != nil {
		if p.file.CurrentOffset() < sig.offset {
			p.skipString() // name
			numMembers := p.readUInt()
			for i := uint64(0); i < numMembers; i++ {
				p.skipString() // member name
			}
		}
		return sig
	}

	sig := &StructSig{
		ID:   id,
		Name: p.readString(),
	}
	numMembers := p.readUInt()
	sig.MemberNames = make([]string, numMembers)
	for i := range sig.MemberNames {
		sig.MemberNames[i] = p.readString()
	}
	sig.offset = p.file.CurrentOffset()
	*slot = sig

	return sig
}

func (p *Parser) parseEnumSig() (*EnumSig, error) {
	id := uint32(p.readUInt())

	slot := lookupSlot(&p.enums, id)
	if sig := *slot; sig != nil {
		if p.file.CurrentOffset() < sig.offset {
			numValues := p.readUInt()
			for i := uint64(0); i < numValues; i++ {
				p.skipString() // name
				p.skipSInt()   // value
			}
		}
		return sig, nil
	}

	sig := &EnumSig{ID: id}
	numValues := p.readUInt()
	sig.Values = make([]EnumValue, numValues)
	for i := range sig.Values {
		sig.Values[i].Name = p.readString()
		value, err := p.readSInt()
		if err != nil {
			return nil, err
		}
		sig.Values[i].Value = value
	}
	sig.offset = p.file.CurrentOffset()
	*slot = sig

	return sig, nil
}

// parseOldEnumSig handles enum signatures from traces older than version 3,
// which covered a single name/value pair:
//
//	enum_sig = id name value
//	         | id
func (p *Parser) parseOldEnumSig() (*EnumSig, error) {
	id := uint32(p.readUInt())

	slot := lookupSlot(&p.enums, id)
	if sig := *slot; sig != nil {
		if p.file.CurrentOffset() < sig.offset {
			p.skipString() // name
			if err := p.scanValue(); err != nil {
				return nil, err
			}
		}
		return sig, nil
	}

	sig := &EnumSig{ID: id, Values: make([]EnumValue, 1)}
	sig.Values[0].Name = p.readString()
	value, err := p.readSInt()
	if err != nil {
		return nil, err
	}
	sig.Values[0].Value = value
	sig.offset = p.file.CurrentOffset()
	*slot = sig

	return sig, nil
}

func (p *Parser) parseBitmaskSig() *BitmaskSig {
	id := uint32(p.readUInt())

	slot := lookupSlot(&p.bitmasks, id)
	if sig := *slot; sig != nil {
		if p.file.CurrentOffset() < sig.offset {
			numFlags := p.readUInt()
			for i := uint64(0); i < numFlags; i++ {
				p.skipString() // name
				p.skipUInt()   // value
			}
		}
		return sig
	}

	sig := &BitmaskSig{ID: id}
	numFlags := p.readUInt()
	sig.Flags = make([]BitmaskFlag, numFlags)
	for i := range sig.Flags {
		sig.Flags[i].Name = p.readString()
		sig.Flags[i].Value = p.readUInt()
		if sig.Flags[i].Value == 0 && i != 0 {
			Logger().Warn("bitmask flag is zero but is not first flag",
				zap.String("flag", sig.Flags[i].Name),
				zap.Uint32("bitmask", id))
		}
	}
	sig.offset = p.file.CurrentOffset()
	*slot = sig

	return sig
}
