package trace

import (
	"github.com/xranby/apitrace/errors"
)

// Mode is a hint threaded through value decoding for hosts that want
// selective materialization. Every current mode parses fully.
type Mode int

const (
	// FullParse materializes every argument and return value.
	FullParse Mode = iota
)

// ParseBookmark captures a resumable position in the event stream. Restoring
// it discards pending half-assembled calls but preserves interned
// signatures.
type ParseBookmark struct {
	Offset     uint64
	NextCallNo uint32
}

// Parser decodes a trace capture into Calls. It is single-threaded and
// non-reentrant; independent streams need independent parsers.
type Parser struct {
	file    File
	version uint32

	functions []*FunctionSig
	structs   []*StructSig
	enums     []*EnumSig
	bitmasks  []*BitmaskSig

	calls      []*Call // pending: ENTER seen, LEAVE not yet
	nextCallNo uint32

	glGetErrorSig *FunctionSig
}

// NewParser returns a parser with no stream attached.
func NewParser() *Parser {
	return &Parser{}
}

// Open attaches the parser to a capture and reads the stream header.
func (p *Parser) Open(path string) error {
	file, err := OpenForRead(path)
	if err != nil {
		return err
	}
	return p.OpenFile(file)
}

// OpenFile attaches the parser to an already opened byte source and reads
// the stream header. The parser takes ownership of the file.
func (p *Parser) OpenFile(file File) error {
	p.file = file
	p.version = uint32(p.readUInt())
	if p.version > TraceVersion {
		p.file.Close()
		p.file = nil
		return errors.UnsupportedVersion(p.version, TraceVersion)
	}
	return nil
}

// Version returns the format version of the open capture.
func (p *Parser) Version() uint32 {
	return p.version
}

// Close detaches the stream and drops pending calls and the signature
// tables. Calls returned earlier keep their own references to their
// signatures, which stay usable; they are no longer shared with calls
// decoded after the parser is reopened.
func (p *Parser) Close() {
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}

	p.calls = nil
	p.functions = nil
	p.structs = nil
	p.enums = nil
	p.bitmasks = nil
	p.glGetErrorSig = nil
	p.nextCallNo = 0
}

// GetBookmark records the current stream position.
func (p *Parser) GetBookmark() ParseBookmark {
	return ParseBookmark{
		Offset:     p.file.CurrentOffset(),
		NextCallNo: p.nextCallNo,
	}
}

// SetBookmark rewinds (or advances) the stream to a recorded position.
// Pending calls are simply dropped; signatures interned since the bookmark
// stay valid, and retransmitted signature bodies encountered after the seek
// are skipped.
func (p *Parser) SetBookmark(bookmark ParseBookmark) {
	p.file.SetCurrentOffset(bookmark.Offset)
	p.nextCallNo = bookmark.NextCallNo
	p.calls = nil
}

// ParseCall decodes events until a call completes. It returns the next
// complete call, or nil at end of stream once no pending calls remain.
// Truncated captures surface their oldest pending call flagged
// CallFlagIncomplete. A LEAVE event also yields a nil call when it matches
// no pending call, or when the stream ends inside it; in the latter case the
// call stays pending and a later ParseCall returns it flagged incomplete.
// Unknown event tags are fatal.
func (p *Parser) ParseCall(mode Mode) (*Call, error) {
	for {
		c := p.readByte()
		switch c {
		case EventEnter:
			if err := p.parseEnter(mode); err != nil {
				return nil, err
			}
		case EventLeave:
			call, err := p.parseLeave(mode)
			if err != nil {
				return nil, err
			}
			p.adjustCallFlags(call)
			return call, nil
		case -1:
			if len(p.calls) > 0 {
				call := p.calls[0]
				p.calls = p.calls[1:]
				call.Flags |= CallFlagIncomplete
				p.adjustCallFlags(call)
				return call, nil
			}
			return nil, nil
		default:
			return nil, errors.UnknownEvent(p.file.CurrentOffset(), c)
		}
	}
}

func (p *Parser) parseEnter(mode Mode) error {
	var threadID uint32
	if p.version >= 4 {
		threadID = uint32(p.readUInt())
	}

	sig := p.parseFunctionSig()

	call := &Call{
		No:       p.nextCallNo,
		ThreadID: threadID,
		Sig:      sig,
		Flags:    sig.Flags,
	}
	p.nextCallNo++

	ok, err := p.parseCallDetails(call, mode)
	if err != nil {
		return err
	}
	if ok {
		p.calls = append(p.calls, call)
	}
	// A call truncated inside its ENTER never reached the pending buffer
	// and is silently dropped.
	return nil
}

func (p *Parser) parseLeave(mode Mode) (*Call, error) {
	callTime, err := p.parseValue(mode)
	if err != nil {
		return nil, err
	}
	callNo := uint32(p.readUInt())

	var call *Call
	idx := -1
	for i, pending := range p.calls {
		if pending.No == callNo {
			call = pending
			idx = i
			break
		}
	}
	if call == nil {
		return nil, nil
	}
	p.calls = append(p.calls[:idx], p.calls[idx+1:]...)

	call.CallTime = callTime

	ok, err := p.parseCallDetails(call, mode)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The stream ended inside this LEAVE. Put the call back so the EOF
		// path can surface it as incomplete.
		p.calls = append(p.calls[:idx], append([]*Call{call}, p.calls[idx:]...)...)
		return nil, nil
	}
	return call, nil
}

// parseCallDetails consumes CALL_ARG / CALL_RET records up to CALL_END. It
// returns false when the stream ends first; unknown detail tags are fatal.
func (p *Parser) parseCallDetails(call *Call, mode Mode) (bool, error) {
	for {
		c := p.readByte()
		switch c {
		case CallEnd:
			return true, nil
		case CallArg:
			if err := p.parseArg(call, mode); err != nil {
				return false, err
			}
		case CallRet:
			ret, err := p.parseValue(mode)
			if err != nil {
				return false, err
			}
			call.Ret = ret
		case -1:
			return false, nil
		default:
			return false, errors.UnknownDetail(call.Name(), p.file.CurrentOffset(), c)
		}
	}
}

func (p *Parser) parseArg(call *Call, mode Mode) error {
	index := p.readUInt()
	value, err := p.parseValue(mode)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if n := index + 1; n > uint64(len(call.Args)) {
		grown := make([]Value, n)
		copy(grown, call.Args)
		call.Args = grown
	}
	call.Args[index] = value
	return nil
}

// adjustCallFlags applies per-call flag tweaks after a call is assembled.
// Only signature identity checks happen here; name comparisons were done
// when the signature was interned.
func (p *Parser) adjustCallFlags(call *Call) {
	if call == nil {
		return
	}
	// glGetError() == GL_NO_ERROR is noise; mark it verbose.
	if call.Sig == p.glGetErrorSig && call.Ret != nil {
		if v, ok := ToSInt(call.Ret); ok && v == 0 {
			call.Flags |= CallFlagVerbose
		}
	}
}
