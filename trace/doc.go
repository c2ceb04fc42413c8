// Package trace decodes API trace captures into in-memory calls.
//
// A capture is a byte stream of interleaved ENTER/LEAVE events recorded by
// an API-interception tracer. The decoder materializes each recorded
// invocation as a Call: function signature, argument values, return value,
// thread id and timing.
//
// # Wire Format
//
// All integers are little-endian base-128 varints unless noted:
//
//	trace   := uint version  event*
//	event   := 0x00 enter | 0x01 leave
//	enter   := [uint thread_id, version>=4]  func_sig  detail*  0x04
//	leave   := value call_time  uint call_no  detail*  0x04
//	detail  := 0x02 uint index value   (argument)
//	         | 0x03 value              (return value)
//	value   := tag byte, then a tag-specific payload (see constants.go)
//
// Signatures for functions, structs, enums and bitmasks are transmitted
// inline the first time their id appears and referenced by bare id
// thereafter. The encoder occasionally retransmits a body it already sent;
// the decoder detects this by stream offset and skips it structurally.
//
// # Decoding
//
//	p := trace.NewParser()
//	if err := p.Open("app.trace"); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	for {
//	    call, err := p.ParseCall(trace.FullParse)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if call == nil {
//	        break
//	    }
//	    trace.DumpCall(call, os.Stdout, 0)
//	}
//
// # Random Access
//
// GetBookmark/SetBookmark capture and restore a stream position. Restoring
// drops pending half-assembled calls; signature tables survive, and seeking
// back before a signature's first sighting is safe because the retransmitted
// body is skipped.
//
// # Containers
//
// OpenForRead sniffs the container: the snappy chunk container (magic "at"),
// gzip, or a raw byte stream. Compressed backends report virtual offsets in
// the decoded stream so bookmarks work uniformly.
//
// # Error Handling
//
// End of stream is not an error: ParseCall returns its calls and then nil,
// flagging a truncated final call CallFlagIncomplete. When the stream ends
// inside a LEAVE event, ParseCall first returns nil for that LEAVE and then,
// on the next call, the call it belonged to flagged incomplete; the loop
// above stops at that first nil. Unknown event, detail
// or value tags are fatal and surface as *errors.Error values from the
// errors package.
//
// # Thread Safety
//
// A Parser is single-threaded and non-reentrant. Decode independent streams
// with independent parsers.
package trace
