package trace

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// DumpFlags control call rendering.
type DumpFlags uint32

const (
	// DumpFlagNoColor renders plain text.
	DumpFlagNoColor DumpFlags = 1 << iota

	// DumpFlagNoArgNames omits "name = " before each argument.
	DumpFlagNoArgNames

	// DumpFlagThreadIDs prefixes each call with its thread id.
	DumpFlagThreadIDs
)

var (
	dumpLiteralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dumpPointerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dumpErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dumpBoldStyle    = lipgloss.NewStyle().Bold(true)
	dumpItalicStyle  = lipgloss.NewStyle().Italic(true)
	dumpStrikeStyle  = lipgloss.NewStyle().Strikethrough(true)
)

// Dumper renders decoded calls and values as text.
type Dumper struct {
	w     io.Writer
	flags DumpFlags
}

// NewDumper creates a dumper writing to w.
func NewDumper(w io.Writer, flags DumpFlags) *Dumper {
	return &Dumper{w: w, flags: flags}
}

// DumpCall renders one call on a single line:
//
//	no name(arg = value, ...) = ret // call time = t
func DumpCall(call *Call, w io.Writer, flags DumpFlags) {
	NewDumper(w, flags).Call(call)
}

// DumpValue renders one value.
func DumpValue(v Value, w io.Writer, flags DumpFlags) {
	NewDumper(w, flags).Value(v)
}

func (d *Dumper) style(s lipgloss.Style, text string) string {
	if d.flags&DumpFlagNoColor != 0 {
		return text
	}
	return s.Render(text)
}

func (d *Dumper) literal(text string) string { return d.style(dumpLiteralStyle, text) }
func (d *Dumper) pointer(text string) string { return d.style(dumpPointerStyle, text) }

// Call renders a call followed by a newline. End-of-frame calls get a blank
// line after them so frames separate visually.
func (d *Dumper) Call(call *Call) {
	if d.flags&DumpFlagThreadIDs != 0 {
		fmt.Fprintf(d.w, "@%d ", call.ThreadID)
	}
	fmt.Fprintf(d.w, "%d ", call.No)

	name := call.Name()
	switch {
	case call.Flags.Has(CallFlagNonReproducible):
		name = d.style(dumpStrikeStyle, name)
	case call.Flags.Has(CallFlagFake) || call.Flags.Has(CallFlagNoSideEffects):
		// plain
	default:
		name = d.style(dumpBoldStyle, name)
	}
	io.WriteString(d.w, name)

	io.WriteString(d.w, "(")
	sep := ""
	for i := range call.Args {
		io.WriteString(d.w, sep)
		if d.flags&DumpFlagNoArgNames == 0 && i < len(call.Sig.ArgNames) {
			io.WriteString(d.w, d.style(dumpItalicStyle, call.Sig.ArgNames[i]))
			io.WriteString(d.w, " = ")
		}
		if call.Args[i] != nil {
			d.Value(call.Args[i])
		} else {
			io.WriteString(d.w, "?")
		}
		sep = ", "
	}
	io.WriteString(d.w, ")")

	if call.Ret != nil {
		io.WriteString(d.w, " = ")
		d.Value(call.Ret)
	}

	if call.CallTime != nil {
		io.WriteString(d.w, " // call time = ")
		d.Value(call.CallTime)
	}

	if call.Flags.Has(CallFlagIncomplete) {
		io.WriteString(d.w, " // ")
		io.WriteString(d.w, d.style(dumpErrorStyle, "incomplete"))
	}

	io.WriteString(d.w, "\n")

	if call.Flags.Has(CallFlagEndFrame) {
		io.WriteString(d.w, "\n")
	}
}

// Value renders a value tree.
func (d *Dumper) Value(v Value) {
	switch v := v.(type) {
	case nil:
		io.WriteString(d.w, "?")
	case Null:
		io.WriteString(d.w, "NULL")
	case Bool:
		io.WriteString(d.w, d.literal(strconv.FormatBool(bool(v))))
	case SInt:
		io.WriteString(d.w, d.literal(strconv.FormatInt(int64(v), 10)))
	case UInt:
		io.WriteString(d.w, d.literal(strconv.FormatUint(uint64(v), 10)))
	case Float:
		io.WriteString(d.w, d.literal(strconv.FormatFloat(float64(v), 'g', -1, 32)))
	case Double:
		io.WriteString(d.w, d.literal(strconv.FormatFloat(float64(v), 'g', -1, 64)))
	case String:
		io.WriteString(d.w, d.literal(escapeString(string(v))))
	case *Enum:
		d.enum(v)
	case *Bitmask:
		d.bitmask(v)
	case *Array:
		d.array(v)
	case *Struct:
		d.structValue(v)
	case *Blob:
		io.WriteString(d.w, d.pointer(fmt.Sprintf("blob(%d)", len(v.Buf))))
	case Pointer:
		io.WriteString(d.w, d.pointer("0x"+strconv.FormatUint(uint64(v), 16)))
	}
}

func (d *Dumper) enum(v *Enum) {
	for _, ev := range v.Sig.Values {
		if ev.Value == v.Value {
			io.WriteString(d.w, d.literal(ev.Name))
			return
		}
	}
	io.WriteString(d.w, d.literal(strconv.FormatInt(v.Value, 10)))
}

// bitmask decomposes the value into named flags joined by " | ", with any
// residue (or a bare zero with no matching flag) rendered in hex.
func (d *Dumper) bitmask(v *Bitmask) {
	value := v.Value
	first := true
	for _, flag := range v.Sig.Flags {
		if value == 0 && !first {
			break
		}
		if (flag.Value != 0 && value&flag.Value == flag.Value) ||
			(flag.Value == 0 && value == 0) {
			if !first {
				io.WriteString(d.w, " | ")
			}
			io.WriteString(d.w, d.literal(flag.Name))
			value &^= flag.Value
			first = false
			if flag.Value == 0 {
				break
			}
		}
	}
	if value != 0 || first {
		if !first {
			io.WriteString(d.w, " | ")
		}
		io.WriteString(d.w, d.literal("0x"+strconv.FormatUint(value, 16)))
	}
}

// array renders single-element arrays as &elem, mirroring how most traced
// APIs use them as out-parameters.
func (d *Dumper) array(v *Array) {
	if len(v.Values) == 1 {
		io.WriteString(d.w, "&")
		d.Value(v.Values[0])
		return
	}
	io.WriteString(d.w, "{")
	sep := ""
	for _, elem := range v.Values {
		io.WriteString(d.w, sep)
		d.Value(elem)
		sep = ", "
	}
	io.WriteString(d.w, "}")
}

func (d *Dumper) structValue(v *Struct) {
	io.WriteString(d.w, "{")
	sep := ""
	for i, member := range v.Members {
		io.WriteString(d.w, sep)
		if i < len(v.Sig.MemberNames) {
			io.WriteString(d.w, d.style(dumpItalicStyle, v.Sig.MemberNames[i]))
			io.WriteString(d.w, " = ")
		}
		d.Value(member)
		sep = ", "
	}
	io.WriteString(d.w, "}")
}

func escapeString(s string) string {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf = append(buf, '\\', '"')
		case c == '\\':
			buf = append(buf, '\\', '\\')
		case c == '\t':
			buf = append(buf, '\t')
		case c == '\n':
			buf = append(buf, '\n')
		case c == '\r':
			// drop carriage returns
		case c >= 0x20 && c <= 0x7e:
			buf = append(buf, c)
		default:
			buf = append(buf, '\\')
			if hi := (c >> 6) & 7; hi != 0 {
				buf = append(buf, '0'+hi)
			}
			if mid := (c >> 3) & 7; mid != 0 {
				buf = append(buf, '0'+mid)
			}
			buf = append(buf, '0'+(c&7))
		}
	}
	buf = append(buf, '"')
	return string(buf)
}
