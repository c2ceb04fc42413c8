package trace_test

import (
	"math"
	"testing"

	"github.com/xranby/apitrace/trace"
)

func TestToSInt(t *testing.T) {
	tests := []struct {
		value trace.Value
		want  int64
		ok    bool
	}{
		{trace.Null{}, 0, true},
		{trace.Bool(true), 1, true},
		{trace.Bool(false), 0, true},
		{trace.SInt(-5), -5, true},
		{trace.UInt(5), 5, true},
		{trace.UInt(math.MaxInt64), math.MaxInt64, true},
		{trace.UInt(math.MaxUint64), 0, false},
		{trace.Float(1), 0, false},
		{trace.String("1"), 0, false},
	}
	for _, tt := range tests {
		got, ok := trace.ToSInt(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToSInt(%#v): got (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToUInt(t *testing.T) {
	tests := []struct {
		value trace.Value
		want  uint64
		ok    bool
	}{
		{trace.Null{}, 0, true},
		{trace.Bool(true), 1, true},
		{trace.SInt(5), 5, true},
		{trace.SInt(-5), 0, false},
		{trace.UInt(math.MaxUint64), math.MaxUint64, true},
		{trace.Double(1), 0, false},
	}
	for _, tt := range tests {
		got, ok := trace.ToUInt(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToUInt(%#v): got (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCallArg(t *testing.T) {
	call := &trace.Call{
		Sig:  &trace.FunctionSig{Name: "foo", ArgNames: []string{"a", "b", "c"}},
		Args: []trace.Value{trace.UInt(1), nil, trace.UInt(3)},
	}

	if got := call.Arg(0); got != trace.Value(trace.UInt(1)) {
		t.Errorf("Arg(0): %#v", got)
	}
	if got := call.Arg(1); got != trace.Value(trace.Null{}) {
		t.Errorf("Arg(1): %#v", got)
	}
	if got := call.Arg(5); got != trace.Value(trace.Null{}) {
		t.Errorf("Arg(5): %#v", got)
	}
	if got := call.Arg(-1); got != trace.Value(trace.Null{}) {
		t.Errorf("Arg(-1): %#v", got)
	}
	if call.Name() != "foo" {
		t.Errorf("Name: %q", call.Name())
	}
}
