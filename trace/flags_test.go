package trace_test

import (
	"testing"

	"github.com/xranby/apitrace/trace"
)

func TestLookupCallFlags(t *testing.T) {
	tests := []struct {
		name string
		want trace.CallFlags
	}{
		{"glXSwapBuffers", trace.CallFlagSwapRendertarget | trace.CallFlagEndFrame},
		{"eglSwapBuffers", trace.CallFlagSwapRendertarget | trace.CallFlagEndFrame},
		{"memcpy", trace.CallFlagFake},
		{"glGetError", trace.CallFlagNoSideEffects},
		{"glDrawArrays", trace.CallFlagRender},
		{"glDrawElements", trace.CallFlagRender},
		{"glClear", trace.CallFlagRender},
		{"glGetIntegerv", trace.CallFlagNoSideEffects},
		{"glXGetProcAddress", trace.CallFlagNoSideEffects | trace.CallFlagNonReproducible},
		{"glVertex3f", 0},
		{"CreateDevice", 0},
	}
	for _, tt := range tests {
		if got := trace.LookupCallFlags(tt.name); got != tt.want {
			t.Errorf("LookupCallFlags(%q): got %#x, want %#x", tt.name, got, tt.want)
		}
	}
}

func TestCallFlagsHas(t *testing.T) {
	f := trace.CallFlagRender | trace.CallFlagVerbose
	if !f.Has(trace.CallFlagRender) {
		t.Error("Has(Render) = false")
	}
	if !f.Has(trace.CallFlagRender | trace.CallFlagVerbose) {
		t.Error("Has(Render|Verbose) = false")
	}
	if f.Has(trace.CallFlagIncomplete) {
		t.Error("Has(Incomplete) = true")
	}
}
