package trace

import "strings"

// CallFlags classify a call for downstream consumers. The decoder itself
// only ever sets CallFlagIncomplete and CallFlagVerbose; the rest are seeded
// from LookupCallFlags when a function signature is interned.
type CallFlags uint32

const (
	// CallFlagFake marks calls fabricated by the tracer (memcpy and friends).
	CallFlagFake CallFlags = 1 << iota

	// CallFlagNonReproducible marks calls whose result may differ on replay.
	CallFlagNonReproducible

	// CallFlagNoSideEffects marks pure queries.
	CallFlagNoSideEffects

	// CallFlagRender marks draw calls.
	CallFlagRender

	// CallFlagSwapRendertarget marks calls that change the render target.
	CallFlagSwapRendertarget

	// CallFlagEndFrame marks calls that terminate a frame.
	CallFlagEndFrame

	// CallFlagIncomplete marks a call whose LEAVE was never observed.
	CallFlagIncomplete

	// CallFlagVerbose marks calls only worth showing in verbose dumps.
	CallFlagVerbose
)

// Has reports whether all bits of mask are set.
func (f CallFlags) Has(mask CallFlags) bool {
	return f&mask == mask
}

var exactCallFlags = map[string]CallFlags{
	"memcpy":  CallFlagFake,
	"malloc":  CallFlagFake,
	"realloc": CallFlagFake,
	"free":    CallFlagFake,

	"glGetError":   CallFlagNoSideEffects,
	"glGetString":  CallFlagNoSideEffects,
	"glGetStringi": CallFlagNoSideEffects,
	"glIsEnabled":  CallFlagNoSideEffects,

	"glXSwapBuffers":      CallFlagSwapRendertarget | CallFlagEndFrame,
	"eglSwapBuffers":      CallFlagSwapRendertarget | CallFlagEndFrame,
	"wglSwapBuffers":      CallFlagSwapRendertarget | CallFlagEndFrame,
	"wglSwapLayerBuffers": CallFlagSwapRendertarget | CallFlagEndFrame,
	"CGLFlushDrawable":    CallFlagSwapRendertarget | CallFlagEndFrame,

	"glXGetProcAddress":    CallFlagNoSideEffects | CallFlagNonReproducible,
	"glXGetProcAddressARB": CallFlagNoSideEffects | CallFlagNonReproducible,
	"wglGetProcAddress":    CallFlagNoSideEffects | CallFlagNonReproducible,
	"eglGetProcAddress":    CallFlagNoSideEffects | CallFlagNonReproducible,
}

var prefixCallFlags = []struct {
	prefix string
	flags  CallFlags
}{
	{"glDraw", CallFlagRender},
	{"glMultiDraw", CallFlagRender},
	{"glClear", CallFlagRender},
	{"glBlitFramebuffer", CallFlagRender},
	{"glEnd", CallFlagRender},
	{"glGet", CallFlagNoSideEffects},
	{"glIs", CallFlagNoSideEffects},
	{"glXGet", CallFlagNoSideEffects},
	{"glXQuery", CallFlagNoSideEffects},
	{"eglGet", CallFlagNoSideEffects},
	{"eglQuery", CallFlagNoSideEffects},
	{"wglGet", CallFlagNoSideEffects},
	{"wglDescribe", CallFlagNoSideEffects},
}

// LookupCallFlags classifies a function by name. Unknown names carry no
// flags. Called once per signature at interning time, never per call.
func LookupCallFlags(name string) CallFlags {
	if flags, ok := exactCallFlags[name]; ok {
		return flags
	}
	for _, e := range prefixCallFlags {
		if strings.HasPrefix(name, e.prefix) {
			return e.flags
		}
	}
	return 0
}
