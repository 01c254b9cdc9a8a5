package align

import (
	"fmt"
	"runtime"
)

// BuildInfo returns a human-readable description of the toolchain and
// target this binary's DSP hot path was built with — the Go analogue of
// channelizer_build_info() in the C original, which reports compiler,
// SIMD capability and optimisation flags that may differ from the main
// executable. Go compiles the whole module uniformly, so there is no
// per-file flag story to report; this instead reports the Go runtime
// version and target triple, which is the information actually
// available for diagnosing numeric or performance discrepancies across
// builds.
func BuildInfo() string {
	return fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
