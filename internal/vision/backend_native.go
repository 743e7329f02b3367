//go:build !gocv

package vision

// Backend names the implementation returned by New.
const Backend = "native"

// New returns the preferred Vision for this build.
func New() Vision {
	return NewNative()
}
