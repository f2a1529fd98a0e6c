//go:build !gpu

package cl

// Load returns an error when OpenCL support is not compiled in.
func Load() (API, error) {
	return nil, ErrNotBuilt
}
