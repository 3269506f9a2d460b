//go:build !linux && !darwin

package tuner

// Detect returns the CPU count with fallback memory figures.
func Detect() (SystemResources, error) {
	return Fallback(), nil
}
