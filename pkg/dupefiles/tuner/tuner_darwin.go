//go:build darwin

package tuner

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Detect detects available system resources (CPU and RAM).
// On darwin it uses unix.SysctlUint64 for total memory and assumes half of
// it is available, since macOS fills spare memory with file cache.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: numCPU(),
	}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return resources, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	resources.TotalRAM = int64(memsize)
	resources.AvailableRAM = resources.TotalRAM / 2

	return resources, nil
}
