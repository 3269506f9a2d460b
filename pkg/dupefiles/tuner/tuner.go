// Package tuner detects CPU and memory and derives the scanner's concurrency
// settings from them: fingerprint workers, directory walk workers and the
// depth of the queues between pipeline stages.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available RAM in bytes.
	// This may be an estimate based on system heuristics.
	AvailableRAM int64
}

// defaultTotalRAM is the fallback total RAM value when detection fails.
const defaultTotalRAM = 8 * 1024 * 1024 * 1024

// Fallback returns resources for the current CPU count with an assumed
// 8 GiB of RAM, half of it available.
func Fallback() SystemResources {
	return SystemResources{
		CPUCores:     numCPU(),
		TotalRAM:     defaultTotalRAM,
		AvailableRAM: defaultTotalRAM / 2,
	}
}

// DetectOrFallback returns detected resources, or Fallback when detection
// fails.
func DetectOrFallback() SystemResources {
	resources, err := Detect()
	if err != nil || resources.TotalRAM <= 0 || resources.AvailableRAM <= 0 {
		return Fallback()
	}
	return resources
}
