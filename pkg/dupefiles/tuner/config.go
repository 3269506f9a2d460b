package tuner

import "runtime"

// Worker configuration limits.
const (
	// maxWorkers is the maximum number of workers for any pool.
	maxWorkers = 64

	// minWalkWorkers is the minimum number of directory walk workers.
	// Directory traversal benefits from parallelism even on small systems.
	minWalkWorkers = 4

	// minQueueSize is the minimum channel buffer between stages.
	minQueueSize = 64

	// maxQueueSize is the maximum channel buffer between stages.
	maxQueueSize = 16384
)

// Memory-based queue sizing constants.
const (
	// bytesPerQueueEntry estimates memory per queued file entry.
	bytesPerQueueEntry = 512

	// queueMemoryFraction is the fraction of available RAM to use for queues.
	queueMemoryFraction = 0.01
)

var numCPU = runtime.NumCPU

// OptimalConfig contains tuned scanner concurrency settings.
type OptimalConfig struct {
	// HashWorkers is the number of concurrent fingerprint workers.
	HashWorkers int

	// WalkWorkers is the number of directory walk goroutines.
	WalkWorkers int

	// QueueSize is the buffer of each channel between pipeline stages.
	QueueSize int
}

// Calculate returns optimal configuration based on system resources.
//
//   - HashWorkers: NumCPU. Hashing is CPU bound once the page cache is warm.
//   - WalkWorkers: max(NumCPU, 4). Traversal is metadata heavy.
//   - Both worker counts are capped at 64.
//   - QueueSize scales with available RAM.
func Calculate(resources SystemResources) OptimalConfig {
	hashWorkers := max(resources.CPUCores, 1)
	hashWorkers = min(hashWorkers, maxWorkers)

	walkWorkers := max(resources.CPUCores, minWalkWorkers)
	walkWorkers = min(walkWorkers, maxWorkers)

	return OptimalConfig{
		HashWorkers: hashWorkers,
		WalkWorkers: walkWorkers,
		QueueSize:   calculateQueueSize(resources.AvailableRAM),
	}
}

// CalculateWithOverrides applies a user worker override to the optimal
// config. An override above zero replaces HashWorkers, still capped at 64.
func CalculateWithOverrides(resources SystemResources, workerOverride int) OptimalConfig {
	config := Calculate(resources)

	if workerOverride > 0 {
		config.HashWorkers = min(workerOverride, maxWorkers)
	}

	return config
}

// calculateQueueSize determines queue size based on available memory.
func calculateQueueSize(availableRAM int64) int {
	queueMemory := float64(availableRAM) * queueMemoryFraction
	entries := int(queueMemory / bytesPerQueueEntry)

	// Two queues: walk to hash, hash to index.
	entriesPerQueue := entries / 2

	entriesPerQueue = max(entriesPerQueue, minQueueSize)
	entriesPerQueue = min(entriesPerQueue, maxQueueSize)

	return entriesPerQueue
}
