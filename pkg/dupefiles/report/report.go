// Package report provides the sinks that confirmed duplicate pairs are
// written to (csv, json, yaml).
//
// The package uses a registry pattern so the output format can be selected
// at runtime.
//
// Basic usage:
//
//	sink, err := report.Get("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = sink.Report(pair)
//	_ = sink.Finish()
package report

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// DefaultFormat is the format used when none is configured.
const DefaultFormat = "csv"

// NoDuplicatesMessage is written by the csv sink when a scan reports nothing.
const NoDuplicatesMessage = "No duplicate files found."

// Sink receives confirmed duplicate pairs from a single scan.
// Report is called once per pair, from one goroutine; Finish is called once
// when the scan completes. A sink is scan-scoped and must not be reused.
type Sink interface {
	Report(pair types.DuplicatePair) error
	Finish() error
}

// SinkFactory creates a new Sink writing to w.
type SinkFactory func(w io.Writer) Sink

// Registry manages sink registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]SinkFactory
}

// NewRegistry creates a new sink registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]SinkFactory),
	}
}

// Register adds a sink factory to the registry.
// It will replace any existing factory with the same name.
func (r *Registry) Register(name string, factory SinkFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new sink by name writing to w.
// It returns an error if the format is not registered.
func (r *Registry) Get(name string, w io.Writer) (Sink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown report format: %s", name)
	}
	return factory(w), nil
}

// Available returns a sorted list of all registered format names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global sink registry.
var DefaultRegistry = NewRegistry()

// Register adds a sink factory to the default registry.
func Register(name string, factory SinkFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new sink from the default registry.
func Get(name string, w io.Writer) (Sink, error) {
	return DefaultRegistry.Get(name, w)
}

// Available returns all format names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// Collector is a Sink that keeps pairs in memory. Library callers and tests
// use it when they want the pairs rather than formatted output.
type Collector struct {
	mu       sync.Mutex
	Pairs    []types.DuplicatePair
	Finished bool
}

// Report appends pair.
func (c *Collector) Report(pair types.DuplicatePair) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pairs = append(c.Pairs, pair)
	return nil
}

// Finish marks the collector finished.
func (c *Collector) Finish() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Finished = true
	return nil
}

// Ensure Collector implements Sink.
var _ Sink = (*Collector)(nil)
