package scanner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/google/uuid"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/filter"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/fingerprint"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/identity"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/index"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/verify"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrRootNotFound indicates the scan root does not exist.
	ErrRootNotFound = errors.New("directory not found")

	// ErrRootNotDir indicates the scan root is not a directory.
	ErrRootNotDir = errors.New("not a directory")

	// ErrUnsupportedPlatform indicates file identity cannot be read on this
	// operating system, so hard links could not be told apart from copies.
	ErrUnsupportedPlatform = errors.New("duplicate detection is not supported on this platform")
)

// sequenced is an eligible entry with its position in scan order.
type sequenced struct {
	seq   int
	entry types.FileEntry
}

// hashed is the fingerprint of a sequenced entry. ok is false when hashing
// failed; such results only advance the consumer past seq.
type hashed struct {
	seq   int
	entry types.FileEntry
	sum   types.Fingerprint
	ok    bool
}

// Scanner finds duplicate files under one root.
// A Scanner runs one scan; create a new one for every invocation.
type Scanner struct {
	opts Options
	log  *logging.Logger

	classifier    *filter.Classifier
	fingerprinter *fingerprint.Fingerprinter
	verifier      *verify.Verifier

	// index is owned by the consumer goroutine in Scan.
	index *index.Index

	// Atomic counters, updated from walk and hash goroutines.
	filesVisited atomic.Int64
	filesHashed  atomic.Int64
	bytesHashed  atomic.Int64
	duplicates   atomic.Int64

	// skipped counts skipped entries by verdict name.
	skipped   map[string]int64
	skippedMu sync.Mutex

	// errors collects per-file errors without stopping the scan.
	errors   []types.ScanError
	errorsMu sync.Mutex

	// root is the resolved absolute path being scanned.
	root string
}

// New creates a new Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) *Scanner {
	_ = opts.Validate()

	fp := fingerprint.New(
		fingerprint.WithBufferSize(opts.BufferSize),
		fingerprint.WithAlgorithm(opts.Algorithm),
	)
	return &Scanner{
		opts:          opts,
		log:           opts.Logger,
		fingerprinter: fp,
		verifier:      verify.New(fp, nil),
		skipped:       make(map[string]int64),
		errors:        make([]types.ScanError, 0),
	}
}

// Scan walks the tree, reports every confirmed duplicate pair to the sink and
// finishes the sink. It blocks until the scan completes or ctx is cancelled.
//
// Eligible files are put in path order before hashing, and results are
// indexed in that order however the hash workers interleave, so repeated
// scans of an unchanged tree report the same pairs with the same labels.
//
// Only an invalid root or exclude pattern, an unsupported platform, a
// cancelled context, or a failing sink end the scan early; problems with
// individual files are logged as warnings and recorded in the result.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	startTime := time.Now()

	if !identity.Supported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
	}
	if err := filter.ValidatePatterns(s.opts.Exclude...); err != nil {
		return nil, err
	}

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root
	s.index = index.New()
	s.classifier = filter.New(root,
		filter.WithExtensions(s.opts.Extensions...),
		filter.WithExclude(s.opts.Exclude...),
	)

	id := uuid.NewString()
	s.log = s.log.With("scan_id", id)
	s.log.Info("scan started", "root", root,
		"workers", s.opts.Workers, "walk_workers", s.opts.WalkWorkers,
		"hash", s.fingerprinter.Algorithm())
	if s.classifier.IsHidden(root) {
		s.log.Warn("scan root is inside a hidden directory; every entry will be skipped", "root", root)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	entries := make(chan sequenced, s.opts.QueueSize)
	results := make(chan hashed, s.opts.QueueSize)

	g.Go(func() error {
		defer close(entries)
		eligible, err := s.walk(gctx)
		if err != nil {
			return err
		}
		slices.SortFunc(eligible, func(a, b types.FileEntry) int {
			return comparePaths(a.Path, b.Path)
		})
		for seq, entry := range eligible {
			select {
			case entries <- sequenced{seq: seq, entry: entry}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var workers sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			return s.hashWorker(gctx, entries, results)
		})
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	sinkErr := s.consume(results, cancel)

	walkErr := g.Wait()
	switch {
	case sinkErr != nil:
		return nil, sinkErr
	case ctx.Err() != nil:
		// Only the caller can cancel ctx at this point.
		return nil, ctx.Err()
	case walkErr != nil:
		return nil, walkErr
	}

	if err := s.opts.Sink.Finish(); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	result := s.buildResult(id, time.Since(startTime))
	s.log.Info("scan complete",
		"elapsed", result.Elapsed.Round(time.Millisecond),
		"files", result.FilesVisited,
		"hashed", result.FilesHashed,
		"bytes", types.FormatSize(result.BytesHashed),
		"duplicates", result.Duplicates,
		"errors", len(result.Errors))
	return result, nil
}

// consume is the only goroutine that touches the index, the verifier and the
// sink. Results arrive in completion order and are held until every earlier
// sequence number has been handled. After a sink failure it cancels the scan
// and drains results so the workers can exit.
func (s *Scanner) consume(results <-chan hashed, cancel context.CancelFunc) error {
	pending := make(map[int]hashed)
	next := 0
	var sinkErr error
	for h := range results {
		if sinkErr != nil {
			continue
		}
		pending[h.seq] = h
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if !ready.ok {
				continue
			}
			if err := s.consider(ready); err != nil {
				sinkErr = err
				cancel()
				break
			}
		}
	}
	return sinkErr
}

// validateRoot resolves the root path to absolute and verifies it is a directory.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", s.opts.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return "", fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	return root, nil
}

// walk runs fastwalk over the root and returns the eligible entries in
// no particular order.
func (s *Scanner) walk(ctx context.Context) ([]types.FileEntry, error) {
	var (
		mu       sync.Mutex
		eligible []types.FileEntry
	)
	collect := func(entry types.FileEntry) {
		mu.Lock()
		eligible = append(eligible, entry)
		mu.Unlock()
	}

	conf := fastwalk.Config{
		Follow:     false, // Symlinked directories are never descended into.
		Sort:       fastwalk.SortLexical,
		NumWorkers: s.opts.WalkWorkers,
	}

	err := fastwalk.Walk(&conf, s.root, s.walkCallback(ctx, collect))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	return eligible, nil
}

// walkCallback returns the callback function for fastwalk.Walk.
// fastwalk calls it from several goroutines.
func (s *Scanner) walkCallback(ctx context.Context, collect func(types.FileEntry)) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Unreadable directories and similar: log and continue.
		if err != nil {
			s.warn(path, "cannot read entry", err)
			return nil
		}

		if d.IsDir() {
			if path == s.root {
				return nil
			}
			if v := s.classifier.ClassifyDir(path); v != filter.Eligible {
				s.log.Debug("pruning directory", "path", path, "reason", v)
				s.countSkip(v)
				return fastwalk.SkipDir
			}
			return nil
		}

		s.filesVisited.Add(1)

		entry, verdict, err := s.classifier.Classify(path)
		if err != nil {
			s.warn(path, "skipping entry", err)
		}
		if verdict != filter.Eligible {
			s.countSkip(verdict)
			return nil
		}
		collect(entry)
		return nil
	}
}

// comparePaths orders paths component by component, which is the order a
// depth-first walk over lexically sorted directories visits them in.
func comparePaths(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if ca == filepath.Separator {
			return -1
		}
		if cb == filepath.Separator {
			return 1
		}
		return cmp.Compare(ca, cb)
	}
	return cmp.Compare(len(a), len(b))
}

// hashWorker fingerprints entries until the channel closes or ctx is done.
// Every entry yields a result, failed ones with ok unset.
func (s *Scanner) hashWorker(ctx context.Context, in <-chan sequenced, out chan<- hashed) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-in:
			if !ok {
				return nil
			}

			res := hashed{seq: next.seq, entry: next.entry}
			sum, err := s.fingerprinter.Fingerprint(next.entry.Path)
			switch {
			case errors.Is(err, fingerprint.ErrNotFound):
				s.warn(next.entry.Path, "file vanished before hashing", err)
			case err != nil:
				s.warn(next.entry.Path, "cannot hash file", err)
			default:
				s.filesHashed.Add(1)
				s.bytesHashed.Add(next.entry.Size)
				res.sum, res.ok = sum, true
			}

			select {
			case out <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// consider indexes a hashed entry, or verifies it against the entry already
// indexed under the same fingerprint and reports a confirmed pair.
// Only a sink failure is returned.
func (s *Scanner) consider(h hashed) error {
	existing, loaded := s.index.LoadOrStore(h.sum, h.entry.Path)
	if !loaded {
		s.log.Debug("indexed", "path", h.entry.Path, "fingerprint", h.sum)
		return nil
	}

	out, err := s.verifier.VerifyWith(existing, h.entry.Path, h.sum)
	if err != nil {
		s.warn(h.entry.Path, "verification inconclusive", err)
		return nil
	}
	if out.Verdict != verify.Duplicate {
		s.log.Debug("not a duplicate",
			"existing", existing, "candidate", h.entry.Path, "stage", out.Stage)
		return nil
	}

	pair := types.DuplicatePair{
		PathA: existing,
		SizeA: out.ExistingSize,
		PathB: h.entry.Path,
		SizeB: out.CandidateSize,
	}
	s.duplicates.Add(1)
	s.log.Debug("duplicate", "a", pair.PathA, "b", pair.PathB, "size", pair.SizeA)

	if err := s.opts.Sink.Report(pair); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// warn logs a per-file problem and records it in the result.
func (s *Scanner) warn(path, msg string, err error) {
	s.log.Warn(msg, "path", path, "err", err)

	s.errorsMu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}

// countSkip records a skipped entry under its verdict name.
func (s *Scanner) countSkip(v filter.Verdict) {
	s.skippedMu.Lock()
	s.skipped[v.String()]++
	s.skippedMu.Unlock()
}

// buildResult snapshots the counters into a ScanResult.
func (s *Scanner) buildResult(id string, elapsed time.Duration) *types.ScanResult {
	s.skippedMu.Lock()
	skipped := make(map[string]int64, len(s.skipped))
	for k, v := range s.skipped {
		skipped[k] = v
	}
	s.skippedMu.Unlock()

	s.errorsMu.Lock()
	errs := append([]types.ScanError(nil), s.errors...)
	s.errorsMu.Unlock()

	return &types.ScanResult{
		ID:           id,
		Root:         s.root,
		FilesVisited: s.filesVisited.Load(),
		FilesHashed:  s.filesHashed.Load(),
		BytesHashed:  s.bytesHashed.Load(),
		Skipped:      skipped,
		Duplicates:   s.duplicates.Load(),
		Elapsed:      elapsed,
		Errors:       errs,
	}
}
