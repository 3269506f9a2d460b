// Package verify confirms or rejects a fingerprint collision as a genuine
// duplicate.
//
// Verification runs four stages in order, stopping at the first that fails:
//
//  1. existence: both paths still resolve to regular files
//  2. size: both files have exactly the same length
//  3. fingerprint: both contents hash to the same digest
//  4. identity: the paths are different files, not hard links to one file
//
// Content equality rests on the SHA-256 digest; there is no byte-by-byte
// comparison.
package verify

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/fingerprint"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/identity"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// Verdict is the result of verifying a pair of paths.
type Verdict int

// Verification verdicts.
const (
	NotDuplicate Verdict = iota
	Duplicate
)

// String returns the verdict name.
func (v Verdict) String() string {
	if v == Duplicate {
		return "duplicate"
	}
	return "not_duplicate"
}

// Stage names the verification stage that rejected a pair.
type Stage int

// Verification stages. StageNone means every stage passed.
const (
	StageNone Stage = iota
	StageExistence
	StageSize
	StageFingerprint
	StageIdentity
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageExistence:
		return "existence"
	case StageSize:
		return "size"
	case StageFingerprint:
		return "fingerprint"
	case StageIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

// Outcome describes a finished verification.
type Outcome struct {
	Verdict Verdict

	// Stage is the stage that rejected the pair, or StageNone.
	Stage Stage

	// ExistingSize and CandidateSize are the sizes read during the size stage.
	// They are zero if verification stopped before it.
	ExistingSize  int64
	CandidateSize int64
}

// Fingerprinter computes content fingerprints.
type Fingerprinter interface {
	Fingerprint(path string) (types.Fingerprint, error)
}

// IdentityResolver resolves a path to its filesystem identity.
type IdentityResolver interface {
	Resolve(path string) (types.Identity, error)
}

// IdentityFunc adapts a function to IdentityResolver.
type IdentityFunc func(path string) (types.Identity, error)

// Resolve calls f(path).
func (f IdentityFunc) Resolve(path string) (types.Identity, error) {
	return f(path)
}

// Verifier runs the verification protocol. It is safe for concurrent use
// if its Fingerprinter and IdentityResolver are.
type Verifier struct {
	fp  Fingerprinter
	ids IdentityResolver
}

// New creates a Verifier. A nil ids uses identity.Resolve.
func New(fp Fingerprinter, ids IdentityResolver) *Verifier {
	if ids == nil {
		ids = IdentityFunc(identity.Resolve)
	}
	return &Verifier{fp: fp, ids: ids}
}

// Verify runs every stage for existing and candidate, hashing both files.
// A file that disappears mid-check yields NotDuplicate with a nil error.
// Other I/O failures are returned; callers must treat them as NotDuplicate.
func (v *Verifier) Verify(existing, candidate string) (Outcome, error) {
	return v.verify(existing, candidate, nil)
}

// VerifyWith is Verify with the candidate's fingerprint already known, so only
// the existing path is rehashed.
func (v *Verifier) VerifyWith(existing, candidate string, candidateFP types.Fingerprint) (Outcome, error) {
	return v.verify(existing, candidate, &candidateFP)
}

func (v *Verifier) verify(existing, candidate string, candidateFP *types.Fingerprint) (Outcome, error) {
	out := Outcome{Verdict: NotDuplicate, Stage: StageExistence}

	existingInfo, ok, err := statRegular(existing)
	if err != nil || !ok {
		return out, err
	}
	candidateInfo, ok, err := statRegular(candidate)
	if err != nil || !ok {
		return out, err
	}

	out.Stage = StageSize
	out.ExistingSize = existingInfo.Size()
	out.CandidateSize = candidateInfo.Size()
	if out.ExistingSize != out.CandidateSize {
		return out, nil
	}

	out.Stage = StageFingerprint
	existingFP, err := v.fp.Fingerprint(existing)
	if err != nil {
		return vanished(out, err, fingerprint.ErrNotFound)
	}
	var otherFP types.Fingerprint
	if candidateFP != nil {
		otherFP = *candidateFP
	} else {
		otherFP, err = v.fp.Fingerprint(candidate)
		if err != nil {
			return vanished(out, err, fingerprint.ErrNotFound)
		}
	}
	if existingFP != otherFP {
		return out, nil
	}

	out.Stage = StageIdentity
	existingID, err := v.ids.Resolve(existing)
	if err != nil {
		return vanished(out, err, os.ErrNotExist)
	}
	candidateID, err := v.ids.Resolve(candidate)
	if err != nil {
		return vanished(out, err, os.ErrNotExist)
	}
	if existingID == candidateID {
		return out, nil
	}

	out.Verdict = Duplicate
	out.Stage = StageNone
	return out, nil
}

// statRegular stats path, following symlinks. ok is false when the path no
// longer exists or is no longer a regular file.
func statRegular(path string) (os.FileInfo, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("verifying %s: %w", path, err)
	}
	return info, info.Mode().IsRegular(), nil
}

// vanished turns a not-found error into a plain NotDuplicate and passes any
// other error through.
func vanished(out Outcome, err, notFound error) (Outcome, error) {
	if errors.Is(err, notFound) {
		out.Stage = StageExistence
		return out, nil
	}
	return out, err
}
