package snapshot

import (
	"fmt"

	"svc/internal/change"
)

// Result is the outcome of Diff.
type Result struct {
	// Actions in change.Sort order.
	Actions change.Set
	// Files is the staging set with fingerprints recomputed and the content
	// of modified files re-read.
	Files *Snapshot
}

// Diff classifies every file of staging and head. A nil head means the
// first commit: every staged file is an Add. staging is not modified.
func (src Source) Diff(staging, head *Snapshot) (Result, error) {
	files := staging.Clone()
	var actions change.Set

	if head == nil {
		for _, e := range files.Entries() {
			fresh, err := src.Load(e.Name)
			if err != nil {
				return Result{}, fmt.Errorf("diffing %s: %w", e.Name, err)
			}
			files.Replace(fresh)
			actions = append(actions, change.Action{
				Kind:        change.Add,
				Name:        e.Name,
				Fingerprint: fresh.Fingerprint,
			})
		}
		change.Sort(actions)
		return Result{Actions: actions, Files: files}, nil
	}

	for _, e := range files.Entries() {
		old, matched := head.Get(e.Name)
		if !matched {
			fresh, err := src.Load(e.Name)
			if err != nil {
				return Result{}, fmt.Errorf("diffing %s: %w", e.Name, err)
			}
			files.Replace(fresh)
			actions = append(actions, change.Action{
				Kind:        change.Add,
				Name:        e.Name,
				Fingerprint: fresh.Fingerprint,
			})
			continue
		}

		fp, err := src.Fingerprint(e.Name)
		if err != nil {
			return Result{}, fmt.Errorf("diffing %s: %w", e.Name, err)
		}
		if fp == old.Fingerprint {
			e.Fingerprint = fp
			files.Replace(e)
			continue
		}

		fresh, err := src.Load(e.Name)
		if err != nil {
			return Result{}, fmt.Errorf("diffing %s: %w", e.Name, err)
		}
		files.Replace(fresh)
		actions = append(actions, change.Action{
			Kind:           change.Modify,
			Name:           e.Name,
			Fingerprint:    fresh.Fingerprint,
			OldFingerprint: old.Fingerprint,
		})
	}

	for _, old := range head.Entries() {
		if files.Has(old.Name) {
			continue
		}
		actions = append(actions, change.Action{
			Kind:        change.Remove,
			Name:        old.Name,
			Fingerprint: old.Fingerprint,
		})
	}

	change.Sort(actions)
	return Result{Actions: actions, Files: files}, nil
}

// Changed is the cheap change check used as a precondition: it compares the
// uint32 sum of staging fingerprints, recomputed from disk, with the sum of
// head's recorded fingerprints.
//
// Distinct sets can sum equal and then report no change. Branch, checkout
// and commit outcomes depend on this check, so it must stay a sum.
func (src Source) Changed(staging, head *Snapshot) bool {
	if head == nil {
		return true
	}
	var sum uint32
	for _, e := range staging.Entries() {
		fp, err := src.Fingerprint(e.Name)
		if err != nil {
			return true
		}
		sum += fp
	}
	return sum != head.StoredSum()
}

// PruneMissing removes from s every entry whose file no longer exists and
// returns the removed names in their original order.
func (src Source) PruneMissing(s *Snapshot) []string {
	var removed []string
	for _, name := range s.Names() {
		if src.Reader.Exists(name) {
			continue
		}
		s.Remove(name)
		removed = append(removed, name)
	}
	return removed
}
