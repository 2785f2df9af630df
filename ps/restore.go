package ps

import (
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

// Tag marks a transaction (or HEAD when asof is nil) with a name so
// the whole store can be recovered to it later.
func (persistence *Persistence) Tag(name string, asof *Transaction) error {
	if err := persistence.ensureInitialized(); err != nil {
		return err
	}

	if asof != nil {
		_, err := persistence.repo.CreateTag(name, plumbing.NewHash(asof.Id), nil)

		return err
	}

	headRef, err := persistence.repo.Head()
	if err != nil {
		return fmt.Errorf("nothing to tag: %w", err)
	}

	_, err = persistence.repo.CreateTag(name, headRef.Hash(), nil)

	return err
}

// Recover resets the whole store to a previously created tag.
func (persistence *Persistence) Recover(name string) error {
	if err := persistence.ensureInitialized(); err != nil {
		return err
	}

	ref, err := persistence.repo.Tag(name)
	if err != nil {
		return fmt.Errorf("tag %s: %w", name, err)
	}

	wt, err := persistence.repo.Worktree()
	if err != nil {
		return err
	}

	return wt.Reset(&git.ResetOptions{
		Mode:   git.HardReset,
		Commit: ref.Hash(),
	})
}

// Restore resets the store to the given transaction. When snapshot is
// non-nil only that snapshot's directory is restored; everything else
// keeps its current state.
func (persistence *Persistence) Restore(asof Transaction, snapshot *string) error {
	if err := persistence.ensureInitialized(); err != nil {
		return err
	}

	wt, err := persistence.repo.Worktree()
	if err != nil {
		return err
	}

	sparseDirs := []string{}
	if snapshot != nil {
		sparseDirs = append(sparseDirs, *snapshot)
	}

	return wt.Reset(&git.ResetOptions{
		Mode:       git.HardReset,
		Commit:     plumbing.NewHash(asof.Id),
		SparseDirs: sparseDirs,
	})
}
