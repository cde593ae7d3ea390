package index

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Hydrate populates the index at startup.
//
// It first loads the pre-built snapshot from snapshotDir (a missing snapshot
// is not fatal: the index starts empty and self-heals as titles are
// approved), then reconciles against the durable record store: every
// persisted approved title absent from the key set is embedded and appended.
// This repairs drift between the last snapshot and titles approved after it
// was taken.
//
// Reconciliation embeddings run concurrently through a worker pool; entries
// are appended in record-store order regardless of embedding completion
// order, so hydration is deterministic.
func (idx *Index) Hydrate(ctx context.Context, snapshotDir string, titles TitleLister) error {
	if snapshotDir != "" {
		snap, err := LoadSnapshot(snapshotDir)
		switch {
		case errors.Is(err, ErrSnapshotMissing):
			idx.logger.Warn("index snapshot not found, starting with empty index", "dir", snapshotDir)
		case err != nil:
			return err
		default:
			if err := idx.ingestSnapshot(snap); err != nil {
				return err
			}
			idx.logger.Info("loaded index snapshot", "dir", snapshotDir, "titles", idx.Size())
		}
	}

	if titles == nil {
		return nil
	}
	return idx.reconcile(ctx, titles)
}

// ingestSnapshot appends every snapshot entry, skipping duplicate keys.
func (idx *Index) ingestSnapshot(snap *Snapshot) error {
	if snap.Manifest.Dim != idx.dim {
		return fmt.Errorf("%w: snapshot dim %d, index dim %d", ErrDimensionMismatch, snap.Manifest.Dim, idx.dim)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, title := range snap.Titles {
		row := snap.Vectors[i*idx.dim : (i+1)*idx.dim]
		if !snap.Manifest.Normalize {
			row = normalizeL2(row)
		}
		idx.appendLocked(title, row)
	}
	return nil
}

// reconcile embeds and appends approved titles the index does not know yet.
func (idx *Index) reconcile(ctx context.Context, titles TitleLister) error {
	approved, err := titles.ListApproved(ctx)
	if err != nil {
		return err
	}

	var missing []string
	for _, text := range approved {
		if !idx.ContainsExact(text) {
			missing = append(missing, text)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	vecs := make([][]float32, len(missing))
	errs := make([]error, len(missing))

	var wg sync.WaitGroup
	for i := range missing {
		i := i
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			vecs[i], errs[i] = idx.embed(ctx, missing[i])
		}); submitErr != nil {
			wg.Done()
			wg.Wait()
			return submitErr
		}
	}
	wg.Wait()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, text := range missing {
		if errs[i] != nil {
			return errs[i]
		}
		idx.appendLocked(text, vecs[i])
	}
	idx.logger.Info("reconciled record store into index", "appended", len(missing))
	return nil
}
