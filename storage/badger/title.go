package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/titlegate/core"
	"github.com/poiesic/titlegate/storage"
)

// TitleRepository implements storage.TitleRepository for BadgerDB.
//
// Uniqueness of the normalized title text is enforced through a dedicated
// name-index key written in the same transaction as the record itself.
type TitleRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TitleRepository = (*TitleRepository)(nil)

// NewTitleRepository creates a new TitleRepository.
//
// Returns storage.TitleRepository interface to enforce abstraction.
func NewTitleRepository(backend *Backend) (storage.TitleRepository, error) {
	idSeq, err := backend.GetSequence(titleIDSeq)
	if err != nil {
		return nil, err
	}

	return &TitleRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TitleRepository) Close() error {
	return r.idSeq.Release()
}

// AddTitle persists a new approved title.
// Returns storage.ErrDuplicateKey if a title with the same normalized text
// already exists.
func (r *TitleRepository) AddTitle(ctx context.Context, text string) (*core.Title, error) {
	trimmed := strings.TrimSpace(text)
	title := &core.Title{
		Text:      trimmed,
		Status:    core.StatusApproved,
		CreatedAt: time.Now().UTC(),
	}
	if err := core.ValidateTitle(title); err != nil {
		return nil, err
	}

	nameKey := makeTitleNameKey(title.Key())

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Uniqueness check against the name index
		_, err := tx.Get(nameKey)
		if err == nil {
			return fmt.Errorf("%w: title %q", storage.ErrDuplicateKey, trimmed)
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		title.Id = core.ID(nextID)

		if err := tx.Set(makeTitleRecordKey(title.Id), storage.MarshalTitle(title)); err != nil {
			return err
		}
		if err := tx.Set(nameKey, storage.MarshalID(title.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return title, nil
}

// GetTitle retrieves a single title by ID.
func (r *TitleRepository) GetTitle(ctx context.Context, id core.ID) (*core.Title, error) {
	var title *core.Title

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTitleRecordKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			title, err = storage.UnmarshalTitle(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return title, nil
}

// ListApproved returns every approved title text in insertion order.
func (r *TitleRepository) ListApproved(ctx context.Context) ([]string, error) {
	var texts []string

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(titleRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var title *core.Title
			err := iter.Item().Value(func(val []byte) error {
				var err error
				title, err = storage.UnmarshalTitle(val)
				return err
			})
			if err != nil {
				return err
			}
			if title.Status != core.StatusApproved {
				continue
			}
			texts = append(texts, title.Text)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return texts, nil
}
