package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/rs/zerolog"
)

var itemPrefix = []byte("item/")

// BadgerConfig configures the embedded badger store. An empty Path opens an
// in-memory database.
type BadgerConfig struct {
	Path           string
	SyncWrites     bool
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// BadgerStore keeps items under item/<id> with cart/<cartID>/<id> index keys.
// Ids are zero padded so key order is id order.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
	stop   chan struct{}
	done   chan struct{}
}

var _ CartStore = (*BadgerStore)(nil)

type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}

// OpenBadger opens (or creates) the badger database described by cfg.
func OpenBadger(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &BadgerStore{db: db, logger: logger}
	if cfg.Path != "" {
		interval := cfg.GCInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio > 1 {
			ratio = 0.5
		}
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.runGC(interval, ratio)
	}
	return s, nil
}

func (s *BadgerStore) runGC(interval time.Duration, ratio float64) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

func itemKey(id int64) []byte {
	return []byte(fmt.Sprintf("item/%020d", id))
}

func cartIndexPrefix(cartID string) []byte {
	return []byte("cart/" + cartID + "/")
}

func cartIndexKey(cartID string, id int64) []byte {
	return []byte(fmt.Sprintf("cart/%s/%020d", cartID, id))
}

func getItem(txn *badger.Txn, id int64) (domain.CartItem, error) {
	var item domain.CartItem
	entry, err := txn.Get(itemKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("get item %d: %w", id, err)
	}
	raw, err := entry.ValueCopy(nil)
	if err != nil {
		return item, fmt.Errorf("read item %d: %w", id, err)
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode item %d: %w", id, err)
	}
	return item, nil
}

func (s *BadgerStore) Get(ctx context.Context, id int64) (domain.CartItem, error) {
	var item domain.CartItem
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		item, err = getItem(txn, id)
		return err
	})
	return item, err
}

func (s *BadgerStore) Put(ctx context.Context, item domain.CartItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", item.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		prev, err := getItem(txn, item.ID)
		switch {
		case err == nil && prev.CartID != item.CartID:
			if err := txn.Delete(cartIndexKey(prev.CartID, prev.ID)); err != nil {
				return err
			}
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}
		if err := txn.Set(itemKey(item.ID), raw); err != nil {
			return err
		}
		return txn.Set(cartIndexKey(item.CartID, item.ID), nil)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := getItem(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(itemKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(cartIndexKey(item.CartID, id)); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

func (s *BadgerStore) ListByCart(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	prefix := cartIndexPrefix(cartID)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			id, err := strconv.ParseInt(string(key[len(prefix):]), 10, 64)
			if err != nil {
				return fmt.Errorf("parse index key %q: %w", key, err)
			}
			item, err := getItem(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			// A cart id containing "/" shares a key prefix with its parent.
			if item.CartID != cartID {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *BadgerStore) List(ctx context.Context) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(itemPrefix); it.ValidForPrefix(itemPrefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var item domain.CartItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return fmt.Errorf("decode item at %q: %w", it.Item().Key(), err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *BadgerStore) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(append([]byte{}, itemPrefix...), 0xFF))
		if !it.ValidForPrefix(itemPrefix) {
			return nil
		}
		key := it.Item().KeyCopy(nil)
		id, err := strconv.ParseInt(string(key[len(itemPrefix):]), 10, 64)
		if err != nil {
			return fmt.Errorf("parse item key %q: %w", key, err)
		}
		max = id
		return nil
	})
	return max, err
}

func (s *BadgerStore) Close() error {
	if s.stop != nil {
		close(s.stop)
		<-s.done
	}
	return s.db.Close()
}
