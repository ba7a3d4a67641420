// Package storage implements the directory/realtime store on top of BadgerDB.
// Documents live under "doc:{collection}|{id}" keys, every committed write
// wakes the subscribers of its collection which then receive a full snapshot.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
	"wisp/contract"
	"wisp/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
	hub *Hub

	mu        sync.Mutex
	lastStamp time.Time
	now       func() time.Time
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{
		db:  db,
		log: log,
		hub: NewHub(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// serverTimestamp returns a strictly increasing time, so two appends
// in the same nanosecond still have a definite order.
func (s *BadgerStore) serverTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t
}

// Upsert merges fields into the document, creating it if needed.
func (s *BadgerStore) Upsert(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp := s.serverTimestamp()
	key := documentKey(collection, id)

	err := s.db.Update(func(txn *badger.Txn) error {
		doc := contract.Document{ID: id, Fields: map[string]any{}, CreateTime: stamp}
		item, err := txn.Get(key)
		switch {
		case err == nil:
			if err = item.Value(func(val []byte) error {
				doc, err = DecodeDocument(val)
				return err
			}); err != nil {
				return err
			}
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}
		doc.Fields = lo.Assign(doc.Fields, fields)
		doc.UpdateTime = stamp

		bytes, err := encodeDocument(doc)
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %s/%s: %v", errors.ErrStore, collection, id, err)
	}
	s.hub.Notify(collection)
	return nil
}

// Append stores a new document with a store-assigned id and creation time.
// The id starts with a 19-digit zero padded timestamp so prefix scans come out chronological.
func (s *BadgerStore) Append(ctx context.Context, collection string, fields map[string]any) (contract.Document, error) {
	if err := ctx.Err(); err != nil {
		return contract.Document{}, err
	}
	stamp := s.serverTimestamp()
	doc := contract.Document{
		ID:         fmt.Sprintf("%019d-%s", stamp.UnixNano(), uuid.New()),
		Fields:     lo.Assign(map[string]any{}, fields),
		CreateTime: stamp,
		UpdateTime: stamp,
	}
	bytes, err := encodeDocument(doc)
	if err != nil {
		return contract.Document{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(collection, doc.ID), bytes)
	})
	if err != nil {
		return contract.Document{}, fmt.Errorf("%w: append %s: %v", errors.ErrStore, collection, err)
	}
	s.log.Debug("Document appended", "collection", collection, "id", doc.ID)
	s.hub.Notify(collection)
	return doc, nil
}

// List returns every document of the collection ordered by creation time.
func (s *BadgerStore) List(ctx context.Context, collection string) ([]contract.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []contract.Document
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(collectionPrefix(collection))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				doc, err := DecodeDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", errors.ErrStore, collection, err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreateTime.Before(docs[j].CreateTime)
	})
	return docs, nil
}

// Subscribe delivers the current snapshot immediately, then a new one after every write to the collection.
// Pending wake-ups are coalesced: a slow reader only ever gets the latest state.
func (s *BadgerStore) Subscribe(ctx context.Context, collection string) (contract.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		collection: collection,
		out:        make(chan contract.Snapshot),
		wake:       make(chan struct{}, 1),
		cancel:     cancel,
	}
	s.hub.Register(collection, sub)
	go s.feed(subCtx, sub)
	return sub, nil
}

func (s *BadgerStore) feed(ctx context.Context, sub *subscription) {
	defer close(sub.out)
	defer s.hub.Unregister(sub.collection, sub)

	for {
		docs, err := s.List(ctx, sub.collection)
		if ctx.Err() != nil {
			return
		}
		snapshot := contract.Snapshot{Documents: docs, Err: err}
		if err != nil {
			s.log.Error("Subscription failed", "collection", sub.collection, "error", err)
		}

		select {
		case sub.out <- snapshot:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}

		select {
		case <-sub.wake:
		case <-ctx.Done():
			return
		}
	}
}

// Close ends every live subscription.
func (s *BadgerStore) Close() {
	s.hub.CloseAll()
}

type subscription struct {
	collection string
	out        chan contract.Snapshot
	wake       chan struct{}
	cancel     context.CancelFunc
}

func (s *subscription) Snapshots() <-chan contract.Snapshot {
	return s.out
}

// Close releases the subscription, the snapshot channel is closed right after.
func (s *subscription) Close() {
	s.cancel()
}

func (s *subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
