package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"friendly-chat/contract"
	"friendly-chat/feed"
	"friendly-chat/runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const documentPrefix = "doc:"

// DocumentStore keeps documents in BadgerDB.
// The key is formatted as "doc:{collection}/{id}" so a collection is a prefix scan.
// Live queries are woken up through an in-process registry on every write.
type DocumentStore struct {
	db       *badger.DB
	log      *slog.Logger
	watchers *runtime.Registry[string]
	now      func() time.Time

	mu       sync.Mutex
	lastTime time.Time
}

func NewDocumentStore(db *badger.DB, log *slog.Logger) *DocumentStore {
	return &DocumentStore{
		db:       db,
		log:      log,
		watchers: runtime.NewRegistry[string](),
		now:      time.Now,
	}
}

func documentKey(ref contract.DocumentRef) []byte {
	return []byte(documentPrefix + ref.Path())
}

func collectionPrefix(collection string) []byte {
	return []byte(documentPrefix + collection + "/")
}

// Create stores record under a new random id.
func (s *DocumentStore) Create(ctx context.Context, collection string, record contract.Record) (contract.DocumentRef, error) {
	ref := contract.DocumentRef{Collection: collection, ID: uuid.NewString()}
	if err := s.Set(ctx, ref, record); err != nil {
		return contract.DocumentRef{}, err
	}
	return ref, nil
}

// Set overwrites the whole document, last write wins.
func (s *DocumentStore) Set(ctx context.Context, ref contract.DocumentRef, record contract.Record) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeRecord(resolveServerTimestamps(record, s.serverTime()))
	if err != nil {
		return fmt.Errorf("encode %s: %w", ref.Path(), err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(ref), data)
	})
	if err != nil {
		return err
	}
	s.watchers.Publish(ref.Collection, ref.ID)
	return nil
}

// Query opens a live query: the first update is the current result set,
// then a new one is sent after each write to the collection.
func (s *DocumentStore) Query(ctx context.Context, query contract.Query) (*feed.Feed[contract.Snapshot], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	// Fail fast on a closed database instead of returning a dead feed.
	if _, err := s.Get(query); err != nil {
		return nil, err
	}

	snapshots := feed.New[contract.Snapshot](ctx, 1)
	wakeUp := make(chan string, 1)
	subscriberID := uuid.NewString()
	// Subscribing before the first read guarantees no write is missed.
	s.watchers.Subscribe(subscriberID, query.Collection, wakeUp)

	go func() {
		defer s.watchers.Unsubscribe(subscriberID, query.Collection)
		for {
			snapshot, err := s.Get(query)
			if err != nil {
				s.log.Warn("Live query stopped", "collection", query.Collection, "error", err)
				snapshots.Finish(err)
				return
			}
			if !snapshots.Send(snapshot) {
				snapshots.Finish(nil)
				return
			}
			select {
			case <-snapshots.Context().Done():
				snapshots.Finish(nil)
				return
			case <-wakeUp:
			}
		}
	}()
	return snapshots, nil
}

// Get runs query once.
func (s *DocumentStore) Get(query contract.Query) (contract.Snapshot, error) {
	var documents []contract.Document
	prefix := collectionPrefix(query.Collection)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(bytes.TrimPrefix(item.Key(), prefix))
			err := item.Value(func(val []byte) error {
				record, err := DecodeRecord(val)
				if err != nil {
					return fmt.Errorf("decode %s/%s: %w", query.Collection, id, err)
				}
				documents = append(documents, contract.Document{
					Ref:  contract.DocumentRef{Collection: query.Collection, ID: id},
					Data: record,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return contract.Snapshot{}, err
	}
	return contract.Snapshot{Documents: order(documents, query), ReadTime: s.now().UTC()}, nil
}

// order mirrors the document database semantics: documents lacking the order
// field are excluded, ties are broken by id in the same direction.
func order(documents []contract.Document, query contract.Query) []contract.Document {
	if query.OrderBy != "" {
		kept := documents[:0]
		for _, d := range documents {
			if _, ok := d.Data[query.OrderBy]; ok {
				kept = append(kept, d)
			}
		}
		documents = kept
	}
	sort.SliceStable(documents, func(i, j int) bool {
		c := 0
		if query.OrderBy != "" {
			c = compareValues(documents[i].Data[query.OrderBy], documents[j].Data[query.OrderBy])
		}
		if c == 0 {
			c = strings.Compare(documents[i].Ref.ID, documents[j].Ref.ID)
		}
		if query.Direction == contract.Desc {
			return c > 0
		}
		return c < 0
	})
	if query.Limit > 0 && len(documents) > query.Limit {
		documents = documents[:query.Limit]
	}
	return documents
}

// compareValues orders values of different kinds by kind rank first.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		return compareFloat(x, toFloat(b))
	case int:
		return compareFloat(float64(x), toFloat(b))
	case int64:
		return compareFloat(float64(x), toFloat(b))
	case time.Time:
		return x.Compare(b.(time.Time))
	case string:
		return strings.Compare(x, b.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64, int, int64:
		return 2
	case time.Time:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// serverTime is strictly increasing so that creation order is never ambiguous.
func (s *DocumentStore) serverTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if !now.After(s.lastTime) {
		now = s.lastTime.Add(time.Nanosecond)
	}
	s.lastTime = now
	return now
}
