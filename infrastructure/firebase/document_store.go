package firebase

import (
	"context"
	"errors"
	"log/slog"

	"friendly-chat/contract"
	"friendly-chat/feed"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type DocumentStore struct {
	client *firestore.Client
	log    *slog.Logger
}

func NewDocumentStore(client *firestore.Client, log *slog.Logger) *DocumentStore {
	return &DocumentStore{client: client, log: log}
}

func (s *DocumentStore) Create(ctx context.Context, collection string, record contract.Record) (contract.DocumentRef, error) {
	if err := contract.ValidateCollection(collection); err != nil {
		return contract.DocumentRef{}, err
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(record))
	if err != nil {
		return contract.DocumentRef{}, err
	}
	return contract.DocumentRef{Collection: collection, ID: ref.ID}, nil
}

func (s *DocumentStore) Set(ctx context.Context, ref contract.DocumentRef, record contract.Record) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	_, err := s.client.Collection(ref.Collection).Doc(ref.ID).Set(ctx, toFirestore(record))
	return err
}

// Query listens to the query snapshots until the feed is closed.
func (s *DocumentStore) Query(ctx context.Context, query contract.Query) (*feed.Feed[contract.Snapshot], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	q := s.buildQuery(query)
	snapshots := feed.New[contract.Snapshot](ctx, 1)
	it := q.Snapshots(snapshots.Context())

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if isEndOfStream(err) || snapshots.Context().Err() != nil {
					snapshots.Finish(nil)
					return
				}
				s.log.Warn("Live query stopped", "collection", query.Collection, "error", err)
				snapshots.Finish(err)
				return
			}
			snapshot, err := readSnapshot(query.Collection, snap)
			if err != nil {
				snapshots.Finish(err)
				return
			}
			if !snapshots.Send(snapshot) {
				snapshots.Finish(nil)
				return
			}
		}
	}()
	return snapshots, nil
}

func (s *DocumentStore) buildQuery(query contract.Query) firestore.Query {
	direction := firestore.Asc
	if query.Direction == contract.Desc {
		direction = firestore.Desc
	}
	field := query.OrderBy
	if field == "" {
		field = firestore.DocumentID
	}
	q := s.client.Collection(query.Collection).OrderBy(field, direction)
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	return q
}

func readSnapshot(collection string, snap *firestore.QuerySnapshot) (contract.Snapshot, error) {
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return contract.Snapshot{}, err
	}
	documents := make([]contract.Document, 0, len(docs))
	for _, doc := range docs {
		documents = append(documents, contract.Document{
			Ref:  contract.DocumentRef{Collection: collection, ID: doc.Ref.ID},
			Data: doc.Data(),
		})
	}
	return contract.Snapshot{Documents: documents, ReadTime: snap.ReadTime}, nil
}

func isEndOfStream(err error) bool {
	return errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled
}

func toFirestore(record contract.Record) map[string]any {
	data := make(map[string]any, len(record))
	for k, v := range record {
		if contract.IsServerTimestamp(v) {
			data[k] = firestore.ServerTimestamp
			continue
		}
		data[k] = v
	}
	return data
}
