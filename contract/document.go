package contract

import (
	"fmt"
	"strings"
	"time"

	"friendly-chat/errors"
)

// Record is the field map of a document.
type Record map[string]any

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's clock when the record is written.
var ServerTimestamp = serverTimestamp{}

func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

func (r Record) Time(field string) time.Time {
	t, _ := r[field].(time.Time)
	return t
}

type DocumentRef struct {
	Collection string
	ID         string
}

func (r DocumentRef) Path() string {
	return r.Collection + "/" + r.ID
}

func (r DocumentRef) Validate() error {
	if err := ValidateCollection(r.Collection); err != nil {
		return err
	}
	if r.ID == "" || strings.Contains(r.ID, "/") {
		return fmt.Errorf("%w: document id %q", errors.ErrInvalidPath, r.ID)
	}
	return nil
}

func ValidateCollection(collection string) error {
	if collection == "" || strings.Contains(collection, "/") {
		return fmt.Errorf("%w: collection %q", errors.ErrInvalidPath, collection)
	}
	return nil
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Query selects documents of one collection.
// An empty OrderBy orders by document id, a zero Limit returns everything.
type Query struct {
	Collection string
	OrderBy    string
	Direction  Direction
	Limit      int
}

func (q Query) Validate() error {
	if err := ValidateCollection(q.Collection); err != nil {
		return err
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", errors.ErrInvalidQuery, q.Limit)
	}
	return nil
}

type Document struct {
	Ref  DocumentRef
	Data Record
}

// Snapshot is the result set of a query at a point in time.
type Snapshot struct {
	Documents []Document
	ReadTime  time.Time
}

type BlobHandle struct {
	Bucket string
	Path   string
	Size   int64
}
