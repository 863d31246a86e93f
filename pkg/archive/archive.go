// Package archive persists drained log records to durable storage. The ring
// buffer itself is volatile and lossy; the archive is where records go when
// they must outlive the arena.
package archive

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/ringlog/pkg/codec"
	"github.com/ssargent/ringlog/pkg/levels"
)

// ArchivedRecord is the stored form of one drained record. KSUIDs are
// time-ordered, so iterating the keyspace returns records roughly in
// archival order.
type ArchivedRecord struct {
	ID         string    `json:"id"`
	Level      uint8     `json:"level"`
	LevelName  string    `json:"level_name,omitempty"`
	Errno      int32     `json:"errno"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Hint       string    `json:"hint,omitempty"`
	Position   int       `json:"position"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Archive is a pebble-backed sink for drained records.
type Archive struct {
	db *pebble.DB
}

// Open opens or creates the archive database at path.
func Open(path string) (*Archive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// Store archives one drained record and returns its assigned id.
func (a *Archive) Store(rec *codec.Record, position int) (*ksuid.KSUID, error) {
	id := ksuid.New()

	stored := ArchivedRecord{
		ID:         id.String(),
		Level:      rec.Level,
		Errno:      rec.SavedErrno,
		Message:    string(rec.Message),
		Detail:     string(rec.Detail),
		Hint:       string(rec.Hint),
		Position:   position,
		ArchivedAt: time.Now().UTC(),
	}
	if name, err := levels.ToText(int(rec.Level)); err == nil {
		stored.LevelName = name
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	if err := a.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return nil, err
	}
	return &id, nil
}

// Read fetches one archived record by id.
func (a *Archive) Read(id *ksuid.KSUID) (*ArchivedRecord, error) {
	data, closer, err := a.db.Get(id.Bytes())
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var rec ArchivedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns up to limit archived records in key order, which for KSUID
// keys approximates archival order. A limit of zero or less means no limit.
func (a *Archive) List(limit int) ([]ArchivedRecord, error) {
	iter, err := a.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []ArchivedRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var rec ArchivedRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
