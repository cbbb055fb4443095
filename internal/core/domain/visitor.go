package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// VisitorRecord is one row of visit accounting, keyed by a salted hash of the
// caller's source address. Records are only ever inserted or incremented,
// never deleted.
type VisitorRecord struct {
	IPHash      string
	VisitCount  int32
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// VisitStats is the per-request result of recording a visit. None of it is
// persisted; the flags are derived relative to the state of the visitors
// table at the time of the call.
type VisitStats struct {
	IsFirstVisit        bool
	IsFirstOfDay        bool
	TotalUniqueVisitors int64
	TodayVisitors       int64
}

// HashVisitorIdentity derives the storage key for a caller identity. The salt
// is a static application constant shared by all records: this is a
// privacy-by-obscurity measure so raw addresses never touch the database, not
// a cryptographic anonymization boundary.
func HashVisitorIdentity(identity, salt string) string {
	sum := sha256.Sum256([]byte(identity + salt))
	return hex.EncodeToString(sum[:])
}
