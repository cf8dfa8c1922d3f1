package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time, so ids of
// notifications, events and sessions double as a stable ordering key.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
