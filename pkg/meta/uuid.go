package meta

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// NewUUID returns a fresh random UUID string. Used for case identifiers,
// where uniqueness is the only requirement.
func NewUUID() string {
	return uuid.NewString()
}

// UUIDFromString derives a deterministic UUID from an arbitrary string by
// hashing it with MD5. Same input always yields the same UUID. Used for
// realization, iteration and aggregation identifiers so that re-running the
// same export or aggregation reproduces the same ids.
func UUIDFromString(s string) string {
	sum := md5.Sum([]byte(s))
	u, err := uuid.FromBytes(sum[:])
	if err != nil {
		// 16 bytes can always form a UUID; this cannot happen.
		panic(err)
	}
	return u.String()
}
