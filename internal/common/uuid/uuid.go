package uuid

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID
type UUID = uuid.UUID

// New returns a new version 7 UUID. Ids handed out by the cloud emulator are
// time ordered, so listing in id order is listing in creation order.
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// NewString returns New().String()
func NewString() string {
	return New().String()
}

// Parse parses a UUID string
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsUUIDv7 checks if the given UUID is a valid UUIDv7
func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}

// CreatedAt extracts the timestamp from a UUIDv7.
func CreatedAt(u UUID) time.Time {
	tsMillis := binary.BigEndian.Uint64(u[0:8]) >> 16 // top 48 bits
	return time.UnixMilli(int64(tsMillis))
}

// Nil is the zero UUID
var Nil = uuid.Nil
