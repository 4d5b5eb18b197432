package id

import "github.com/google/uuid"

// UUIDGenerator assigns authoritative order identifiers. Client-proposed
// order numbers are display hints; identity comes from here.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
