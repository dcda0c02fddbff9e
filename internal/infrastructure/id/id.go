package id

import "github.com/google/uuid"

// Generator yields unique identifiers for audit entries and requests.
type Generator interface {
	New() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a Generator producing random UUIDv4 strings.
func NewUUIDGenerator() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) New() string {
	return uuid.NewString()
}
