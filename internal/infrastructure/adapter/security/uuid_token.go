package security

import (
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/google/uuid"
)

// UUIDTokenGenerator issues random (version 4) UUIDs as session tokens
type UUIDTokenGenerator struct{}

// NewUUIDTokenGenerator creates a token generator
func NewUUIDTokenGenerator() core.TokenGenerator {
	return UUIDTokenGenerator{}
}

// NewToken returns a new random token
func (UUIDTokenGenerator) NewToken() string {
	return uuid.NewString()
}
