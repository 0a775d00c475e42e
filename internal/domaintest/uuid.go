package domaintest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewPlayerID returns a random guest player id
func NewPlayerID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return id.String()
}
