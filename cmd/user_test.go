package cmd

import (
	"context"
	"testing"

	"audiochan/internal/testdb"
	"audiochan/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	users := repository.NewGormStore(testdb.New(t)).Users()
	ctx := context.Background()

	u, err := createUser(ctx, users, " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Positive(t, u.ID)

	_, err = createUser(ctx, users, "ALICE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `username "alice" is already taken`)
}
