package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSigner(t *testing.T) {
	assert.Nil(t, NewSessionSigner("", time.Hour))

	signer := NewSessionSigner("s3cret", time.Hour)
	token, err := signer.Issue(7, "bob")
	require.NoError(t, err)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "bob", claims.Name)
	assert.Equal(t, "7", claims.Subject)

	other := NewSessionSigner("different", time.Hour)
	_, err = other.Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidSession))

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = signer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestNilCacheNeverHits(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.SetJSON(ctx, "k", []int{1})
	var out []int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.Invalidate(ctx, "k")
	assert.NoError(t, c.Close())
}
