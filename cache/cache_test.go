package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPostListKey(t *testing.T) {
	assert.Equal(t, "posts:all", PostListKey("", ""))
	assert.Equal(t, "posts:cat:general", PostListKey("general", ""))
	assert.Equal(t, "posts:tag:go", PostListKey("", "go"))
	// Category wins when both filters are present.
	assert.Equal(t, "posts:cat:general", PostListKey("general", "go"))
}

func TestCacheDegradesWithoutRedis(t *testing.T) {
	c := New("", zap.NewNop().Sugar())
	ctx := context.Background()

	_, ok := c.GetPostList(ctx, "posts:all")
	assert.False(t, ok)

	// No-ops, must not panic.
	c.SetPostList(ctx, "posts:all", []byte("[]"))
	c.InvalidatePosts(ctx)
	c.Close()
}
