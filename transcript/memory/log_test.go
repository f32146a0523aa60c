package memory

import (
	"context"
	"testing"
	"time"

	"github.com/lyaesley/ai-embedded/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	ctx := context.Background()

	t.Run("list returns entries oldest first", func(t *testing.T) {
		log := NewLog()
		now := time.Now().UTC()

		require.NoError(t, log.Append(ctx,
			transcript.Entry{UserID: "u1", Role: "assistant", Content: "second", CreatedAt: now.Add(time.Second)},
			transcript.Entry{UserID: "u1", Role: "user", Content: "first", CreatedAt: now},
		))

		entries, err := log.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "first", entries[0].Content)
		assert.Equal(t, "second", entries[1].Content)
	})

	t.Run("entries accumulate across appends", func(t *testing.T) {
		log := NewLog()
		now := time.Now().UTC()

		require.NoError(t, log.Append(ctx, transcript.Entry{UserID: "u1", Content: "a", CreatedAt: now}))
		require.NoError(t, log.Append(ctx, transcript.Entry{UserID: "u1", Content: "b", CreatedAt: now.Add(time.Second)}))

		entries, err := log.List(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("users are isolated", func(t *testing.T) {
		log := NewLog()

		require.NoError(t, log.Append(ctx, transcript.Entry{UserID: "u1", Content: "mine"}))

		entries, err := log.List(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
