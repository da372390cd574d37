package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

func TestMemoryContextStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Hour)

	docs := []*domain.ExtractedDocument{
		domain.NewExtractedDocument("https://a.example", "A", "alpha content here"),
	}
	require.NoError(t, store.SetDocuments(ctx, "s1", docs))

	got, err := store.GetDocuments(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.example", got[0].URL)
}

func TestMemoryContextStore_UnknownSessionIsEmpty(t *testing.T) {
	store := NewMemoryContextStore(time.Hour)

	got, err := store.GetDocuments(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryContextStore_ReplaceSemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Hour)

	first := []*domain.ExtractedDocument{domain.NewExtractedDocument("https://a.example", "A", "old body")}
	second := []*domain.ExtractedDocument{domain.NewExtractedDocument("https://b.example", "B", "new body")}

	require.NoError(t, store.SetDocuments(ctx, "s1", first))
	require.NoError(t, store.SetDocuments(ctx, "s1", second))

	got, err := store.GetDocuments(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://b.example", got[0].URL)
}

func TestMemoryContextStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.SetDocuments(ctx, "s1", []*domain.ExtractedDocument{
		domain.NewExtractedDocument("https://a.example", "A", "body text"),
	}))

	current = current.Add(2 * time.Minute)

	got, err := store.GetDocuments(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Equal(t, 1, store.Sweep())
}

func TestMemoryContextStore_History(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Hour)

	for i, q := range []string{"first?", "second?", "third?"} {
		entry := domain.QAEntry{
			Question:  q,
			Answer:    "answer",
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.AppendQA(ctx, "s1", entry))
	}

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first?", history[0].Question)
	assert.Equal(t, "third?", history[2].Question)
}

func TestMemoryContextStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Hour)

	require.NoError(t, store.SetDocuments(ctx, "s1", []*domain.ExtractedDocument{
		domain.NewExtractedDocument("https://a.example", "A", "body"),
	}))
	require.NoError(t, store.AppendQA(ctx, "s1", domain.QAEntry{Question: "q", Answer: "a"}))
	require.NoError(t, store.Clear(ctx, "s1"))

	docs, _ := store.GetDocuments(ctx, "s1")
	history, _ := store.History(ctx, "s1")
	assert.Empty(t, docs)
	assert.Empty(t, history)
}

func TestMemoryContextStore_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Hour)

	var wg sync.WaitGroup
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.SetDocuments(ctx, id, []*domain.ExtractedDocument{
					domain.NewExtractedDocument("https://"+id+".example", id, "body for "+id),
				})
				_ = store.AppendQA(ctx, id, domain.QAEntry{Question: "q", Answer: "a"})
				_, _ = store.GetDocuments(ctx, id)
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		docs, err := store.GetDocuments(ctx, id)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "https://"+id+".example", docs[0].URL)
	}
}
