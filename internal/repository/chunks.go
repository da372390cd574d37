package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// ChunkRepository persists embedded content chunks in Postgres with pgvector
// and serves session-scoped similarity queries.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// ReplaceChunks deletes any indexed chunks for the session and inserts the
// new set. Storing a session is always a full replacement, never an append.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, sessionID string, chunks []domain.ContentChunk) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM content_chunks WHERE session_id = $1`, sessionID); err != nil {
		return err
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO content_chunks
				(session_id, url, title, chunk_index, total_chunks, content, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.SessionID,
			c.URL,
			c.Title,
			c.ChunkIndex,
			c.TotalChunks,
			c.Text,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// QueryByEmbedding returns the session's chunks nearest to the query
// embedding, scored by inverse cosine distance.
func (r *ChunkRepository) QueryByEmbedding(ctx context.Context, sessionID string, embedding []float32, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, url, title, chunk_index, total_chunks, content,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM content_chunks
		 WHERE session_id = $2
		 ORDER BY score DESC
		 LIMIT $3`,
		pgvector.NewVector(embedding), sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var sc domain.ScoredChunk
		if err := rows.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.SessionID,
			&sc.Chunk.URL,
			&sc.Chunk.Title,
			&sc.Chunk.ChunkIndex,
			&sc.Chunk.TotalChunks,
			&sc.Chunk.Text,
			&sc.Score,
		); err != nil {
			return nil, err
		}
		results = append(results, sc)
	}

	return results, rows.Err()
}

// Ping verifies the database connection is alive.
func (r *ChunkRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// DeleteSession removes every indexed chunk for the session.
func (r *ChunkRepository) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM content_chunks WHERE session_id = $1`, sessionID)
	return err
}

// Stats reports the chunk count and distinct source URLs for a session.
func (r *ChunkRepository) Stats(ctx context.Context, sessionID string) (*domain.SessionStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT url, COUNT(*) FROM content_chunks WHERE session_id = $1 GROUP BY url ORDER BY url`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.SessionStats{SessionID: sessionID}
	for rows.Next() {
		var url string
		var count int
		if err := rows.Scan(&url, &count); err != nil {
			return nil, err
		}
		stats.URLs = append(stats.URLs, url)
		stats.TotalChunks += count
	}

	return stats, rows.Err()
}
