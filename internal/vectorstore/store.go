// Package vectorstore keeps knowledge-base documents and their embeddings in
// SQLite and answers nearest-neighbour queries by cosine similarity.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"quill/internal/domain"
)

// Store persists documents and their embedding vectors. KNN search decodes
// every stored vector and ranks in memory; the knowledge bases quill targets
// are small enough that an index is not worth the dependency.
type Store struct {
	db *sql.DB
}

// New creates a Store and initializes the schema.
func New(conn *sql.DB) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("db must not be nil")
	}
	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("vectorstore migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Add stores a document with its embedding vector and returns the new ID.
func (s *Store) Add(ctx context.Context, content string, embedding []float64) (int64, error) {
	if content == "" {
		return 0, fmt.Errorf("content must not be empty")
	}
	if len(embedding) == 0 {
		return 0, fmt.Errorf("embedding must not be empty")
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (content, embedding) VALUES (?, ?)",
		content, EncodeEmbedding(embedding))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// Search returns the topK documents most similar to the query embedding,
// sorted by cosine similarity descending.
func (s *Store) Search(ctx context.Context, embedding []float64, topK int) ([]domain.Document, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding must not be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, content, embedding, created_at FROM documents")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Document
	for rows.Next() {
		var (
			doc       domain.Document
			blob      []byte
			createdAt time.Time
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &blob, &createdAt); err != nil {
			return nil, err
		}
		doc.CreatedAt = createdAt
		doc.Score = CosineSimilarity(embedding, DecodeEmbedding(blob))
		candidates = append(candidates, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}

// EncodeEmbedding serializes a vector as little-endian float64 bytes.
func EncodeEmbedding(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// DecodeEmbedding reverses EncodeEmbedding. Trailing partial values are dropped.
func DecodeEmbedding(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
