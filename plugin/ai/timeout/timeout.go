// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

const (
	// QueryTimeout bounds one full search request, including the parse,
	// the embedding call and retrieval.
	QueryTimeout = 30 * time.Second

	// ChatTimeout bounds a single LLM chat call.
	ChatTimeout = 20 * time.Second

	// EmbeddingTimeout bounds a single embedding batch.
	EmbeddingTimeout = 30 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
