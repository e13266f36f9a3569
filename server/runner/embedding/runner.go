// Package embedding backfills hotel embeddings in the background.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stayscout/stayscout/plugin/ai"
	"github.com/stayscout/stayscout/plugin/ai/timeout"
	"github.com/stayscout/stayscout/store"
)

type Runner struct {
	store            *store.Store
	embeddingService ai.EmbeddingService
	interval         time.Duration
	batchSize        int
	model            string
}

// NewRunner creates a hotel embedding runner. Small batches keep memory
// peaks low; newly ingested hotels become searchable within one interval.
func NewRunner(store *store.Store, embeddingService ai.EmbeddingService, model string) *Runner {
	return &Runner{
		store:            store,
		embeddingService: embeddingService,
		interval:         time.Minute,
		batchSize:        8,
		model:            model,
	}
}

// Run starts the background task. It processes once immediately, then on
// every tick until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.processPendingHotels(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processPendingHotels(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce processes pending hotels once (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) {
	r.processPendingHotels(ctx)
}

func (r *Runner) processPendingHotels(ctx context.Context) {
	hotels, err := r.store.FindHotelsWithoutEmbedding(ctx, r.model, r.batchSize*20)
	if err != nil {
		slog.Error("failed to find hotels without embedding", "error", err)
		return
	}
	if len(hotels) == 0 {
		return
	}

	slog.Info("processing hotels for embedding", "count", len(hotels))

	for i := 0; i < len(hotels); i += r.batchSize {
		select {
		case <-ctx.Done():
			slog.Info("embedding processing cancelled", "processed", i, "total", len(hotels))
			return
		default:
		}

		end := i + r.batchSize
		if end > len(hotels) {
			end = len(hotels)
		}
		batch := hotels[i:end]

		if err := r.processBatch(ctx, batch); err != nil {
			slog.Error("failed to process batch", "error", err)
			continue
		}
		slog.Info("batch processed", "count", len(batch), "progress", fmt.Sprintf("%d/%d", end, len(hotels)))
	}
}

func (r *Runner) processBatch(ctx context.Context, hotels []*store.Hotel) error {
	batchCtx, cancel := context.WithTimeout(ctx, timeout.EmbeddingTimeout)
	defer cancel()

	texts := make([]string, len(hotels))
	for i, h := range hotels {
		texts[i] = Document(h)
	}

	vectors, err := r.embeddingService.EmbedBatch(batchCtx, texts)
	if err != nil {
		return err
	}

	for i, h := range hotels {
		if err := r.store.UpsertHotelEmbedding(ctx, h.ID, r.model, vectors[i]); err != nil {
			slog.Error("failed to upsert embedding", "hotelID", h.ID, "error", err)
		}
	}
	return nil
}

// Document builds the text embedded for one hotel. The same composition is
// used at ingest and never at query time, so reordering fields here
// invalidates stored vectors.
func Document(h *store.Hotel) string {
	parts := []string{h.Name, h.Description, h.Location}
	if h.Tier != nil {
		parts = append(parts, string(*h.Tier))
	}
	if len(h.Amenities) > 0 {
		parts = append(parts, strings.Join(h.Amenities, ", "))
	}
	return strings.Join(parts, ". ")
}
