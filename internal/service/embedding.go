package service

import (
	"context"
	"fmt"
	"strings"

	"caradvisor/internal/model"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// EmbeddingStore persists listing embeddings
type EmbeddingStore interface {
	ListingsMissingEmbedding(ctx context.Context, limit int) ([]model.Listing, error)
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}

// EmbeddingService maintains the listing embedding column
type EmbeddingService struct {
	store     EmbeddingStore
	embedder  Embedder
	batchSize int
	logger    *zap.Logger
}

// NewEmbeddingService creates a new embedding service. embedder may be nil
// when only externally computed embeddings are stored.
func NewEmbeddingService(store EmbeddingStore, embedder Embedder, batchSize int, logger *zap.Logger) *EmbeddingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &EmbeddingService{store: store, embedder: embedder, batchSize: batchSize, logger: logger}
}

// Update stores externally computed embeddings
func (s *EmbeddingService) Update(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	return s.store.BatchUpdateEmbeddings(ctx, items)
}

// Backfill embeds every listing that has no embedding yet. progress is
// called after each batch with the running total.
func (s *EmbeddingService) Backfill(ctx context.Context, progress func(done int)) (int, error) {
	if s.embedder == nil || !s.embedder.IsEnabled() {
		return 0, ErrAIDisabled
	}

	done := 0
	for {
		listings, err := s.store.ListingsMissingEmbedding(ctx, s.batchSize)
		if err != nil {
			return done, err
		}
		if len(listings) == 0 {
			return done, nil
		}

		texts := make([]string, len(listings))
		for i := range listings {
			texts[i] = ListingText(&listings[i])
		}

		vectors, err := s.embedder.CreateEmbeddings(ctx, texts)
		if err != nil {
			return done, eris.Wrap(err, "create embeddings")
		}

		items := make([]model.EmbeddingItem, 0, len(listings))
		for i, v := range vectors {
			if len(v) == 0 {
				continue
			}
			items = append(items, model.EmbeddingItem{ListingID: listings[i].ListingID, Embedding: v, Text: texts[i]})
		}

		success, errs := s.store.BatchUpdateEmbeddings(ctx, items)
		for _, e := range errs {
			s.logger.Warn("embedding update failed", zap.String("error", e))
		}
		if success == 0 {
			return done, eris.Errorf("no embeddings stored in batch of %d", len(listings))
		}

		done += success
		if progress != nil {
			progress(done)
		}
	}
}

// ListingText is the text embedded for a listing
func ListingText(l *model.Listing) string {
	parts := []string{l.Title(), l.Category}
	if l.BodyType != nil {
		parts = append(parts, *l.BodyType)
	}
	if l.Year != nil {
		parts = append(parts, fmt.Sprintf("%d", *l.Year))
	}
	parts = append(parts,
		fmt.Sprintf("S$%.0f", l.PriceSGD),
		fmt.Sprintf("%.0f km", l.MileageKM),
		fmt.Sprintf("%.1f years COE left", l.COELeftYears),
	)
	if l.Colour != nil {
		parts = append(parts, *l.Colour)
	}
	return strings.Join(parts, ", ")
}
