package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/ai"
	"github.com/granada/granada-os/internal/catalog"
)

// Pipeline runs a source end to end: fetch the listing page, parse it
// with the source's selectors, normalize the raw records, optionally
// embed them and upsert into the catalog.
type Pipeline struct {
	Catalog  *catalog.Store
	Registry *Registry
	Embedder ai.Embedder

	logger *zap.Logger
}

func NewPipeline(store *catalog.Store, registry *Registry, embedder ai.Embedder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Catalog:  store,
		Registry: registry,
		Embedder: embedder,
		logger:   logger,
	}
}

// IngestSource runs ingestion for a single source ID from the registry.
func (p *Pipeline) IngestSource(ctx context.Context, sourceID string) (IngestionStats, error) {
	stats := IngestionStats{SourceID: sourceID}

	src, ok := p.Registry.Find(sourceID)
	if !ok {
		return stats, fmt.Errorf("unknown source: %s", sourceID)
	}
	if !src.Active {
		return stats, fmt.Errorf("source %s is not active", sourceID)
	}

	start := time.Now()
	defer func() {
		stats.DurationMS = time.Since(start).Milliseconds()
	}()

	fetcher := NewCollyFetcher(src.Fetch, p.logger)
	parser := NewHTMLListParser(src)

	p.logger.Info("starting ingestion",
		zap.String("source", sourceID),
		zap.String("url", src.BaseURL))

	doc, err := fetcher.Fetch(ctx, src.BaseURL)
	if err != nil {
		return stats, fmt.Errorf("fetch error: %w", err)
	}
	defer doc.Body.Close()

	raws, err := parser.Parse(ctx, doc.Body, doc.URL)
	if err != nil {
		return stats, fmt.Errorf("parse error: %w", err)
	}
	stats.TotalFound = len(raws)

	for _, raw := range raws {
		opp, ok := Normalize(raw)
		if !ok {
			stats.Errors++
			continue
		}

		if p.Embedder != nil {
			embedding, err := p.Embedder.GenerateEmbedding(ctx, opp.Title+"\n"+opp.Description)
			if err != nil {
				p.logger.Warn("embedding failed, saving without vector",
					zap.String("title", opp.Title), zap.Error(err))
			} else {
				opp.Embedding = embedding
			}
		}

		if err := p.Catalog.Upsert(ctx, opp); err != nil {
			p.logger.Error("failed to save opportunity",
				zap.String("title", opp.Title), zap.Error(err))
			stats.Errors++
			continue
		}
		stats.TotalSaved++
	}

	p.logger.Info("ingestion complete",
		zap.String("source", sourceID),
		zap.Int("found", stats.TotalFound),
		zap.Int("saved", stats.TotalSaved),
		zap.Int("errors", stats.Errors))

	return stats, nil
}

// IngestAll runs every active source, collecting per-source stats.
// A failing source does not stop the others.
func (p *Pipeline) IngestAll(ctx context.Context) []IngestionStats {
	var all []IngestionStats
	for _, src := range p.Registry.ActiveSources() {
		stats, err := p.IngestSource(ctx, src.ID)
		if err != nil {
			p.logger.Error("source ingestion failed",
				zap.String("source", src.ID), zap.Error(err))
			stats.Errors++
		}
		all = append(all, stats)
	}
	return all
}
