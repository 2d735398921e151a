package discount

import (
	"context"
	"fmt"

	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Store persists imported definitions. Existing codes keep their usage.
type Store interface {
	Upsert(ctx context.Context, def *model.DiscountCodeRequest) error
}

// Importer loads definition files and writes them to the store.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewImporter creates an importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "discount-importer").Logger(),
	}
}

// Import loads all files concurrently, then upserts the definitions in file
// order. A code defined in several files takes its last definition. It
// returns the number of distinct codes written.
func (im *Importer) Import(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	results := make([][]model.DiscountCodeRequest, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			defs, err := im.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load discount code file %s: %w", path, err)
			}
			results[i] = defs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		im.logger.Error().Err(err).Msg("discount code import aborted")
		return 0, err
	}

	merged := make(map[string]model.DiscountCodeRequest)
	var order []string
	for _, defs := range results {
		for _, def := range defs {
			if _, seen := merged[def.Code]; !seen {
				order = append(order, def.Code)
			}
			merged[def.Code] = def
		}
	}

	for _, code := range order {
		def := merged[code]
		if err := im.store.Upsert(ctx, &def); err != nil {
			return 0, fmt.Errorf("failed to import discount code %s: %w", code, err)
		}
	}

	im.logger.Info().
		Int("files", len(paths)).
		Int("codes", len(order)).
		Msg("discount codes imported")

	return len(order), nil
}
