package discount

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads a gzipped JSON-lines file of code definitions.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.DiscountCodeRequest, error)
}

// fileLoader implements Loader for the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based definition loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "discount-loader").Logger(),
	}
}

// Load reads a gzipped definition file. Blank lines are skipped.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.DiscountCodeRequest, error) {
	l.logger.Info().Str("file", path).Msg("loading discount code file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open discount code file")
		return nil, fmt.Errorf("failed to open discount code file %s: %w", path, err)
	}
	defer file.Close()

	defs, err := decodeDefinitions(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read discount code file")
		return nil, fmt.Errorf("failed to read discount code file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes_loaded", len(defs)).
		Msg("discount code file loaded")

	return defs, nil
}

// decodeDefinitions reads gzipped JSON lines from r.
func decodeDefinitions(ctx context.Context, r io.Reader) ([]model.DiscountCodeRequest, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var defs []model.DiscountCodeRequest
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var def model.DiscountCodeRequest
		if err := json.Unmarshal([]byte(line), &def); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := ValidateDefinition(&def); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		defs = append(defs, def)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return defs, nil
}
