package pricing

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for rate tables on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based rate table loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "rate-loader").Logger(),
	}
}

// Load reads a JSON rate table from filePath.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*RateTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("loading rate table")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open rate table")
		return nil, fmt.Errorf("failed to open rate table %s: %w", filePath, err)
	}
	defer file.Close()

	table, err := decodeRateTable(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read rate table")
		return nil, fmt.Errorf("rate table %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Str("tax_rate", table.TaxRate.String()).
		Int("shipping_methods", len(table.ShippingFees)).
		Msg("rate table loaded successfully")

	return table, nil
}
