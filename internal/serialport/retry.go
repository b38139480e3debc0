package serialport

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"
)

// OpenWithRetry calls open up to attempts times, paced by rl, and returns
// the first port that opens.
func OpenWithRetry(ctx context.Context, rl ratelimit.Limiter, attempts int, log zerolog.Logger, open func() (*Port, error)) (*Port, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rl.Take()
		p, err := open()
		if err == nil {
			return p, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i).Int("attempts", attempts).Msg("serial open failed")
	}
	return nil, fmt.Errorf("open failed after %d attempts: %w", attempts, lastErr)
}
