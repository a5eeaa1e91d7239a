package fetch

import (
	"math/rand"
	"time"
)

const maxBackoff = 2 * time.Minute

func calculateBackoff(retryCount int, baseDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << uint(retryCount))

	jitter := time.Duration(rand.Float64() * float64(delay) * 0.2) // +/- 10%
	finalDelay := delay + jitter - (time.Duration(float64(delay) * 0.1))

	if finalDelay > maxBackoff {
		finalDelay = maxBackoff
	}

	return finalDelay
}
