package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type rateLimitBody struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

// retryAfter extracts the provider-dictated backoff from a 429 response:
// the JSON retry_after field in seconds, falling back to the Retry-After
// header. Zero means the provider gave no usable value.
func retryAfter(resp *http.Response, body []byte) time.Duration {
	var decoded rateLimitBody
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.RetryAfter > 0 {
		return time.Duration(decoded.RetryAfter * float64(time.Second))
	}
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return 0
}
