package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"justwatcharr/internal/config"
	"justwatcharr/internal/logging"
	"justwatcharr/internal/services"
)

const userAgent = "justwatcharr/0.1.0"

// Service defines the notification surface exposed to the reconciliation
// engine. Deliveries block through provider rate limits; a message is
// either accepted, or fails with a non-retriable error the caller logs.
type Service interface {
	NotifyAvailable(ctx context.Context, origin, title string, providers []string) error
	NotifyUnmonitored(ctx context.Context, origin, title string, filesDeleted int) error
	NotifyMonitoring(ctx context.Context, origin, title string) error
	Test(ctx context.Context) error
}

// HTTPDoer describes the HTTP client used by the Discord service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewService builds a notification service backed by a Discord channel
// when configured. When no bot token is configured, a noop implementation
// is returned. The channel credential is probed at construction; a failed
// probe is logged but does not prevent delivery attempts.
func NewService(ctx context.Context, cfg *config.Config, logger *slog.Logger) Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	token := strings.TrimSpace(cfg.Discord.BotToken)
	if token == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Discord.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	svc := &discordService{
		baseURL:   strings.TrimRight(cfg.Discord.BaseURL, "/"),
		token:     token,
		channelID: strings.TrimSpace(cfg.Discord.ChannelID),
		client:    &http.Client{Timeout: timeout},
		logger:    logger.With(logging.String(logging.FieldComponent, "discord")),
	}
	if err := svc.probe(ctx); err != nil {
		svc.logger.Warn("credential probe failed, deliveries may be rejected", logging.Error(err))
	}
	return svc
}

// NewDiscordService constructs a Discord-backed service with explicit
// dependencies. No credential probe is performed.
func NewDiscordService(baseURL, token, channelID string, client HTTPDoer, logger *slog.Logger) Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &discordService{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:     strings.TrimSpace(token),
		channelID: strings.TrimSpace(channelID),
		client:    client,
		logger:    logger.With(logging.String(logging.FieldComponent, "discord")),
	}
}

type discordService struct {
	baseURL   string
	token     string
	channelID string
	client    HTTPDoer
	logger    *slog.Logger
}

func (d *discordService) NotifyAvailable(ctx context.Context, origin, title string, providers []string) error {
	content := fmt.Sprintf("%s: Available on %s", title, strings.Join(providers, ", "))
	return d.deliver(ctx, origin, content)
}

func (d *discordService) NotifyUnmonitored(ctx context.Context, origin, title string, filesDeleted int) error {
	content := fmt.Sprintf("%s: Unmonitored, %d local file(s) deleted", title, filesDeleted)
	return d.deliver(ctx, origin, content)
}

func (d *discordService) NotifyMonitoring(ctx context.Context, origin, title string) error {
	content := fmt.Sprintf("%s: Not available, monitoring", title)
	return d.deliver(ctx, origin, content)
}

func (d *discordService) Test(ctx context.Context) error {
	return d.deliver(ctx, "justwatcharr", "Notification system test")
}

// probe validates the bot credential with a lightweight identity call.
func (d *discordService) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/users/@me", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	d.setHeaders(req)
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe credential: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("credential probe returned %d", resp.StatusCode)
	}
	return nil
}

// deliver posts one Markdown message to the operator channel. It does not
// return until the message is accepted or a non-retriable error occurs:
// rate-limit responses are retried after exactly the provider-dictated
// backoff, without cap or jitter, for as long as the context lives.
func (d *discordService) deliver(ctx context.Context, origin, content string) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", d.baseURL, d.channelID)
	body, err := json.Marshal(map[string]string{
		"content": fmt.Sprintf("**%s**: %s", origin, content),
	})
	if err != nil {
		return services.Wrap(services.ErrRemote, "discord", "encode message", "", err)
	}

	for {
		status, respBody, retryIn, err := d.post(ctx, endpoint, body)
		switch {
		case err != nil:
			d.logger.Error("delivery failed",
				logging.String("origin", origin),
				logging.String("url", endpoint),
				logging.Error(err))
			return services.Wrap(services.ErrTransport, "discord", "deliver", origin, err)
		case status == http.StatusTooManyRequests:
			d.logger.Warn("rate limited, backing off",
				logging.String("origin", origin),
				logging.Duration("retry_after", retryIn))
			if err := SleepWithContext(ctx, retryIn); err != nil {
				return services.Wrap(services.ErrRateLimited, "discord", "deliver", origin, err)
			}
		case status >= 200 && status < 300:
			return nil
		default:
			d.logger.Error("delivery rejected",
				logging.String("origin", origin),
				logging.String("url", endpoint),
				logging.Int("status", status))
			return services.Wrap(services.ErrRemote, "discord", "deliver",
				fmt.Sprintf("%s returned %d: %s", endpoint, status, strings.TrimSpace(string(respBody))), nil)
		}
	}
}

func (d *discordService) post(ctx context.Context, endpoint string, body []byte) (int, []byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("build request: %w", err)
	}
	d.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if resp.StatusCode == http.StatusTooManyRequests {
		backoff := retryAfter(resp, respBody)
		if backoff <= 0 {
			// Provider gave no usable value; a short pause beats hammering.
			backoff = time.Second
		}
		return resp.StatusCode, respBody, backoff, nil
	}
	return resp.StatusCode, respBody, 0, nil
}

func (d *discordService) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bot "+d.token)
	req.Header.Set("User-Agent", userAgent)
}

type noopService struct{}

func (noopService) NotifyAvailable(context.Context, string, string, []string) error { return nil }
func (noopService) NotifyUnmonitored(context.Context, string, string, int) error    { return nil }
func (noopService) NotifyMonitoring(context.Context, string, string) error          { return nil }
func (noopService) Test(context.Context) error                                      { return nil }
