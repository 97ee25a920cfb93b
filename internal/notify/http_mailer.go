package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPMailer posts messages as JSON to a transactional mail provider.
type HTTPMailer struct {
	client *http.Client
	url    string
	apiKey string
	from   string
	logger *slog.Logger
}

func NewHTTPMailer(url, apiKey, from string, timeout time.Duration, logger *slog.Logger) *HTTPMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPMailer{
		client: &http.Client{Timeout: timeout},
		url:    url,
		apiKey: apiKey,
		from:   from,
		logger: logger,
	}
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	reqID := uuid.New().String()
	start := time.Now()

	payload := struct {
		From string `json:"from"`
		Message
	}{From: m.from, Message: msg}
	bs, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(bs))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", reqID)
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Error("mail.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			m.logger.Warn("mail.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	m.logger.Info("mail.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}
