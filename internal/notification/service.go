// Package notification posts sync summaries to a Discord webhook.
// Delivery is best effort; a failed notification never fails a sync.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Discord rejects messages longer than 2000 characters.
const maxMessageLength = 2000

type Service struct {
	httpClient *http.Client
}

func NewService() *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts message to the webhook. An empty webhook URL is a
// no-op; errors are logged and swallowed.
func (s *Service) Notify(ctx context.Context, webhookURL, message string) {
	if webhookURL == "" {
		return
	}

	if runes := []rune(message); len(runes) > maxMessageLength {
		message = string(runes[:maxMessageLength])
	}

	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		log.Printf("[Notify] failed to encode payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[Notify] failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[Notify] webhook delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Notify] webhook returned status %d", resp.StatusCode)
	}
}
