package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	hc      *http.Client
	apiKey  string
	baseURL string
}

func NewResendMailer(apiKey string, timeout time.Duration) *ResendMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendMailer{
		hc:      &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: resendEndpoint,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Send posts the message and returns the provider message id.
func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Message != "" {
			return "", fmt.Errorf("email provider rejected send: %s (status=%d)", apiErr.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("email provider rejected send (status=%d)", resp.StatusCode)
	}

	var ok struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &ok); err != nil {
		return "", fmt.Errorf("decode email response: %w", err)
	}
	return ok.ID, nil
}
