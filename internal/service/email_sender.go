package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askthebridge/bridge/internal/config"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
)

const defaultBrevoBaseURL = "https://api.brevo.com"

// EmailSender delivers transactional mail. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type brevoSender struct {
	cfg    config.MailConfig
	client *http.Client
}

func NewEmailSender(cfg config.MailConfig) EmailSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBrevoBaseURL
	}
	return &brevoSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress      `json:"sender"`
	To          []brevoAddress    `json:"to"`
	ReplyTo     *brevoAddress     `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	TextContent string            `json:"textContent"`
	Headers     map[string]string `json:"headers,omitempty"`
}

func (s *brevoSender) Send(ctx context.Context, to, toName, subject, textBody string) error {
	if s.cfg.APIKey == "" || s.cfg.FromEmail == "" {
		return appErr.ErrInvalid
	}
	// Unique ref per send keeps mail clients from threading unrelated
	// notifications together.
	refBytes := make([]byte, 6)
	_, _ = rand.Read(refBytes)
	ref := hex.EncodeToString(refBytes)

	body := brevoRequest{
		Sender:      brevoAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		To:          []brevoAddress{{Email: to, Name: toName}},
		Subject:     fmt.Sprintf("%s [Ref %s]", subject, ref),
		TextContent: fmt.Sprintf("%s\n\nReference ID: %s", textBody, ref),
		Headers: map[string]string{
			"X-Entity-Ref-ID": ref,
		},
	}
	if s.cfg.ReplyEmail != "" {
		body.ReplyTo = &brevoAddress{Email: s.cfg.ReplyEmail}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/v3/smtp/email"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail request failed: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return nil
}
