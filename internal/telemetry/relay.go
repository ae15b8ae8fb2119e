// ABOUTME: Best-effort webhook relay that forwards each log line over HTTP.
// ABOUTME: Optionally HMAC-signs the payload; never returns an error to callers.

package telemetry

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RelayTimeout bounds every delivery attempt.
const RelayTimeout = 2 * time.Second

// SignatureHeader carries the payload signature when a secret is configured.
const SignatureHeader = "X-Signature"

// RelayConfig configures a Relay.
type RelayConfig struct {
	URL    string
	Secret string
	Client *http.Client // defaults to a client with RelayTimeout
	Logger *slog.Logger // diagnostics only; must not feed back into the pipeline
}

// Relay forwards formatted lines to a webhook. There is no retry and no
// queue: a failed delivery is dropped.
type Relay struct {
	url    string
	secret []byte
	client *http.Client
	logger *slog.Logger
}

// Delivery is the outcome of one Deliver call.
type Delivery struct {
	Attempted  bool
	StatusCode int
	Err        error
}

// OK reports whether the receiver accepted the line.
func (d Delivery) OK() bool {
	return d.Attempted && d.Err == nil
}

// NewRelay returns a Relay. An empty URL yields a Relay whose Deliver is a no-op.
func NewRelay(cfg RelayConfig) *Relay {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: RelayTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Relay{
		url:    cfg.URL,
		client: client,
		logger: logger,
	}
	if cfg.Secret != "" {
		r.secret = []byte(cfg.Secret)
	}
	return r
}

// Enabled reports whether a webhook URL is configured.
func (r *Relay) Enabled() bool {
	return r != nil && r.url != ""
}

// Sign returns "sha256=<hex>" for payload under secret.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver posts line to the webhook. Failures are reported in the returned
// Delivery and logged at debug level, never raised.
func (r *Relay) Deliver(line []byte) (d Delivery) {
	if !r.Enabled() {
		return Delivery{}
	}

	defer func() {
		if p := recover(); p != nil {
			d = Delivery{Attempted: true, Err: fmt.Errorf("relay panic: %v", p)}
			r.logger.Debug("webhook delivery failed", "error", d.Err)
		}
	}()

	d = r.post(line)
	if d.Err != nil {
		r.logger.Debug("webhook delivery failed",
			"status", d.StatusCode,
			"error", d.Err,
		)
	}
	return d
}

func (r *Relay) post(line []byte) Delivery {
	ctx, cancel := context.WithTimeout(context.Background(), RelayTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(line))
	if err != nil {
		return Delivery{Attempted: true, Err: fmt.Errorf("building webhook request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if r.secret != nil {
		req.Header.Set(SignatureHeader, Sign(r.secret, line))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Delivery{Attempted: true, Err: fmt.Errorf("posting webhook: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Delivery{
			Attempted:  true,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("webhook returned status %d", resp.StatusCode),
		}
	}
	return Delivery{Attempted: true, StatusCode: resp.StatusCode}
}
