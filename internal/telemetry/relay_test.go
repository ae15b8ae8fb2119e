// ABOUTME: Tests for the webhook relay.
// ABOUTME: Verifies signatures, headers and that every failure mode is swallowed.

package telemetry

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method      string
	contentType string
	signature   string
	hasSig      bool
	body        []byte
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var got []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, hasSig := r.Header[SignatureHeader]
		mu.Lock()
		got = append(got, capturedRequest{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			signature:   r.Header.Get(SignatureHeader),
			hasSig:      hasSig,
			body:        body,
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), got...)
	}
}

func TestSign_MatchesIndependentHMAC(t *testing.T) {
	secret := []byte("s3cr3t")
	payload := []byte(`{"timestamp":"2026-01-01T00:00:00.000000Z","level":"INFO","logger":"x","message":"m"}`)

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign(secret, payload))
}

func TestRelay_DisabledIsNoop(t *testing.T) {
	r := NewRelay(RelayConfig{})
	assert.False(t, r.Enabled())

	d := r.Deliver([]byte(`{}`))
	assert.False(t, d.Attempted)
	assert.NoError(t, d.Err)
}

func TestRelay_PostsExactBytesWithSignature(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusOK)
	r := NewRelay(RelayConfig{URL: srv.URL, Secret: "shared"})

	line := []byte(`{"message":"тест","level":"INFO"}`)
	d := r.Deliver(line)
	require.True(t, d.OK(), "delivery error: %v", d.Err)

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "application/json; charset=utf-8", got[0].contentType)
	assert.Equal(t, line, got[0].body)
	assert.Equal(t, Sign([]byte("shared"), line), got[0].signature)
}

func TestRelay_OmitsSignatureWithoutSecret(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusNoContent)
	r := NewRelay(RelayConfig{URL: srv.URL})

	d := r.Deliver([]byte(`{}`))
	require.True(t, d.OK())

	got := requests()
	require.Len(t, got, 1)
	assert.False(t, got[0].hasSig)
}

func TestRelay_NonSuccessStatusIsReportedNotRaised(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusInternalServerError)
	r := NewRelay(RelayConfig{URL: srv.URL})

	d := r.Deliver([]byte(`{}`))
	assert.True(t, d.Attempted)
	assert.Equal(t, http.StatusInternalServerError, d.StatusCode)
	assert.Error(t, d.Err)
	assert.False(t, d.OK())
}

func TestRelay_MalformedURL(t *testing.T) {
	r := NewRelay(RelayConfig{URL: "://not a url"})

	var d Delivery
	assert.NotPanics(t, func() { d = r.Deliver([]byte(`{}`)) })
	assert.Error(t, d.Err)
}

func TestRelay_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewRelay(RelayConfig{URL: url})
	d := r.Deliver([]byte(`{}`))
	assert.Error(t, d.Err)
}

func TestRelay_TimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewRelay(RelayConfig{
		URL:    srv.URL,
		Client: &http.Client{Timeout: 100 * time.Millisecond},
	})

	start := time.Now()
	d := r.Deliver([]byte(`{}`))
	assert.Error(t, d.Err)
	assert.Less(t, time.Since(start), RelayTimeout+time.Second)
}
