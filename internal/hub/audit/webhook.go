package audit

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	webhookIssuer   = "hub"
	webhookTokenTTL = 5 * time.Minute
)

// WebhookSink POSTs each event as JSON to URL. When Secret is set every
// request carries an HS256 JWT in the Authorization header binding the event
// id, kind and body digest, so receivers can verify the origin.
type WebhookSink struct {
	URL    string
	Secret []byte
	Client *http.Client
}

// WebhookClaims are the claims of the delivery JWT.
type WebhookClaims struct {
	EventID    string `json:"event_id"`
	Kind       Kind   `json:"kind"`
	BodySHA256 string `json:"body_sha256"`
	jwt.RegisteredClaims
}

func (s WebhookSink) Send(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("audit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if len(s.Secret) > 0 {
		signed, err := s.sign(e, body, time.Now())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+signed)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("audit: deliver event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("audit: webhook responded %d", resp.StatusCode)
	}
	return nil
}

func (s WebhookSink) sign(e Event, body []byte, now time.Time) (string, error) {
	claims := WebhookClaims{
		EventID:    e.ID,
		Kind:       e.Kind,
		BodySHA256: bodyDigest(body),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        e.ID,
			Issuer:    webhookIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(webhookTokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("audit: sign delivery: %w", err)
	}
	return signed, nil
}

// VerifyWebhook checks a delivery made by WebhookSink and returns the event.
// Receivers call it with the shared secret.
func VerifyWebhook(r *http.Request, secret []byte) (Event, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return Event{}, errors.New("audit: missing delivery token")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return Event{}, fmt.Errorf("audit: read body: %w", err)
	}

	claims := &WebhookClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(webhookIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return Event{}, fmt.Errorf("audit: invalid delivery token: %w", err)
	}

	if claims.BodySHA256 != bodyDigest(body) {
		return Event{}, errors.New("audit: body does not match delivery token")
	}

	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("audit: decode event: %w", err)
	}
	if e.ID != claims.EventID || e.Kind != claims.Kind {
		return Event{}, errors.New("audit: event does not match delivery token")
	}
	return e, nil
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
