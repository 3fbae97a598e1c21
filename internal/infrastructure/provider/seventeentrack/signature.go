package seventeentrack

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// Webhook event names that carry tracking data.
const (
	EventTrackingUpdated = "TRACKING_UPDATED"
	EventTrackingStopped = "TRACKING_STOPPED"
)

var ErrMalformedWebhook = errors.New("malformed webhook body")

// Webhook is a verified provider notification.
type Webhook struct {
	Event  string
	Number string
	Data   map[string]any
}

// CarriesTracking reports whether the event should reach the pipeline.
func (w *Webhook) CarriesTracking() bool {
	return w.Event == EventTrackingUpdated || w.Event == EventTrackingStopped
}

type webhookBody struct {
	Sign  string          `json:"sign"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// VerifyWebhook decodes body and checks its signature against apiKey.
//
// The expected sign is sha256_hex(event + "/" + compact(data) + "/" + apiKey),
// where compact(data) keeps the key order of the request. The sign is read
// from the "sign" or "X-17Track-Sign" header first, then from the body. A sign
// over the whole raw body (sha256_hex(body + "/" + apiKey)) is accepted too.
func VerifyWebhook(body []byte, header http.Header, apiKey string) (*Webhook, error) {
	var wb webhookBody
	if err := sonic.Unmarshal(body, &wb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	sign := strings.TrimSpace(header.Get("sign"))
	if sign == "" {
		sign = strings.TrimSpace(header.Get("X-17Track-Sign"))
	}
	if sign == "" {
		sign = strings.TrimSpace(wb.Sign)
	}
	if wb.Event == "" || sign == "" {
		return nil, fmt.Errorf("%w: missing sign or event", domain.ErrInvalidSignature)
	}

	data, err := compactData(wb.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	if !signMatches(sign, Sign(wb.Event, data, apiKey)) &&
		!signMatches(sign, sha256Hex(string(bytes.TrimSpace(body))+"/"+apiKey)) {
		return nil, domain.ErrInvalidSignature
	}

	var decoded map[string]any
	if err := sonic.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: data is not an object", ErrMalformedWebhook)
	}
	if decoded == nil {
		decoded = map[string]any{}
	}
	number, _ := decoded["number"].(string)

	return &Webhook{Event: wb.Event, Number: strings.TrimSpace(number), Data: decoded}, nil
}

// Sign computes the webhook sign of event over compact data.
func Sign(event string, data []byte, apiKey string) string {
	return sha256Hex(event + "/" + string(data) + "/" + apiKey)
}

// SampleWebhook builds a signed TRACKING_UPDATED-style body for number with
// three customs milestones in the hour starting at at.
func SampleWebhook(event, number, apiKey string, at time.Time) ([]byte, error) {
	hour := at.UTC().Truncate(time.Hour)
	data := map[string]any{
		"number": number,
		"track": map[string]any{
			"z1": []any{
				map[string]any{"a": hour.Format(time.RFC3339), "z": "Presented to customs"},
				map[string]any{"a": hour.Add(15 * time.Minute).Format(time.RFC3339), "z": "Customs clearance information required"},
				map[string]any{"a": hour.Add(45 * time.Minute).Format(time.RFC3339), "z": "Released from customs"},
			},
		},
	}
	raw, err := sonic.ConfigStd.Marshal(data)
	if err != nil {
		return nil, err
	}
	return sonic.ConfigStd.Marshal(map[string]any{
		"sign":  Sign(event, raw, apiKey),
		"event": event,
		"data":  json.RawMessage(raw),
	})
}

func compactData(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func signMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(got)), []byte(want)) == 1
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
