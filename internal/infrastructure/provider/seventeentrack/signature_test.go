package seventeentrack

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

const testKey = "test-api-key"

func TestVerifyWebhook_BodySign(t *testing.T) {
	body, err := SampleWebhook(EventTrackingUpdated, "RB123456789CN", testKey, time.Date(2024, 3, 4, 9, 27, 0, 0, time.UTC))
	require.NoError(t, err)

	wh, err := VerifyWebhook(body, http.Header{}, testKey)
	require.NoError(t, err)
	assert.Equal(t, EventTrackingUpdated, wh.Event)
	assert.Equal(t, "RB123456789CN", wh.Number)
	assert.True(t, wh.CarriesTracking())
	assert.Contains(t, wh.Data, "track")
}

func TestVerifyWebhook_KeepsKeyOrderAndWhitespace(t *testing.T) {
	data := `{"number":"RR1","track":{"z1":[]}}`
	sign := Sign("TRACKING_STOPPED", []byte(data), testKey)
	body := []byte(`{"event": "TRACKING_STOPPED",
		"data": {"number": "RR1", "track": {"z1": []}}}`)

	h := http.Header{}
	h.Set("sign", sign)
	wh, err := VerifyWebhook(body, h, testKey)
	require.NoError(t, err)
	assert.Equal(t, "RR1", wh.Number)
}

func TestVerifyWebhook_HeaderVariants(t *testing.T) {
	data := `{"number":"RR1"}`
	body := []byte(`{"event":"TRACKING_UPDATED","data":` + data + `}`)
	sign := Sign("TRACKING_UPDATED", []byte(data), testKey)

	h := http.Header{}
	h.Set("X-17Track-Sign", sign)
	_, err := VerifyWebhook(body, h, testKey)
	assert.NoError(t, err)
}

func TestVerifyWebhook_RawBodySign(t *testing.T) {
	body := []byte(`{"event":"TRACKING_UPDATED","data":{"number":"RR1"}}`)
	h := http.Header{}
	h.Set("sign", sha256Hex(string(body)+"/"+testKey))

	_, err := VerifyWebhook(body, h, testKey)
	assert.NoError(t, err)
}

func TestVerifyWebhook_Rejects(t *testing.T) {
	good, err := SampleWebhook(EventTrackingUpdated, "RR1", testKey, time.Now())
	require.NoError(t, err)

	_, err = VerifyWebhook(good, http.Header{}, "other-key")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = VerifyWebhook([]byte(`{"event":"TRACKING_UPDATED","data":{}}`), http.Header{}, testKey)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = VerifyWebhook([]byte(`{not json`), http.Header{}, testKey)
	assert.True(t, errors.Is(err, ErrMalformedWebhook))
}

func TestWebhook_CarriesTracking(t *testing.T) {
	assert.False(t, (&Webhook{Event: "TRACKING_REGISTERED"}).CarriesTracking())
	assert.True(t, (&Webhook{Event: EventTrackingStopped}).CarriesTracking())
}
