package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"

	"directory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentURL(t *testing.T) {
	gw := NewHostedGateway("https://pay.example.com/checkout", "test-secret",
		"http://localhost:8080/api/v1/payments/webhook")

	payment := &models.Payment{
		Reference: "DIR-20240101120000-ABC123",
		Amount:    40000,
	}

	raw, err := gw.PaymentURL(payment)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, payment.Reference, q.Get("reference"))
	assert.Equal(t, "40000", q.Get("amount"))
	assert.Equal(t, "http://localhost:8080/api/v1/payments/webhook", q.Get("callback_url"))
	assert.NotEmpty(t, q.Get("signature"))
}

func TestVerifyWebhookSignature(t *testing.T) {
	gw := NewHostedGateway("https://pay.example.com/checkout", "test-secret", "")

	payload := []byte(`{"reference":"DIR-20240101120000-ABC123","status":"success"}`)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(payload)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, gw.VerifyWebhookSignature(payload, good))
	assert.False(t, gw.VerifyWebhookSignature(payload, "deadbeef"))
	assert.False(t, gw.VerifyWebhookSignature([]byte("tampered"), good))
}
