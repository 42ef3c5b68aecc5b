package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"directory-service/internal/models"
)

// GatewayClient is the external payment-processor collaborator. The
// processor hosts the payment page and later reports the outcome through
// the webhook endpoint; this service only builds the signed redirect URL
// and checks webhook signatures.
type GatewayClient interface {
	PaymentURL(payment *models.Payment) (string, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// HostedGateway signs requests with a shared secret
type HostedGateway struct {
	baseURL     string
	secret      string
	callbackURL string
}

// NewHostedGateway creates a gateway client for the configured processor
func NewHostedGateway(baseURL, secret, callbackURL string) *HostedGateway {
	return &HostedGateway{
		baseURL:     baseURL,
		secret:      secret,
		callbackURL: callbackURL,
	}
}

// PaymentURL builds the hosted checkout URL for a pending payment
func (g *HostedGateway) PaymentURL(payment *models.Payment) (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid gateway base URL: %w", err)
	}

	q := u.Query()
	q.Set("reference", payment.Reference)
	q.Set("amount", strconv.FormatInt(payment.Amount, 10))
	q.Set("callback_url", g.callbackURL)
	q.Set("signature", g.sign(payment.Reference, payment.Amount))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// VerifyWebhookSignature checks the processor's signature over the raw body
func (g *HostedGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *HostedGateway) sign(reference string, amount int64) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	fmt.Fprintf(mac, "%s|%d", reference, amount)
	return hex.EncodeToString(mac.Sum(nil))
}
