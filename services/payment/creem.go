package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CreemGateway creates checkout sessions against the Creem REST API, the
// secondary checkout provider.
type CreemGateway struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewCreemGateway returns a Creem client with a bounded request timeout.
func NewCreemGateway(apiKey, baseURL string, logger *zap.Logger) *CreemGateway {
	return &CreemGateway{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

type creemCheckoutRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type creemCheckoutResponse struct {
	CheckoutID  string `json:"checkout_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckoutSession posts a checkout to Creem and returns the hosted
// payment page URL.
func (g *CreemGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, fmt.Errorf("invalid checkout request: %w", err)
	}

	metadata := map[string]string{"order_type": string(req.OrderType)}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.BookingID != "" {
		metadata["booking_id"] = req.BookingID
	}

	body, err := json.Marshal(creemCheckoutRequest{
		Amount:      req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		Email:       req.CustomerEmail,
		Phone:       req.CustomerPhone,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal creem checkout: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build creem request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.APIKey)

	resp, err := g.HTTPClient.Do(httpReq)
	if err != nil {
		g.Logger.Error("creem checkout request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInitiationFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.Logger.Error("creem checkout returned non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("%w: creem responded %d", ErrInitiationFailed, resp.StatusCode)
	}

	var out creemCheckoutResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed creem response", ErrInitiationFailed)
	}

	return &CheckoutSession{SessionID: out.CheckoutID, CheckoutURL: out.CheckoutURL}, nil
}

// CancelSubscription cancels a Creem subscription.
func (g *CreemGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	url := fmt.Sprintf("%s/subscriptions/%s", g.BaseURL, subscriptionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build creem request: %w", err)
	}
	httpReq.Header.Set("x-api-key", g.APIKey)

	resp, err := g.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription %s: %w", subscriptionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to cancel subscription %s: creem responded %d", subscriptionID, resp.StatusCode)
	}
	return nil
}

// VerifyCreemSignature checks the creem-signature header: an HMAC-SHA256
// hex digest of the raw request body under the shared webhook secret.
func VerifyCreemSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
