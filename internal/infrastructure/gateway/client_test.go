package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/payment"
)

func TestCreateCharge_SendsAuthIdempotencyAndBody(t *testing.T) {
	var got struct {
		method, path, idemKey string
		user, pass            string
		body                  createChargePayload
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.idemKey = r.Header.Get("Idempotence-Key")
		got.user, got.pass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))

		_ = json.NewEncoder(w).Encode(chargePayload{
			ID:     "pay-42",
			Status: payment.StatusPending,
			Amount: payment.Amount{Value: "250.00", Currency: "RUB"},
			Confirmation: confirmationPayload{
				Type:            "redirect",
				ConfirmationURL: "https://gateway.test/confirm/pay-42",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shop-1", "sk-test", time.Second)
	charge, err := c.CreateCharge(context.Background(), payment.CreateChargeRequest{
		Amount:         payment.Amount{Value: "250.00", Currency: "RUB"},
		ReturnURL:      "https://shop.test/api/payment/succeed",
		IdempotencyKey: "idem-1",
		Description:    "order 7",
	})

	require.NoError(t, err)
	assert.Equal(t, "pay-42", charge.ID)
	assert.Equal(t, "https://gateway.test/confirm/pay-42", charge.ConfirmationURL)
	assert.Equal(t, payment.StatusPending, charge.Status)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/payments", got.path)
	assert.Equal(t, "idem-1", got.idemKey)
	assert.Equal(t, "shop-1", got.user)
	assert.Equal(t, "sk-test", got.pass)
	assert.Equal(t, "250.00", got.body.Amount.Value)
	assert.Equal(t, "redirect", got.body.Confirmation.Type)
	assert.Equal(t, "https://shop.test/api/payment/succeed", got.body.Confirmation.ReturnURL)
	assert.True(t, got.body.Capture)
}

func TestFindCharge_ReturnsChargeState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/payments/pay-42", r.URL.Path)

		_ = json.NewEncoder(w).Encode(chargePayload{
			ID:     "pay-42",
			Status: payment.StatusSucceeded,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shop-1", "sk-test", time.Second)
	charge, err := c.FindCharge(context.Background(), "pay-42")

	require.NoError(t, err)
	assert.Equal(t, payment.StatusSucceeded, charge.Status)
}

func TestClient_ServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shop-1", "sk-test", time.Second)
	_, err := c.FindCharge(context.Background(), "pay-42")

	assert.ErrorIs(t, err, payment.ErrUnavailable)
}

func TestClient_NetworkFailureMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "shop-1", "sk-test", time.Second)
	_, err := c.FindCharge(context.Background(), "pay-42")

	assert.ErrorIs(t, err, payment.ErrUnavailable)
}

func TestClient_ClientErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such payment", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shop-1", "sk-test", time.Second)
	_, err := c.FindCharge(context.Background(), "missing")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, payment.ErrUnavailable)
	assert.Contains(t, err.Error(), "404")
}
