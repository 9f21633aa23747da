package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcatalog "storefront/internal/application/catalog"
	appform "storefront/internal/application/form"
	"storefront/internal/application/reconcile"
	"storefront/internal/domain/payment"
	"storefront/internal/infrastructure/notifier"
	"storefront/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubGateway serves charges from memory so the full HTTP stack can run
// against real sqlite storage without a payment service.
type stubGateway struct {
	mu      sync.Mutex
	next    int
	charges map[string]*payment.Charge
	err     error
}

func (g *stubGateway) CreateCharge(_ context.Context, _ payment.CreateChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.next++
	id := "pay-" + strconv.Itoa(g.next)
	c := &payment.Charge{ID: id, ConfirmationURL: "https://gateway.test/" + id, Status: payment.StatusPending}
	g.charges[id] = c
	return c, nil
}

func (g *stubGateway) FindCharge(_ context.Context, id string) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	c, ok := g.charges[id]
	if !ok {
		return nil, payment.ErrUnavailable
	}
	cp := *c
	return &cp, nil
}

type testServer struct {
	router  *gin.Engine
	gateway *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	products := storage.NewProductRepository(db)
	forms := storage.NewFormRepository(db)
	txs := storage.NewTransactionRepository(db)
	ldg := storage.NewLedger(db)
	gw := &stubGateway{charges: map[string]*payment.Charge{}}

	engine := reconcile.New(forms, products, txs, ldg, gw,
		notifier.NewLog(nil), nil, nil, "https://shop.test/api/payment/succeed")

	h := NewHandler(engine, appform.NewService(forms, products, nil), appcatalog.NewService(products, nil))
	router := NewRouter(h, nil, RouterOptions{Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})})

	return &testServer{router: router, gateway: gw}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) createProduct(t *testing.T, quantity int64) uint {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/products", gin.H{
		"title":        "Sneakers",
		"price_amount": 12500,
		"quantity":     quantity,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[struct {
		ID uint `json:"id"`
	}](t, rec).ID
}

func (s *testServer) createForm(t *testing.T, productID uint, qty int64) uint {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/forms", gin.H{
		"contact": gin.H{
			"name": "Ivan", "email": "ivan@example.com", "phone_number": "+79001234567",
			"city": "Moscow", "street": "Tverskaya", "house": "1",
		},
		"line_items": []gin.H{{"product_id": productID, "quantity": qty}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[struct {
		ID uint `json:"id"`
	}](t, rec).ID
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProducts_CRUD(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, 7)

	path := "/api/products/" + strconv.FormatUint(uint64(id), 10)

	rec := s.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sneakers")

	rec = s.do(t, http.MethodPut, path, gin.H{
		"title": "Boots", "price_amount": 15000, "quantity": 3,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	got := decode[struct {
		Title    string `json:"title"`
		Quantity int64  `json:"quantity"`
	}](t, rec)
	assert.Equal(t, "Boots", got.Title)
	assert.Equal(t, int64(3), got.Quantity)

	rec = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_InvalidPayload(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/products", gin.H{"title": "Free", "price_amount": 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForms_CreateRejectedWhenStockTooLow(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 2)

	rec := s.do(t, http.MethodPost, "/api/forms", gin.H{
		"contact": gin.H{
			"name": "Ivan", "email": "ivan@example.com", "phone_number": "+79001234567",
			"city": "Moscow", "street": "Tverskaya", "house": "1",
		},
		"line_items": []gin.H{{"product_id": productID, "quantity": 5}},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestForms_MissingContactRejected(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 2)

	rec := s.do(t, http.MethodPost, "/api/forms", gin.H{
		"contact":    gin.H{"name": "Ivan"},
		"line_items": []gin.H{{"product_id": productID, "quantity": 1}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPay_ReturnsPaymentLink(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 5)
	formID := s.createForm(t, productID, 2)

	rec := s.do(t, http.MethodPost, "/api/pay", gin.H{"form_id": formID})

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		PaymentID   string `json:"payment_id"`
		PaymentLink string `json:"payment_link"`
	}](t, rec)
	assert.NotEmpty(t, got.PaymentID)
	assert.Contains(t, got.PaymentLink, "https://gateway.test/")
}

func TestPay_UnknownForm(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/pay", gin.H{"form_id": 99})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPay_GatewayDown(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 5)
	formID := s.createForm(t, productID, 1)
	s.gateway.err = payment.ErrUnavailable

	rec := s.do(t, http.MethodPost, "/api/pay", gin.H{"form_id": formID})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPaymentStatus_SucceededSettlesOrder(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 5)
	formID := s.createForm(t, productID, 2)

	rec := s.do(t, http.MethodPost, "/api/pay", gin.H{"form_id": formID})
	require.Equal(t, http.StatusOK, rec.Code)
	paymentID := decode[struct {
		PaymentID string `json:"payment_id"`
	}](t, rec).PaymentID

	s.gateway.charges[paymentID].Status = payment.StatusSucceeded

	rec = s.do(t, http.MethodGet, "/api/payment/status?payment_id="+paymentID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payment.StatusSucceeded, decode[struct {
		Status string `json:"status"`
	}](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/products/"+strconv.FormatUint(uint64(productID), 10), nil)
	assert.Equal(t, int64(3), decode[struct {
		Quantity int64 `json:"quantity"`
	}](t, rec).Quantity)
}

func TestPaymentRefund_RestoresStock(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 5)
	formID := s.createForm(t, productID, 2)

	rec := s.do(t, http.MethodPost, "/api/pay", gin.H{"form_id": formID})
	require.Equal(t, http.StatusOK, rec.Code)
	paymentID := decode[struct {
		PaymentID string `json:"payment_id"`
	}](t, rec).PaymentID

	s.gateway.charges[paymentID].Status = payment.StatusSucceeded
	rec = s.do(t, http.MethodGet, "/api/payment/status?payment_id="+paymentID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/payment/refund", gin.H{"payment_id": paymentID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refunded", decode[struct {
		Status string `json:"status"`
	}](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/products/"+strconv.FormatUint(uint64(productID), 10), nil)
	assert.Equal(t, int64(5), decode[struct {
		Quantity int64 `json:"quantity"`
	}](t, rec).Quantity)
}

func TestPaymentRefund_PendingRejected(t *testing.T) {
	s := newTestServer(t)
	productID := s.createProduct(t, 5)
	formID := s.createForm(t, productID, 1)

	rec := s.do(t, http.MethodPost, "/api/pay", gin.H{"form_id": formID})
	require.Equal(t, http.StatusOK, rec.Code)
	paymentID := decode[struct {
		PaymentID string `json:"payment_id"`
	}](t, rec).PaymentID

	rec = s.do(t, http.MethodPost, "/api/payment/refund", gin.H{"payment_id": paymentID})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPaymentStatus_MissingParameter(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/payment/status", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentSucceedLandingPage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/payment/succeed", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
