package httptransport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appcatalog "storefront/internal/application/catalog"
	appform "storefront/internal/application/form"
	"storefront/internal/application/reconcile"
	domaincatalog "storefront/internal/domain/catalog"
	domainform "storefront/internal/domain/form"
	"storefront/internal/domain/ledger"
	"storefront/internal/domain/payment"
	"storefront/internal/domain/transaction"
)

type Handler struct {
	engine   *reconcile.Engine
	forms    *appform.Service
	products *appcatalog.Service
}

func NewHandler(engine *reconcile.Engine, forms *appform.Service, products *appcatalog.Service) *Handler {
	return &Handler{
		engine:   engine,
		forms:    forms,
		products: products,
	}
}

type payRequest struct {
	FormID      uint   `json:"form_id" binding:"required,min=1"`
	Credentials string `json:"credentials"`
}

type payResponse struct {
	PaymentID   string `json:"payment_id"`
	PaymentLink string `json:"payment_link"`
}

func (h *Handler) handlePay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	handle, err := h.engine.OpenOrFindPending(c.Request.Context(), req.FormID, req.Credentials)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, payResponse{
		PaymentID:   handle.PaymentID,
		PaymentLink: handle.PaymentURL,
	})
}

type statusResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

func (h *Handler) handlePaymentStatus(c *gin.Context) {
	paymentID := c.Query("payment_id")
	if paymentID == "" {
		writeError(c, http.StatusBadRequest, errors.New("payment_id is required"))
		return
	}

	status, err := h.engine.CheckPayment(c.Request.Context(), paymentID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{PaymentID: paymentID, Status: status})
}

type refundRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
}

func (h *Handler) handleRefund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	status, err := h.engine.RefundTransaction(c.Request.Context(), req.PaymentID)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidTransition) {
			writeError(c, http.StatusConflict, err)
			return
		}
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResponse{PaymentID: req.PaymentID, Status: string(status)})
}

// handlePaymentSucceed is the landing page the gateway redirects the customer
// back to. The actual outcome is settled by status polling, so this only
// acknowledges the return.
func (h *Handler) handlePaymentSucceed(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handler) handleListProducts(c *gin.Context) {
	list, err := h.products.List(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type productRequest struct {
	Title         string `json:"title" binding:"required"`
	Brand         string `json:"brand"`
	Description   string `json:"description"`
	PriceAmount   int64  `json:"price_amount" binding:"required,min=1"`
	PriceCurrency string `json:"price_currency"`
	Quantity      int64  `json:"quantity" binding:"min=0"`
}

func (h *Handler) handleCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	p := &domaincatalog.Product{
		Title:         req.Title,
		Brand:         req.Brand,
		Description:   req.Description,
		PriceAmount:   req.PriceAmount,
		PriceCurrency: req.PriceCurrency,
		Quantity:      req.Quantity,
	}
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) handleGetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleUpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	p.Title = req.Title
	p.Brand = req.Brand
	p.Description = req.Description
	p.PriceAmount = req.PriceAmount
	if req.PriceCurrency != "" {
		p.PriceCurrency = req.PriceCurrency
	}
	p.Quantity = req.Quantity

	if err := h.products.Update(c.Request.Context(), p); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type formRequest struct {
	Contact   domainform.Contact `json:"contact"`
	LineItems []lineItemRequest  `json:"line_items"`
}

type lineItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required,min=1"`
	Quantity  int64 `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) handleCreateForm(c *gin.Context) {
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	items := make([]domainform.LineItem, 0, len(req.LineItems))
	for _, it := range req.LineItems {
		items = append(items, domainform.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	f, err := h.forms.Create(c.Request.Context(), req.Contact, items)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) handleGetForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f, err := h.forms.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) handleDeleteForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.forms.Delete(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		writeError(c, http.StatusBadRequest, errors.New("invalid id"))
		return 0, false
	}
	return uint(id), true
}

func writeError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincatalog.ErrNotFound),
		errors.Is(err, domainform.ErrNotFound),
		errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		writeError(c, http.StatusNotFound, err)
	case errors.Is(err, ledger.ErrInsufficientStock):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, domainform.ErrMissingContact),
		errors.Is(err, domainform.ErrNoLineItems),
		errors.Is(err, domainform.ErrInvalidQuantity),
		errors.Is(err, domaincatalog.ErrInvalidPrice):
		writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, payment.ErrUnknownStatus):
		writeError(c, http.StatusBadGateway, err)
	case errors.Is(err, payment.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, err)
	default:
		writeError(c, http.StatusInternalServerError, err)
	}
}
