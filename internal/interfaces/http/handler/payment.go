package handler

import (
	"time"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/arcollect/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	payments *appcollections.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *appcollections.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/payments")
	g.POST("", h.Record)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              string     `json:"id"`
	CollectionID    string     `json:"collection_id"`
	Amount          int64      `json:"amount"`
	Mode            string     `json:"mode"`
	PaymentDate     time.Time  `json:"payment_date"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Status          string     `json:"status"`
	RecordedBy      string     `json:"recorded_by"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toPaymentResponse(p *collections.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID.String(),
		CollectionID:    p.CollectionID.String(),
		Amount:          p.Amount,
		Mode:            string(p.Mode),
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		Status:          string(p.Status),
		RecordedBy:      p.RecordedBy.String(),
		ApprovedAt:      p.ApprovedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.ApprovedBy != nil {
		approver := p.ApprovedBy.String()
		resp.ApprovedBy = &approver
	}
	return resp
}

// RecordPaymentRequest represents the request body for recording a payment
type RecordPaymentRequest struct {
	CollectionID    string `json:"collection_id" binding:"required,uuid"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	Mode            string `json:"mode" binding:"required"`
	PaymentDate     string `json:"payment_date" binding:"required"`
	ReferenceNumber string `json:"reference_number"`
}

// Record records a payment against a collection. Depending on the actor's
// role the payment is applied immediately or parked pending approval.
func (h *PaymentHandler) Record(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "payment_date must be an ISO date")
		return
	}

	payment, err := h.payments.RecordPayment(c.Request.Context(), appcollections.RecordPaymentRequest{
		CollectionID:    uuid.MustParse(req.CollectionID),
		Amount:          req.Amount,
		Mode:            collections.PaymentMode(req.Mode),
		PaymentDate:     paymentDate,
		ReferenceNumber: req.ReferenceNumber,
		Actor:           actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// Get returns a single payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// ListPaymentsRequest represents payment list query parameters
type ListPaymentsRequest struct {
	dto.ListRequest
	CollectionID string `form:"collection_id" binding:"omitempty,uuid"`
	Status       string `form:"status"`
	RecordedBy   string `form:"recorded_by" binding:"omitempty,uuid"`
}

// List returns payments matching the filter
func (h *PaymentHandler) List(c *gin.Context) {
	req := ListPaymentsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := collections.PaymentFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
	}
	if req.CollectionID != "" {
		collectionID := uuid.MustParse(req.CollectionID)
		filter.CollectionID = &collectionID
	}
	if req.Status != "" {
		status := collections.PaymentStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "status is not a valid payment status")
			return
		}
		filter.Status = &status
	}
	if req.RecordedBy != "" {
		recorder := uuid.MustParse(req.RecordedBy)
		filter.RecordedBy = &recorder
	}

	payments, err := h.payments.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	h.Success(c, out)
}

// Approve approves a pending payment and applies it to the ledger
func (h *PaymentHandler) Approve(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.ApprovePayment(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// RejectPaymentRequest represents the request body for rejecting a payment
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject rejects a pending payment without touching the ledger
func (h *PaymentHandler) Reject(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.payments.RejectPayment(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}
