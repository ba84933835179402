package handler

import (
	"time"

	appcollections "github.com/arcollect/backend/internal/application/collections"
	"github.com/arcollect/backend/internal/domain/approval"
	"github.com/arcollect/backend/internal/domain/collections"
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/arcollect/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChangeRequestHandler handles the dual-control change request API endpoints.
// It also owns the direct deletion routes, which bypass the request workflow
// for privileged roles.
type ChangeRequestHandler struct {
	BaseHandler
	requests *appcollections.ChangeRequestService
}

// NewChangeRequestHandler creates a new ChangeRequestHandler
func NewChangeRequestHandler(requests *appcollections.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{requests: requests}
}

// RegisterRoutes registers change request routes
func (h *ChangeRequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/change-requests")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)

	rg.POST("/payments/:id/edit-requests", h.RequestPaymentEdit)
	rg.POST("/payments/:id/deletion-requests", h.RequestPaymentDeletion)
	rg.DELETE("/payments/:id", h.DeletePayment)

	rg.POST("/communications/:id/edit-requests", h.RequestCommunicationEdit)
	rg.POST("/communications/:id/deletion-requests", h.RequestCommunicationDeletion)
	rg.DELETE("/communications/:id", h.DeleteCommunication)
}

// ChangeRequestResponse represents a change request in API responses
type ChangeRequestResponse struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	TargetID        string            `json:"target_id"`
	Original        approval.FieldSet `json:"original,omitempty"`
	Proposed        approval.FieldSet `json:"proposed,omitempty"`
	Reason          string            `json:"reason"`
	RequestedBy     string            `json:"requested_by"`
	Status          string            `json:"status"`
	AutoApproveAt   time.Time         `json:"auto_approve_at"`
	ResolvedBy      *string           `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toChangeRequestResponse(r *approval.ChangeRequest) ChangeRequestResponse {
	resp := ChangeRequestResponse{
		ID:              r.ID.String(),
		Kind:            string(r.Kind),
		TargetID:        r.TargetID.String(),
		Original:        r.Original,
		Proposed:        r.Proposed,
		Reason:          r.Reason,
		RequestedBy:     r.RequestedBy.String(),
		Status:          string(r.Status),
		AutoApproveAt:   r.AutoApproveAt,
		ResolvedAt:      r.ResolvedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ResolvedBy != nil {
		resolver := r.ResolvedBy.String()
		resp.ResolvedBy = &resolver
	}
	return resp
}

// PaymentEditRequest represents the request body for a payment edit request.
// Omitted fields are left unchanged.
type PaymentEditRequest struct {
	Amount          *int64  `json:"amount" binding:"omitempty,gt=0"`
	Mode            *string `json:"mode"`
	PaymentDate     *string `json:"payment_date"`
	ReferenceNumber *string `json:"reference_number"`
	Reason          string  `json:"reason" binding:"required"`
}

// RequestPaymentEdit files a pending edit request against a payment
func (h *ChangeRequestHandler) RequestPaymentEdit(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PaymentEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	edit := appcollections.PaymentEdit{
		Amount:          req.Amount,
		ReferenceNumber: req.ReferenceNumber,
	}
	if req.Mode != nil {
		mode := collections.PaymentMode(*req.Mode)
		edit.Mode = &mode
	}
	if req.PaymentDate != nil {
		paymentDate, err := parseDate(*req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "payment_date must be an ISO date")
			return
		}
		edit.PaymentDate = &paymentDate
	}

	request, err := h.requests.RequestPaymentEdit(c.Request.Context(), paymentID, edit, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChangeRequestResponse(request))
}

// CommunicationEditRequest represents the request body for a communication
// edit request. Omitted fields are left unchanged.
type CommunicationEditRequest struct {
	Summary        *string `json:"summary"`
	Outcome        *string `json:"outcome"`
	PromisedAmount *int64  `json:"promised_amount" binding:"omitempty,gt=0"`
	PromisedDate   *string `json:"promised_date"`
	Reason         string  `json:"reason" binding:"required"`
}

// RequestCommunicationEdit files a pending edit request against a
// communication log
func (h *ChangeRequestHandler) RequestCommunicationEdit(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	logID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CommunicationEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	edit := appcollections.CommunicationEdit{
		Summary:        req.Summary,
		PromisedAmount: req.PromisedAmount,
	}
	if req.Outcome != nil {
		outcome := collections.CommunicationOutcome(*req.Outcome)
		edit.Outcome = &outcome
	}
	if req.PromisedDate != nil {
		promisedDate, err := parseDate(*req.PromisedDate)
		if err != nil {
			h.BadRequest(c, "promised_date must be an ISO date")
			return
		}
		edit.PromisedDate = &promisedDate
	}

	request, err := h.requests.RequestCommunicationEdit(c.Request.Context(), logID, edit, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChangeRequestResponse(request))
}

// DeletionRequest represents the request body for a deletion request
type DeletionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RequestPaymentDeletion files a pending deletion request against a payment
func (h *ChangeRequestHandler) RequestPaymentDeletion(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requests.RequestPaymentDeletion(c.Request.Context(), paymentID, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChangeRequestResponse(request))
}

// RequestCommunicationDeletion files a pending deletion request against a
// communication log
func (h *ChangeRequestHandler) RequestCommunicationDeletion(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	logID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requests.RequestCommunicationDeletion(c.Request.Context(), logID, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChangeRequestResponse(request))
}

// DeletePayment deletes a payment directly, privileged roles only
func (h *ChangeRequestHandler) DeletePayment(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.requests.DeletePayment(c.Request.Context(), paymentID, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteCommunication deletes a communication log directly, privileged roles only
func (h *ChangeRequestHandler) DeleteCommunication(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	logID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.requests.DeleteCommunication(c.Request.Context(), logID, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns a single change request
func (h *ChangeRequestHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requests.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChangeRequestResponse(request))
}

// ListChangeRequestsRequest represents change request list query parameters
type ListChangeRequestsRequest struct {
	dto.ListRequest
	Kind        string `form:"kind"`
	Status      string `form:"status"`
	TargetID    string `form:"target_id" binding:"omitempty,uuid"`
	RequestedBy string `form:"requested_by" binding:"omitempty,uuid"`
}

// List returns change requests matching the filter
func (h *ChangeRequestHandler) List(c *gin.Context) {
	req := ListChangeRequestsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := approval.ChangeRequestFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
	}
	if req.Kind != "" {
		kind := approval.RequestKind(req.Kind)
		if !kind.IsValid() {
			h.BadRequest(c, "kind is not a valid request kind")
			return
		}
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := approval.RequestStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "status is not a valid request status")
			return
		}
		filter.Status = &status
	}
	if req.TargetID != "" {
		targetID := uuid.MustParse(req.TargetID)
		filter.TargetID = &targetID
	}
	if req.RequestedBy != "" {
		requester := uuid.MustParse(req.RequestedBy)
		filter.RequestedBy = &requester
	}

	requests, err := h.requests.ListRequests(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ChangeRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toChangeRequestResponse(&requests[i]))
	}
	h.Success(c, out)
}

// Approve approves a pending change request and applies the change
func (h *ChangeRequestHandler) Approve(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requests.Approve(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChangeRequestResponse(request))
}

// RejectChangeRequestRequest represents the request body for rejecting a
// change request
type RejectChangeRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject rejects a pending change request, leaving the target untouched
func (h *ChangeRequestHandler) Reject(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RejectChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requests.Reject(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChangeRequestResponse(request))
}
