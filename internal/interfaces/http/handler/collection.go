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

// parseDate parses a date in RFC3339 or plain ISO date format
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CollectionHandler handles collection ledger API endpoints
type CollectionHandler struct {
	BaseHandler
	ledger   *appcollections.LedgerService
	disputes *appcollections.DisputeService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(ledger *appcollections.LedgerService, disputes *appcollections.DisputeService) *CollectionHandler {
	return &CollectionHandler{
		ledger:   ledger,
		disputes: disputes,
	}
}

// RegisterRoutes registers collection routes
func (h *CollectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/collections")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/outstanding", h.TotalOutstanding)
	g.GET("/:id", h.Get)
	g.POST("/:id/assign", h.Assign)
	g.POST("/:id/escalate", h.Escalate)
	g.POST("/:id/write-off", h.WriteOff)
	g.POST("/:id/communications", h.LogCommunication)
	g.GET("/:id/communications", h.ListCommunications)
	g.POST("/:id/disputes", h.RaiseDispute)
	g.DELETE("/:id/disputes", h.ResolveDispute)
}

// CollectionResponse represents a collection in API responses
type CollectionResponse struct {
	ID                string     `json:"id"`
	CustomerID        string     `json:"customer_id"`
	CustomerName      string     `json:"customer_name"`
	InvoiceNumber     string     `json:"invoice_number"`
	InvoiceDate       time.Time  `json:"invoice_date"`
	DueDate           time.Time  `json:"due_date"`
	OriginalAmount    int64      `json:"original_amount"`
	OutstandingAmount int64      `json:"outstanding_amount"`
	PaidAmount        int64      `json:"paid_amount"`
	PaidPercentage    string     `json:"paid_percentage"`
	Status            string     `json:"status"`
	AgingDays         int        `json:"aging_days"`
	AssignedTo        *string    `json:"assigned_to,omitempty"`
	EscalationLevel   int        `json:"escalation_level"`
	DisputeRaisedAt   *time.Time `json:"dispute_raised_at,omitempty"`
	DisputeReason     string     `json:"dispute_reason,omitempty"`
	PromisedAmount    *int64     `json:"promised_amount,omitempty"`
	PromisedDate      *time.Time `json:"promised_date,omitempty"`
	WrittenOffAt      *time.Time `json:"written_off_at,omitempty"`
	WriteOffReason    string     `json:"write_off_reason,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

func toCollectionResponse(c *collections.Collection) CollectionResponse {
	resp := CollectionResponse{
		ID:                c.ID.String(),
		CustomerID:        c.CustomerID.String(),
		CustomerName:      c.CustomerName,
		InvoiceNumber:     c.InvoiceNumber,
		InvoiceDate:       c.InvoiceDate,
		DueDate:           c.DueDate,
		OriginalAmount:    c.OriginalAmount,
		OutstandingAmount: c.OutstandingAmount,
		PaidAmount:        c.PaidAmount,
		PaidPercentage:    c.PaidPercentage().StringFixed(2),
		Status:            string(c.Status),
		AgingDays:         c.AgingDays,
		EscalationLevel:   c.EscalationLevel,
		DisputeRaisedAt:   c.DisputeRaisedAt,
		DisputeReason:     c.DisputeReason,
		PromisedAmount:    c.PromisedAmount,
		PromisedDate:      c.PromisedDate,
		WrittenOffAt:      c.WrittenOffAt,
		WriteOffReason:    c.WriteOffReason,
		PaidAt:            c.PaidAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Version:           c.Version,
	}
	if c.AssignedTo != nil {
		assigned := c.AssignedTo.String()
		resp.AssignedTo = &assigned
	}
	return resp
}

func toCollectionResponses(items []collections.Collection) []CollectionResponse {
	out := make([]CollectionResponse, 0, len(items))
	for i := range items {
		out = append(out, toCollectionResponse(&items[i]))
	}
	return out
}

// CreateCollectionRequest represents the request body for creating a collection
type CreateCollectionRequest struct {
	CustomerID     string `json:"customer_id" binding:"required,uuid"`
	CustomerName   string `json:"customer_name" binding:"required"`
	InvoiceNumber  string `json:"invoice_number" binding:"required"`
	InvoiceDate    string `json:"invoice_date" binding:"required"`
	DueDate        string `json:"due_date" binding:"required"`
	OriginalAmount int64  `json:"original_amount" binding:"required,gt=0"`
	AssignedTo     string `json:"assigned_to" binding:"omitempty,uuid"`
}

// Create registers a new invoice for collection tracking
func (h *CollectionHandler) Create(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceDate, err := parseDate(req.InvoiceDate)
	if err != nil {
		h.BadRequest(c, "invoice_date must be an ISO date")
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "due_date must be an ISO date")
		return
	}

	createReq := appcollections.CreateCollectionRequest{
		CustomerID:     uuid.MustParse(req.CustomerID),
		CustomerName:   req.CustomerName,
		InvoiceNumber:  req.InvoiceNumber,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		OriginalAmount: req.OriginalAmount,
		Actor:          actor,
	}
	if req.AssignedTo != "" {
		assignee := uuid.MustParse(req.AssignedTo)
		createReq.AssignedTo = &assignee
	}

	collection, err := h.ledger.CreateCollection(c.Request.Context(), createReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCollectionResponse(collection))
}

// Get returns a single collection
func (h *CollectionHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	collection, err := h.ledger.GetCollection(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCollectionResponse(collection))
}

// ListCollectionsRequest represents collection list query parameters
type ListCollectionsRequest struct {
	dto.ListRequest
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	Overdue    *bool  `form:"overdue"`
}

// List returns collections matching the filter
func (h *CollectionHandler) List(c *gin.Context) {
	req := ListCollectionsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := collections.CollectionFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   req.Search,
		},
		Overdue: req.Overdue,
	}
	if req.CustomerID != "" {
		customerID := uuid.MustParse(req.CustomerID)
		filter.CustomerID = &customerID
	}
	if req.Status != "" {
		status := collections.CollectionStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "status is not a valid collection status")
			return
		}
		filter.Status = &status
	}
	if req.AssignedTo != "" {
		assignee := uuid.MustParse(req.AssignedTo)
		filter.AssignedTo = &assignee
	}

	page, err := h.ledger.ListCollections(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toCollectionResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// OutstandingResponse represents the total outstanding amount
type OutstandingResponse struct {
	TotalOutstanding int64 `json:"total_outstanding"`
}

// TotalOutstanding returns the sum of outstanding amounts across open collections
func (h *CollectionHandler) TotalOutstanding(c *gin.Context) {
	total, err := h.ledger.TotalOutstanding(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, OutstandingResponse{TotalOutstanding: total})
}

// AssignCollectionRequest represents the request body for assigning a collection
type AssignCollectionRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,uuid"`
}

// Assign assigns a collection to an agent
func (h *CollectionHandler) Assign(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledger.AssignCollection(c.Request.Context(), id, uuid.MustParse(req.AssignedTo), actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EscalationResponse represents the escalation level after escalating
type EscalationResponse struct {
	EscalationLevel int `json:"escalation_level"`
}

// Escalate raises the escalation level of a collection
func (h *CollectionHandler) Escalate(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	level, err := h.ledger.EscalateCollection(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, EscalationResponse{EscalationLevel: level})
}

// WriteOffRequest represents the request body for writing off a collection
type WriteOffRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// WriteOff writes off the remaining outstanding amount of a collection
func (h *CollectionHandler) WriteOff(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledger.WriteOffCollection(c.Request.Context(), id, req.Reason, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CommunicationResponse represents a communication log entry in API responses
type CommunicationResponse struct {
	ID             string     `json:"id"`
	CollectionID   string     `json:"collection_id"`
	Channel        string     `json:"channel"`
	Summary        string     `json:"summary"`
	Outcome        string     `json:"outcome"`
	PromisedAmount *int64     `json:"promised_amount,omitempty"`
	PromisedDate   *time.Time `json:"promised_date,omitempty"`
	LoggedBy       string     `json:"logged_by"`
	OccurredAt     time.Time  `json:"occurred_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toCommunicationResponse(l *collections.CommunicationLog) CommunicationResponse {
	return CommunicationResponse{
		ID:             l.ID.String(),
		CollectionID:   l.CollectionID.String(),
		Channel:        string(l.Channel),
		Summary:        l.Summary,
		Outcome:        string(l.Outcome),
		PromisedAmount: l.PromisedAmount,
		PromisedDate:   l.PromisedDate,
		LoggedBy:       l.LoggedBy.String(),
		OccurredAt:     l.OccurredAt,
		CreatedAt:      l.CreatedAt,
	}
}

// LogCommunicationRequest represents the request body for logging a contact
type LogCommunicationRequest struct {
	Channel        string `json:"channel" binding:"required"`
	Summary        string `json:"summary" binding:"required"`
	Outcome        string `json:"outcome" binding:"required"`
	PromisedAmount *int64 `json:"promised_amount" binding:"omitempty,gt=0"`
	PromisedDate   string `json:"promised_date"`
	OccurredAt     string `json:"occurred_at" binding:"required"`
}

// LogCommunication records a customer contact against a collection
func (h *CollectionHandler) LogCommunication(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LogCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	occurredAt, err := parseDate(req.OccurredAt)
	if err != nil {
		h.BadRequest(c, "occurred_at must be an ISO date or RFC3339 timestamp")
		return
	}

	logReq := appcollections.LogCommunicationRequest{
		CollectionID:   id,
		Channel:        collections.CommunicationChannel(req.Channel),
		Summary:        req.Summary,
		Outcome:        collections.CommunicationOutcome(req.Outcome),
		PromisedAmount: req.PromisedAmount,
		OccurredAt:     occurredAt,
		Actor:          actor,
	}
	if req.PromisedDate != "" {
		promisedDate, err := parseDate(req.PromisedDate)
		if err != nil {
			h.BadRequest(c, "promised_date must be an ISO date")
			return
		}
		logReq.PromisedDate = &promisedDate
	}

	log, err := h.ledger.LogCommunication(c.Request.Context(), logReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCommunicationResponse(log))
}

// ListCommunications returns the contact history of a collection
func (h *CollectionHandler) ListCommunications(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	logs, err := h.ledger.ListCommunications(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]CommunicationResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toCommunicationResponse(&logs[i]))
	}
	h.Success(c, out)
}

// RaiseDisputeRequest represents the request body for raising a dispute
type RaiseDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RaiseDispute flags a collection as contested by the customer
func (h *CollectionHandler) RaiseDispute(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.disputes.RaiseDispute(c.Request.Context(), id, req.Reason, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ResolveDispute clears a dispute and returns the collection to its
// amount-derived status
func (h *CollectionHandler) ResolveDispute(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.disputes.ResolveDispute(c.Request.Context(), id, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
