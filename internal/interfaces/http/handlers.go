package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/application/service"
	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	appService service.ApplicationService
	logger     Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(appService service.ApplicationService, logger Logger) *Handlers {
	return &Handlers{
		appService: appService,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// PayloadRequest carries the kind-specific application fields over the wire.
type PayloadRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	TenorMonths int             `json:"tenor_months"`

	LoanType string `json:"loan_type"`
	Purpose  string `json:"purpose"`

	DepositRef      string `json:"deposit_ref"`
	EarlyWithdrawal bool   `json:"early_withdrawal"`
}

func (p PayloadRequest) toEntity() entity.Payload {
	return entity.Payload{
		Amount:          p.Amount,
		TenorMonths:     p.TenorMonths,
		LoanType:        entity.LoanType(p.LoanType),
		Purpose:         p.Purpose,
		DepositRef:      p.DepositRef,
		EarlyWithdrawal: p.EarlyWithdrawal,
	}
}

// CreateDraftRequest is the body of POST /applications.
type CreateDraftRequest struct {
	Kind    string         `json:"kind" binding:"required"`
	Payload PayloadRequest `json:"payload" binding:"required"`
}

// ApprovalRequest is the body of POST /applications/:id/approval.
type ApprovalRequest struct {
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
}

// ReviseRequest is the body of POST /applications/:id/revise.
type ReviseRequest struct {
	Payload PayloadRequest `json:"payload" binding:"required"`
	Notes   string         `json:"notes"`
}

// DisbursementRequest is the body of POST /applications/:id/disbursement.
type DisbursementRequest struct {
	TxDate string `json:"tx_date" binding:"required"`
	TxTime string `json:"tx_time" binding:"required"`
	Notes  string `json:"notes"`
}

// AuthorizationRequest is the body of POST /applications/:id/authorization.
type AuthorizationRequest struct {
	AuthDate string `json:"auth_date" binding:"required"`
	Notes    string `json:"notes"`
}

// BulkApprovalRequest is the body of POST /applications/bulk/approval.
type BulkApprovalRequest struct {
	IDs      []uuid.UUID `json:"ids" binding:"required"`
	Decision string      `json:"decision" binding:"required"`
	Notes    string      `json:"notes"`
}

// BulkSettlementRequest is the body of both bulk disbursement and bulk
// authorization; each route reads the date fields it needs.
type BulkSettlementRequest struct {
	IDs      []uuid.UUID `json:"ids" binding:"required"`
	TxDate   string      `json:"tx_date"`
	TxTime   string      `json:"tx_time"`
	AuthDate string      `json:"auth_date"`
	Notes    string      `json:"notes"`
}

// ListResponse wraps a paginated application listing.
type ListResponse struct {
	Applications []*entity.Application `json:"applications"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// actorID extracts the acting member from the X-Actor-ID header. Session
// issuance lives outside this service; the header is trusted upstream.
func (h *Handlers) actorID(c *gin.Context) (string, bool) {
	actor := c.GetHeader("X-Actor-ID")
	if actor == "" {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "X-Actor-ID header is required",
		})
		return "", false
	}
	return actor, true
}

// applicationID parses the :id path parameter.
func (h *Handlers) applicationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid application id",
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateDraft handles POST /api/v1/applications
func (h *Handlers) CreateDraft(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.appService.CreateDraft(c.Request.Context(), actor, entity.Kind(req.Kind), req.Payload.toEntity())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: app})
}

// UpdateDraft handles PATCH /api/v1/applications/:id
func (h *Handlers) UpdateDraft(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req PayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.appService.UpdateDraft(c.Request.Context(), id, actor, req.toEntity())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// Submit handles POST /api/v1/applications/:id/submit
func (h *Handlers) Submit(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.appService.Submit(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// ProcessApproval handles POST /api/v1/applications/:id/approval
func (h *Handlers) ProcessApproval(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.appService.ProcessApproval(c.Request.Context(), id, actor, entity.Decision(req.Decision), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// ReviseLoan handles POST /api/v1/applications/:id/revise
func (h *Handlers) ReviseLoan(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req ReviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.appService.ReviseLoan(c.Request.Context(), id, actor, req.Payload.toEntity(), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// ProcessDisbursement handles POST /api/v1/applications/:id/disbursement
func (h *Handlers) ProcessDisbursement(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req DisbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.appService.ProcessDisbursement(c.Request.Context(), id, actor, req.TxDate, req.TxTime, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// ProcessAuthorization handles POST /api/v1/applications/:id/authorization
func (h *Handlers) ProcessAuthorization(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req AuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.appService.ProcessAuthorization(c.Request.Context(), id, actor, req.AuthDate, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// Cancel handles POST /api/v1/applications/:id/cancel
func (h *Handlers) Cancel(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.appService.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// BulkApproval handles POST /api/v1/applications/bulk/approval
func (h *Handlers) BulkApproval(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req BulkApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result := h.appService.BulkProcessApproval(c.Request.Context(), req.IDs, actor, entity.Decision(req.Decision), req.Notes)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// BulkDisbursement handles POST /api/v1/applications/bulk/disbursement
func (h *Handlers) BulkDisbursement(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req BulkSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result := h.appService.BulkProcessDisbursement(c.Request.Context(), req.IDs, actor, req.TxDate, req.TxTime, req.Notes)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// BulkAuthorization handles POST /api/v1/applications/bulk/authorization
func (h *Handlers) BulkAuthorization(c *gin.Context) {
	actor, ok := h.actorID(c)
	if !ok {
		return
	}

	var req BulkSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result := h.appService.BulkProcessAuthorization(c.Request.Context(), req.IDs, actor, req.AuthDate, req.Notes)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// GetApplication handles GET /api/v1/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.appService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// GetHistory handles GET /api/v1/applications/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	records, err := h.appService.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// ListApplications handles GET /api/v1/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	var query struct {
		Kind      string `form:"kind"`
		Status    string `form:"status"`
		Applicant string `form:"applicant"`
		Limit     int    `form:"limit"`
		Offset    int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	filter := port.ListFilter{
		Kind:        entity.Kind(query.Kind),
		Status:      entity.Status(query.Status),
		ApplicantID: query.Applicant,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}

	apps, total, err := h.appService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: ListResponse{
			Applications: apps,
			Total:        total,
			Limit:        query.Limit,
			Offset:       query.Offset,
		},
	})
}
