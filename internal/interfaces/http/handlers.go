package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/application/service"
	"github.com/crestline/roofops-commissions/internal/domain/calc"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/domain/payrun"
	domainwf "github.com/crestline/roofops-commissions/internal/domain/workflow"
	"github.com/crestline/roofops-commissions/internal/statement"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	commissions service.CommissionService
	approvals   service.ApprovalService
	draws       service.DrawService
	overrides   service.OverrideService
	statements  *statement.Service
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	commissions service.CommissionService,
	approvals service.ApprovalService,
	draws service.DrawService,
	overrides service.OverrideService,
	statements *statement.Service,
	logger Logger,
) *Handlers {
	return &Handlers{
		commissions: commissions,
		approvals:   approvals,
		draws:       draws,
		overrides:   overrides,
		statements:  statements,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Fields  interface{} `json:"fields,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// JobFactsRequest carries the descriptive job fields
type JobFactsRequest struct {
	JobName        string `json:"job_name"`
	JobAddress     string `json:"job_address"`
	JobReference   string `json:"job_reference"`
	JobType        string `json:"job_type"`
	RoofType       string `json:"roof_type"`
	ContractDate   string `json:"contract_date,omitempty"`   // YYYY-MM-DD
	CompletionDate string `json:"completion_date,omitempty"` // YYYY-MM-DD
}

// RepFactsRequest carries the sales rep fields
type RepFactsRequest struct {
	RepID           string           `json:"rep_id"`
	RepName         string           `json:"rep_name"`
	RepRole         string           `json:"rep_role"`
	TierLabel       string           `json:"tier_label"`
	OverridePercent *decimal.Decimal `json:"override_percent,omitempty"`
}

// SubmissionInputsRequest carries the submission worksheet inputs
type SubmissionInputsRequest struct {
	ContractAmount      decimal.Decimal `json:"contract_amount"`
	SupplementsApproved decimal.Decimal `json:"supplements_approved"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	AdvancesPaid        decimal.Decimal `json:"advances_paid"`
	IsFlatFee           bool            `json:"is_flat_fee"`
	FlatFeeAmount       decimal.Decimal `json:"flat_fee_amount"`
}

// DocumentInputsRequest carries the document worksheet inputs
type DocumentInputsRequest struct {
	GrossContractTotal decimal.Decimal    `json:"gross_contract_total"`
	OPPercent          decimal.Decimal    `json:"op_percent"`
	MaterialCost       decimal.Decimal    `json:"material_cost"`
	LaborCost          decimal.Decimal    `json:"labor_cost"`
	NegExpenses        [4]decimal.Decimal `json:"neg_expenses"`
	PosExpenses        [4]decimal.Decimal `json:"pos_expenses"`
	RepProfitPercent   decimal.Decimal    `json:"rep_profit_percent"`
}

// CreateCommissionRequest handles both worksheet variants
type CreateCommissionRequest struct {
	Variant    string                   `json:"variant" binding:"required"`
	Kind       string                   `json:"kind"`
	Job        JobFactsRequest          `json:"job"`
	Rep        RepFactsRequest          `json:"rep"`
	SplitLabel string                   `json:"split_label,omitempty"`
	Submission *SubmissionInputsRequest `json:"submission,omitempty"`
	Document   *DocumentInputsRequest   `json:"document,omitempty"`
}

// ReviewRequest carries reviewer notes or a reason for revise/deny
type ReviewRequest struct {
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ResubmitRequest carries corrected worksheet inputs
type ResubmitRequest struct {
	Submission *SubmissionInputsRequest `json:"submission,omitempty"`
	Document   *DocumentInputsRequest   `json:"document,omitempty"`
}

// DrawRequestBody carries a draw request
type DrawRequestBody struct {
	RepID  string          `json:"rep_id" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
}

// PaybackRequest carries a draw payback amount
type PaybackRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateCommission handles POST /api/commissions
func (h *Handlers) CreateCommission(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	job, err := jobFacts(req.Job)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	rep := repFacts(req.Rep)

	var created *entity.CommissionRequest
	switch req.Variant {
	case entity.VariantSubmission:
		if req.Submission == nil {
			h.badRequest(c, errors.New("submission inputs are required"))
			return
		}
		created, err = h.commissions.CreateSubmission(c.Request.Context(), service.SubmissionDraft{
			Kind:   req.Kind,
			Job:    job,
			Rep:    rep,
			Inputs: submissionInputs(*req.Submission),
		}, actor)
	case entity.VariantDocument:
		if req.Document == nil {
			h.badRequest(c, errors.New("document inputs are required"))
			return
		}
		created, err = h.commissions.CreateDocument(c.Request.Context(), service.DocumentDraft{
			Kind:       req.Kind,
			Job:        job,
			Rep:        rep,
			SplitLabel: req.SplitLabel,
			Inputs:     documentInputs(*req.Document),
		}, actor)
	default:
		h.badRequest(c, errors.New("variant must be submission or document"))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// GetCommission handles GET /api/commissions/:id
func (h *Handlers) GetCommission(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	req, err := h.commissions.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// ListCommissions handles GET /api/commissions
func (h *Handlers) ListCommissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reqs, err := h.commissions.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: reqs})
}

// GetHistory handles GET /api/commissions/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	entries, err := h.commissions.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ManagerApprove handles POST /api/commissions/:id/approve
func (h *Handlers) ManagerApprove(c *gin.Context) {
	h.transition(c, func(id int64, actor entity.Actor, body ReviewRequest) (*entity.CommissionRequest, error) {
		return h.approvals.ManagerApprove(c.Request.Context(), id, actor, body.Notes)
	})
}

// FinalApprove handles POST /api/commissions/:id/finalize
func (h *Handlers) FinalApprove(c *gin.Context) {
	h.transition(c, func(id int64, actor entity.Actor, body ReviewRequest) (*entity.CommissionRequest, error) {
		return h.approvals.FinalApprove(c.Request.Context(), id, actor, body.Notes)
	})
}

// MarkPaid handles POST /api/commissions/:id/pay
func (h *Handlers) MarkPaid(c *gin.Context) {
	h.transition(c, func(id int64, actor entity.Actor, body ReviewRequest) (*entity.CommissionRequest, error) {
		return h.approvals.MarkPaid(c.Request.Context(), id, actor)
	})
}

// RequestRevision handles POST /api/commissions/:id/revise
func (h *Handlers) RequestRevision(c *gin.Context) {
	h.transition(c, func(id int64, actor entity.Actor, body ReviewRequest) (*entity.CommissionRequest, error) {
		if body.Reason == "" {
			return nil, errBadRequest{errors.New("reason is required")}
		}
		return h.approvals.RequestRevision(c.Request.Context(), id, actor, body.Reason)
	})
}

// Deny handles POST /api/commissions/:id/deny
func (h *Handlers) Deny(c *gin.Context) {
	h.transition(c, func(id int64, actor entity.Actor, body ReviewRequest) (*entity.CommissionRequest, error) {
		if body.Reason == "" {
			return nil, errBadRequest{errors.New("reason is required")}
		}
		return h.approvals.Deny(c.Request.Context(), id, actor, body.Reason)
	})
}

// Resubmit handles POST /api/commissions/:id/resubmit
func (h *Handlers) Resubmit(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var body ResubmitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	var updated *entity.CommissionRequest
	var err error
	switch {
	case body.Submission != nil:
		updated, err = h.commissions.ResubmitSubmission(c.Request.Context(), id, submissionInputs(*body.Submission), actor)
	case body.Document != nil:
		updated, err = h.commissions.ResubmitDocument(c.Request.Context(), id, documentInputs(*body.Document), actor)
	default:
		h.badRequest(c, errors.New("corrected submission or document inputs are required"))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// GenerateStatement handles POST /api/commissions/:id/statement
func (h *Handlers) GenerateStatement(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	path, err := h.statements.Generate(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"file_path": path}})
}

// RequestDraw handles POST /api/draws
func (h *Handlers) RequestDraw(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var body DrawRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	draw, err := h.draws.Request(c.Request.Context(), body.RepID, body.Amount, body.Notes, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: draw})
}

// GetDraw handles GET /api/draws/:id
func (h *Handlers) GetDraw(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	draw, err := h.draws.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: draw})
}

// ApproveDraw handles POST /api/draws/:id/approve
func (h *Handlers) ApproveDraw(c *gin.Context) {
	h.decideDraw(c, h.draws.Approve)
}

// DenyDraw handles POST /api/draws/:id/deny
func (h *Handlers) DenyDraw(c *gin.Context) {
	h.decideDraw(c, h.draws.Deny)
}

// ListDraws handles GET /api/reps/:rep_id/draws
func (h *Handlers) ListDraws(c *gin.Context) {
	draws, err := h.draws.ListByRep(c.Request.Context(), c.Param("rep_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: draws})
}

// DrawBalance handles GET /api/reps/:rep_id/draw-balance
func (h *Handlers) DrawBalance(c *gin.Context) {
	balance, err := h.draws.Balance(c.Request.Context(), c.Param("rep_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"balance": balance}})
}

// RecordPayback handles POST /api/reps/:rep_id/paybacks
func (h *Handlers) RecordPayback(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var body PaybackRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.draws.RecordPayback(c.Request.Context(), c.Param("rep_id"), body.Amount, actor); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// OverridePhase handles GET /api/reps/:rep_id/override-phase
func (h *Handlers) OverridePhase(c *gin.Context) {
	phase, err := h.overrides.Phase(c.Request.Context(), c.Param("rep_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: phase})
}

// OverrideCredits handles GET /api/reps/:rep_id/override-credits
func (h *Handlers) OverrideCredits(c *gin.Context) {
	credits, err := h.overrides.Credits(c.Request.Context(), c.Param("rep_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: credits})
}

func (h *Handlers) transition(c *gin.Context, fn func(int64, entity.Actor, ReviewRequest) (*entity.CommissionRequest, error)) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var body ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	updated, err := fn(id, actor, body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

func (h *Handlers) decideDraw(c *gin.Context, fn func(ctx context.Context, id int64, actor entity.Actor) (*entity.Draw, error)) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	draw, err := fn(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: draw})
}

// actorFrom reads the trusted identity headers. Missing identity is a 401;
// the engine does no authentication of its own.
func (h *Handlers) actorFrom(c *gin.Context) (entity.Actor, bool) {
	actor := entity.Actor{
		ID:   c.GetHeader("X-Actor-Id"),
		Name: c.GetHeader("X-Actor-Name"),
		Role: entity.Role(c.GetHeader("X-Actor-Role")),
	}
	if actor.ID == "" || actor.Role == "" {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "actor identity headers are required"})
		return entity.Actor{}, false
	}
	return actor, true
}

func (h *Handlers) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, errors.New("invalid id"))
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

// errBadRequest wraps handler-level input errors so respondError maps them
// to 400.
type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return e.err.Error() }

// respondError maps service errors onto HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var verrs calc.ValidationErrors
	var authErr *service.AuthorizationError
	var badReq errBadRequest

	switch {
	case errors.As(err, &badReq):
		h.badRequest(c, badReq.err)
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "validation failed", Fields: verrs})
	case errors.Is(err, service.ErrManagerRequired):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, statement.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, port.ErrStaleState):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "the request changed since it was read, refresh and retry"})
	case errors.Is(err, domainwf.ErrInvalidTransition), errors.Is(err, domainwf.ErrGuardFailed),
		errors.Is(err, service.ErrDrawDecided):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrInvalidDrawAmount), errors.Is(err, statement.ErrNotPayable):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

func jobFacts(r JobFactsRequest) (service.JobFacts, error) {
	job := service.JobFacts{
		JobName:      r.JobName,
		JobAddress:   r.JobAddress,
		JobReference: r.JobReference,
		JobType:      r.JobType,
		RoofType:     r.RoofType,
	}
	if r.ContractDate != "" {
		d, err := payrun.ParseDate(r.ContractDate, time.UTC)
		if err != nil {
			return job, errors.New("contract_date must be YYYY-MM-DD")
		}
		job.ContractDate = &d
	}
	if r.CompletionDate != "" {
		d, err := payrun.ParseDate(r.CompletionDate, time.UTC)
		if err != nil {
			return job, errors.New("completion_date must be YYYY-MM-DD")
		}
		job.CompletionDate = &d
	}
	return job, nil
}

func repFacts(r RepFactsRequest) service.RepFacts {
	return service.RepFacts{
		RepID:           r.RepID,
		RepName:         r.RepName,
		RepRole:         r.RepRole,
		TierLabel:       r.TierLabel,
		OverridePercent: r.OverridePercent,
	}
}

func submissionInputs(r SubmissionInputsRequest) calc.SubmissionInputs {
	return calc.SubmissionInputs{
		ContractAmount:      r.ContractAmount,
		SupplementsApproved: r.SupplementsApproved,
		CommissionRate:      r.CommissionRate,
		AdvancesPaid:        r.AdvancesPaid,
		IsFlatFee:           r.IsFlatFee,
		FlatFeeAmount:       r.FlatFeeAmount,
	}
}

func documentInputs(r DocumentInputsRequest) calc.DocumentInputs {
	return calc.DocumentInputs{
		GrossContractTotal: r.GrossContractTotal,
		OPPercent:          r.OPPercent,
		MaterialCost:       r.MaterialCost,
		LaborCost:          r.LaborCost,
		NegExpenses:        r.NegExpenses,
		PosExpenses:        r.PosExpenses,
		RepProfitPercent:   r.RepProfitPercent,
	}
}
