package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/application/port"
	appwf "github.com/crestline/roofops-commissions/internal/application/workflow"
	"github.com/crestline/roofops-commissions/internal/domain/calc"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/domain/event"
	domainwf "github.com/crestline/roofops-commissions/internal/domain/workflow"
)

// JobFacts are the descriptive fields shared by both worksheet variants.
type JobFacts struct {
	JobName        string
	JobAddress     string
	JobReference   string
	JobType        string
	RoofType       string
	ContractDate   *time.Time
	CompletionDate *time.Time
}

// RepFacts identify the sales rep the commission belongs to.
type RepFacts struct {
	RepID           string
	RepName         string
	RepRole         string
	TierLabel       string
	OverridePercent *decimal.Decimal
}

// SubmissionDraft is the input for a submission-worksheet commission.
type SubmissionDraft struct {
	Kind   string
	Job    JobFacts
	Rep    RepFacts
	Inputs calc.SubmissionInputs
}

// DocumentDraft is the input for a document (O&P) worksheet commission.
type DocumentDraft struct {
	Kind       string
	Job        JobFacts
	Rep        RepFacts
	SplitLabel string
	Inputs     calc.DocumentInputs
}

// CommissionService creates and resubmits commission requests. All derived
// financial fields are recomputed through the calculation engine on every
// write; workflow fields are only ever touched through transitions.
type CommissionService interface {
	CreateSubmission(ctx context.Context, draft SubmissionDraft, actor entity.Actor) (*entity.CommissionRequest, error)
	CreateDocument(ctx context.Context, draft DocumentDraft, actor entity.Actor) (*entity.CommissionRequest, error)
	ResubmitSubmission(ctx context.Context, id int64, inputs calc.SubmissionInputs, actor entity.Actor) (*entity.CommissionRequest, error)
	ResubmitDocument(ctx context.Context, id int64, inputs calc.DocumentInputs, actor entity.Actor) (*entity.CommissionRequest, error)
	Get(ctx context.Context, id int64) (*entity.CommissionRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.CommissionRequest, error)
	History(ctx context.Context, id int64) ([]*entity.StatusLogEntry, error)
}

type commissionServiceImpl struct {
	commissions port.CommissionRepository
	statusLog   port.StatusLogRepository
	managers    port.ManagerLookup
	txManager   port.TransactionManager
	events      dispatcher.Dispatcher
	clock       func() time.Time
	logger      Logger
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(
	commissions port.CommissionRepository,
	statusLog port.StatusLogRepository,
	managers port.ManagerLookup,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) CommissionService {
	return &commissionServiceImpl{
		commissions: commissions,
		statusLog:   statusLog,
		managers:    managers,
		txManager:   txManager,
		events:      events,
		clock:       time.Now,
		logger:      logger,
	}
}

// CreateSubmission validates and stores a submission-worksheet commission.
func (s *commissionServiceImpl) CreateSubmission(ctx context.Context, draft SubmissionDraft, actor entity.Actor) (*entity.CommissionRequest, error) {
	if errs := calc.ValidateSubmission(calc.SubmissionValidation{
		JobName: draft.Job.JobName,
		RepName: draft.Rep.RepName,
		Inputs:  draft.Inputs,
	}); len(errs) > 0 {
		return nil, errs
	}

	req := s.newRequest(draft.Kind, entity.VariantSubmission, draft.Job, draft.Rep, actor)
	applySubmissionInputs(req, draft.Inputs)

	return s.create(ctx, req, actor)
}

// CreateDocument validates and stores a document (O&P) worksheet commission.
func (s *commissionServiceImpl) CreateDocument(ctx context.Context, draft DocumentDraft, actor entity.Actor) (*entity.CommissionRequest, error) {
	if errs := calc.ValidateDocument(calc.DocumentValidation{
		JobName:    draft.Job.JobName,
		JobAddress: draft.Job.JobAddress,
		RepName:    draft.Rep.RepName,
		SplitLabel: draft.SplitLabel,
		Inputs:     draft.Inputs,
	}); len(errs) > 0 {
		return nil, errs
	}

	req := s.newRequest(draft.Kind, entity.VariantDocument, draft.Job, draft.Rep, actor)
	req.TierLabel = draft.SplitLabel
	applyDocumentInputs(req, draft.Inputs)

	return s.create(ctx, req, actor)
}

func (s *commissionServiceImpl) newRequest(kind, variant string, job JobFacts, rep RepFacts, actor entity.Actor) *entity.CommissionRequest {
	now := s.clock()
	return &entity.CommissionRequest{
		SubmitterID:         actor.ID,
		Kind:                kind,
		Variant:             variant,
		CreatedAt:           now,
		UpdatedAt:           now,
		JobName:             job.JobName,
		JobAddress:          job.JobAddress,
		JobReference:        job.JobReference,
		JobType:             job.JobType,
		RoofType:            job.RoofType,
		ContractDate:        job.ContractDate,
		CompletionDate:      job.CompletionDate,
		RepID:               rep.RepID,
		RepName:             rep.RepName,
		RepRole:             rep.RepRole,
		TierLabel:           rep.TierLabel,
		OverridePercent:     rep.OverridePercent,
		Status:              entity.StatusPendingReview,
		ApprovalStage:       entity.StagePendingManager,
		IsManagerSubmission: actor.CanReviewAsManager(),
	}
}

func (s *commissionServiceImpl) create(ctx context.Context, req *entity.CommissionRequest, actor entity.Actor) (*entity.CommissionRequest, error) {
	// Hard creation precondition: the submitter must have a resolvable
	// manager, directly or through a team assignment.
	_, ok, err := s.managers.ResolveManager(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Manager lookup failed", "submitter_id", actor.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, ErrManagerRequired
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.commissions.Create(txCtx, req); err != nil {
			return err
		}
		return s.statusLog.Append(txCtx, &entity.StatusLogEntry{
			RequestID:      req.ID,
			PreviousStatus: "",
			NewStatus:      req.Status,
			ChangedBy:      actor.ID,
			Notes:          "submitted for review",
			Timestamp:      s.clock(),
		})
	})
	if err != nil {
		s.logger.Error("Failed to create commission request", "error", err, "submitter_id", actor.ID)
		return nil, err
	}

	s.logger.Info("Commission request created",
		"id", req.ID, "variant", req.Variant, "submitter_id", actor.ID)
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeSubmitted, req.ID, actor.ID, notificationPayload(req, "")))
	return req, nil
}

// ResubmitSubmission re-enters a revision-required submission worksheet with
// corrected inputs. Only the original submitter may resubmit, and only while
// the status is exactly revision_required.
func (s *commissionServiceImpl) ResubmitSubmission(ctx context.Context, id int64, inputs calc.SubmissionInputs, actor entity.Actor) (*entity.CommissionRequest, error) {
	return s.resubmit(ctx, id, actor, func(req *entity.CommissionRequest) error {
		if errs := calc.ValidateSubmission(calc.SubmissionValidation{
			JobName: req.JobName,
			RepName: req.RepName,
			Inputs:  inputs,
		}); len(errs) > 0 {
			return errs
		}
		applySubmissionInputs(req, inputs)
		return nil
	})
}

// ResubmitDocument re-enters a revision-required document worksheet.
func (s *commissionServiceImpl) ResubmitDocument(ctx context.Context, id int64, inputs calc.DocumentInputs, actor entity.Actor) (*entity.CommissionRequest, error) {
	return s.resubmit(ctx, id, actor, func(req *entity.CommissionRequest) error {
		if errs := calc.ValidateDocument(calc.DocumentValidation{
			JobName:    req.JobName,
			JobAddress: req.JobAddress,
			RepName:    req.RepName,
			SplitLabel: req.TierLabel,
			Inputs:     inputs,
		}); len(errs) > 0 {
			return errs
		}
		applyDocumentInputs(req, inputs)
		return nil
	})
}

func (s *commissionServiceImpl) resubmit(ctx context.Context, id int64, actor entity.Actor, applyInputs func(*entity.CommissionRequest) error) (*entity.CommissionRequest, error) {
	req, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}

	if req.SubmitterID != actor.ID {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "resubmit this request"}
	}

	expectedVersion := req.Version
	prevStatus := req.Status

	machine, err := appwf.BuildCommissionStateMachine(req)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, domainwf.TriggerResubmit); err != nil {
		return nil, err
	}

	if err := applyInputs(req); err != nil {
		return nil, err
	}

	appwf.Apply(req, machine.State())
	req.RejectionReason = ""
	req.UpdatedAt = s.clock()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.commissions.Update(txCtx, req, expectedVersion); err != nil {
			return err
		}
		return s.statusLog.Append(txCtx, &entity.StatusLogEntry{
			RequestID:      req.ID,
			PreviousStatus: prevStatus,
			NewStatus:      req.Status,
			ChangedBy:      actor.ID,
			Notes:          "resubmitted with corrections",
			Timestamp:      s.clock(),
		})
	})
	if err != nil {
		s.logger.Error("Failed to resubmit commission request", "error", err, "id", id)
		return nil, err
	}

	s.logger.Info("Commission request resubmitted", "id", req.ID, "revision_count", req.RevisionCount)
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeSubmitted, req.ID, actor.ID, notificationPayload(req, prevStatus)))
	return req, nil
}

// Get retrieves a commission request by ID.
func (s *commissionServiceImpl) Get(ctx context.Context, id int64) (*entity.CommissionRequest, error) {
	req, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

// List retrieves commission requests, optionally filtered by status.
func (s *commissionServiceImpl) List(ctx context.Context, status string, limit, offset int) ([]*entity.CommissionRequest, error) {
	return s.commissions.List(ctx, status, limit, offset)
}

// History returns the append-only status log for a request, oldest first.
func (s *commissionServiceImpl) History(ctx context.Context, id int64) ([]*entity.StatusLogEntry, error) {
	return s.statusLog.ListByRequestID(ctx, id)
}

func applySubmissionInputs(req *entity.CommissionRequest, in calc.SubmissionInputs) {
	out := calc.ComputeSubmission(in)

	req.ContractAmount = in.ContractAmount
	req.SupplementsApproved = in.SupplementsApproved
	req.CommissionRate = in.CommissionRate
	req.AdvancesPaid = in.AdvancesPaid
	req.IsFlatFee = in.IsFlatFee
	req.FlatFeeAmount = in.FlatFeeAmount

	req.TotalJobRevenue = out.TotalJobRevenue
	req.GrossCommission = out.GrossCommission
	req.NetCommissionOwed = out.NetCommissionOwed
}

func applyDocumentInputs(req *entity.CommissionRequest, in calc.DocumentInputs) {
	out := calc.ComputeDocument(in)

	req.GrossContractTotal = in.GrossContractTotal
	req.OPPercent = in.OPPercent
	req.MaterialCost = in.MaterialCost
	req.LaborCost = in.LaborCost
	req.NegExpense1, req.NegExpense2, req.NegExpense3, req.NegExpense4 =
		in.NegExpenses[0], in.NegExpenses[1], in.NegExpenses[2], in.NegExpenses[3]
	req.PosExpense1, req.PosExpense2, req.PosExpense3, req.PosExpense4 =
		in.PosExpenses[0], in.PosExpenses[1], in.PosExpenses[2], in.PosExpenses[3]
	req.RepProfitPercent = in.RepProfitPercent

	req.OPAmount = out.OPAmount
	req.ContractNet = out.ContractNet
	req.NetProfit = out.NetProfit
	req.RepCommission = out.RepCommission
	req.CompanyProfit = out.CompanyProfit
}

// notificationPayload assembles the structured event body the notification
// dispatcher receives: job facts, amounts, identities, and the status change.
func notificationPayload(req *entity.CommissionRequest, prevStatus string) map[string]interface{} {
	return map[string]interface{}{
		"job_name":        req.JobName,
		"job_address":     req.JobAddress,
		"job_reference":   req.JobReference,
		"rep_id":          req.RepID,
		"rep_name":        req.RepName,
		"submitter_id":    req.SubmitterID,
		"variant":         req.Variant,
		"payable_amount":  req.PayableAmount().StringFixed(2),
		"previous_status": prevStatus,
		"new_status":      req.Status,
		"approval_stage":  req.ApprovalStage,
	}
}
