package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
	corepersistence "github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/message"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/modules/opct/domain/events"
	"github.com/transapp/opct/modules/opct/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/eventbus"
	"github.com/transapp/opct/pkg/serrors"
)

type CreateRequestInput struct {
	Title              string
	Message            string
	Reason             request.Reason
	OperationProgramID *int64
	RelatedRoutes      []string
	RelatedRequestIDs  []int64
}

type CreateProcessInput struct {
	Title              string
	Message            string
	CounterpartID      int64
	OperationProgramID *int64
	Requests           []CreateRequestInput
}

type UpdateRequestInput struct {
	ID                 int64
	Title              string
	Message            string
	Reason             request.Reason
	OperationProgramID *int64
	StatusID           int64
	RelatedRoutes      []string
}

type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ProcessDetail is the read model for one process with its children.
type ProcessDetail struct {
	Process  process.ChangeOPProcess
	Requests []request.ChangeOPRequest
	Logs     []changelog.ProcessLog
	Messages []message.Message
}

// ProcessService orchestrates the change process workflow. Every
// mutation runs inside one transaction: the entity change and its audit
// log row land together or not at all.
type ProcessService struct {
	processes     process.Repository
	requests      request.Repository
	statuses      status.Repository
	programs      operationprogram.Repository
	logs          changelog.Repository
	messages      message.Repository
	organizations organization.Repository
	storage       persistence.FileStorage
	deadlines     DeadlineRecalculator
	publisher     eventbus.EventBus
	maxFileSize   int64
}

func NewProcessService(
	processes process.Repository,
	requests request.Repository,
	statuses status.Repository,
	programs operationprogram.Repository,
	logs changelog.Repository,
	messages message.Repository,
	organizations organization.Repository,
	storage persistence.FileStorage,
	deadlines DeadlineRecalculator,
	publisher eventbus.EventBus,
	maxFileSize int64,
) *ProcessService {
	return &ProcessService{
		processes:     processes,
		requests:      requests,
		statuses:      statuses,
		programs:      programs,
		logs:          logs,
		messages:      messages,
		organizations: organizations,
		storage:       storage,
		deadlines:     deadlines,
		publisher:     publisher,
		maxFileSize:   maxFileSize,
	}
}

func (s *ProcessService) program(ctx context.Context, id *int64) (*operationprogram.OperationProgram, error) {
	if id == nil {
		return nil, nil
	}
	p, err := s.programs.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, persistence.ErrOperationProgramNotFound) {
			return nil, serrors.NotFound("OP_NOT_FOUND", "operation program not found", err)
		}
		return nil, err
	}
	return &p, nil
}

func (s *ProcessService) getProcess(ctx context.Context, id int64) (process.ChangeOPProcess, error) {
	p, err := s.processes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrProcessNotFound) {
			return process.ChangeOPProcess{}, serrors.NotFound("PROCESS_NOT_FOUND", "change process not found", err)
		}
		return process.ChangeOPProcess{}, err
	}
	return p, nil
}

// Create starts a new change process carrying at least one nested
// request. The contract type comes from the actor's organization; an
// organization under BOTH contracts adopts the counterpart's type.
// Otherwise the actor's organization must be the counterpart's
// registered default counterpart.
func (s *ProcessService) Create(ctx context.Context, in CreateProcessInput) (ProcessDetail, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return ProcessDetail{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}
	if len(in.Requests) == 0 {
		return ProcessDetail{}, serrors.Validation("EMPTY_REQUESTS", "a process must carry at least one request", nil)
	}

	var detail ProcessDetail
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		counterpart, err := s.organizations.GetByID(txCtx, in.CounterpartID)
		if err != nil {
			if errors.Is(err, corepersistence.ErrOrganizationNotFound) {
				return serrors.Validation("COUNTERPART_NOT_FOUND", "counterpart organization not found", err)
			}
			return err
		}
		actorOrg, err := s.organizations.GetByID(txCtx, actor.OrganizationID())
		if err != nil {
			return err
		}

		ct := contracttype.Resolve(actorOrg.ContractType(), counterpart.ContractType())
		if actorOrg.ContractType() != contracttype.Both && !actorOrg.IsDefaultCounterpartOf(counterpart) {
			return serrors.Validation("UNAUTHORIZED_COUNTERPART", "organization may not open processes against this counterpart", nil)
		}

		initial, err := s.statuses.GetByName(txCtx, status.ScopeProcess, ct, status.InitialName)
		if err != nil {
			if errors.Is(err, persistence.ErrStatusNotFound) {
				return serrors.Internal("initial process status missing from catalog", err)
			}
			return err
		}

		op, err := s.program(txCtx, in.OperationProgramID)
		if err != nil {
			return err
		}

		p := process.New(in.Title, in.Message, counterpart.ID(), ct, actor.ID()).SetStatus(initial.ID)
		if op != nil {
			startDate := op.StartDate()
			id := op.ID()
			p = p.SetOperationProgram(&id, &startDate)
		}
		created, err := s.processes.Create(txCtx, p)
		if err != nil {
			return err
		}

		requestInitial, err := s.statuses.GetByName(txCtx, status.ScopeRequest, ct, status.InitialName)
		if err != nil {
			if errors.Is(err, persistence.ErrStatusNotFound) {
				return serrors.Internal("initial request status missing from catalog", err)
			}
			return err
		}

		createdRequests := make([]request.ChangeOPRequest, 0, len(in.Requests))
		for _, reqIn := range in.Requests {
			req, err := s.createRequestRow(txCtx, created.ID(), actor.ID(), requestInitial.ID, reqIn)
			if err != nil {
				return err
			}
			createdRequests = append(createdRequests, req)
		}

		detail = ProcessDetail{Process: created, Requests: createdRequests}
		return nil
	})
	if err != nil {
		return ProcessDetail{}, mapPgError(err)
	}
	s.publisher.Publish(events.ProcessCreated{Process: detail.Process, Requests: detail.Requests})
	return detail, nil
}

// createRequestRow persists one request and attaches its relations in a
// second phase, so related rows need not exist before the parent row.
func (s *ProcessService) createRequestRow(
	ctx context.Context,
	processID, creatorID, statusID int64,
	in CreateRequestInput,
) (request.ChangeOPRequest, error) {
	if !in.Reason.IsValid() {
		return request.ChangeOPRequest{}, serrors.Validation("INVALID_REASON", fmt.Sprintf("unknown reason: %q", in.Reason), nil)
	}
	if _, err := s.program(ctx, in.OperationProgramID); err != nil {
		return request.ChangeOPRequest{}, err
	}

	req := request.New(processID, creatorID, in.Title, in.Message, in.Reason).
		SetOperationProgram(in.OperationProgramID).
		SetStatus(statusID).
		SetRelatedRoutes(in.RelatedRoutes)
	created, err := s.requests.Create(ctx, req)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}

	if len(in.RelatedRequestIDs) > 0 {
		for _, relatedID := range in.RelatedRequestIDs {
			if _, err := s.requests.GetByID(ctx, relatedID); err != nil {
				if errors.Is(err, persistence.ErrRequestNotFound) {
					return request.ChangeOPRequest{}, serrors.NotFound("REQUEST_NOT_FOUND", fmt.Sprintf("related request %d not found", relatedID), err)
				}
				return request.ChangeOPRequest{}, err
			}
		}
		if err := s.requests.SetRelatedRequests(ctx, created.ID(), in.RelatedRequestIDs); err != nil {
			return request.ChangeOPRequest{}, err
		}
		created = created.SetRelatedRequestIDs(in.RelatedRequestIDs)
	}
	return created, nil
}

func (s *ProcessService) GetPaginated(ctx context.Context, params *process.FindParams) ([]process.ChangeOPProcess, int64, error) {
	var (
		processes []process.ChangeOPProcess
		total     int64
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		processes, total, err = s.processes.GetPaginated(txCtx, params)
		return err
	})
	if err != nil {
		return nil, 0, mapPgError(err)
	}
	return processes, total, nil
}

func (s *ProcessService) GetByID(ctx context.Context, id int64) (ProcessDetail, error) {
	var detail ProcessDetail
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.getProcess(txCtx, id)
		if err != nil {
			return err
		}
		requests, err := s.requests.GetByProcess(txCtx, id)
		if err != nil {
			return err
		}
		logs, err := s.logs.ProcessLogs(txCtx, id)
		if err != nil {
			return err
		}
		messages, err := s.messages.GetByProcess(txCtx, id)
		if err != nil {
			return err
		}
		detail = ProcessDetail{Process: p, Requests: requests, Logs: logs, Messages: messages}
		return nil
	})
	if err != nil {
		return ProcessDetail{}, mapPgError(err)
	}
	return detail, nil
}

// ChangeOperationProgram repoints the process at another program. A
// call naming the already-current program returns without writing
// anything. The release date follows the new program only when
// updateDeadlines is set or when the program is being cleared.
func (s *ProcessService) ChangeOperationProgram(
	ctx context.Context,
	processID int64,
	newProgramID *int64,
	updateDeadlines bool,
) (process.ChangeOPProcess, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return process.ChangeOPProcess{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var (
		updated  process.ChangeOPProcess
		previous changelog.Snapshot
		next     changelog.Snapshot
		mutated  bool
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.getProcess(txCtx, processID)
		if err != nil {
			return err
		}

		current := p.OperationProgramID()
		if sameProgram(current, newProgramID) {
			updated = p
			return nil
		}

		currentProgram, err := s.program(txCtx, current)
		if err != nil {
			return err
		}
		newProgram, err := s.program(txCtx, newProgramID)
		if err != nil {
			return err
		}

		previous = changelog.OPSnapshot(currentProgram)
		next = changelog.OPSnapshot(newProgram)

		cascade := updateDeadlines || newProgramID == nil
		if cascade {
			var startDate *time.Time
			if newProgram != nil {
				d := newProgram.StartDate()
				startDate = &d
			}
			p = p.SetOperationProgram(newProgramID, startDate)
		} else {
			p = p.KeepReleaseDate(newProgramID)
		}
		updated, err = s.processes.Update(txCtx, p)
		if err != nil {
			return err
		}

		kind := changelog.OPChange
		if updateDeadlines {
			kind = changelog.OPChangeWithDeadlineStamp
			next = next.Clone()
			next["update_deadlines"] = true
		}
		if err := s.logs.AppendProcessLog(txCtx, changelog.ProcessLog{
			ProcessID: updated.ID(),
			UserID:    actor.ID(),
			Kind:      kind,
			Previous:  previous,
			New:       next,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}

		if cascade {
			if err := s.deadlines.Recalculate(txCtx, updated, newProgram); err != nil {
				return err
			}
		}
		mutated = true
		return nil
	})
	if err != nil {
		return process.ChangeOPProcess{}, mapPgError(err)
	}
	if mutated {
		s.publisher.Publish(events.ProcessOPChanged{
			Process:         updated,
			Previous:        previous,
			New:             next,
			UpdateDeadlines: updateDeadlines,
		})
	}
	return updated, nil
}

func sameProgram(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ChangeStatus moves the process to another status row. Selecting the
// current status is a no-op and writes no log.
func (s *ProcessService) ChangeStatus(ctx context.Context, processID, newStatusID int64) (process.ChangeOPProcess, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return process.ChangeOPProcess{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var (
		updated  process.ChangeOPProcess
		previous changelog.Snapshot
		next     changelog.Snapshot
		mutated  bool
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.getProcess(txCtx, processID)
		if err != nil {
			return err
		}
		if p.StatusID() == newStatusID {
			updated = p
			return nil
		}

		newStatus, err := s.statuses.GetByID(txCtx, status.ScopeProcess, newStatusID)
		if err != nil {
			if errors.Is(err, persistence.ErrStatusNotFound) {
				return serrors.NotFound("STATUS_NOT_FOUND", "status not found", err)
			}
			return err
		}
		currentStatus, err := s.statuses.GetByID(txCtx, status.ScopeProcess, p.StatusID())
		if err != nil {
			return err
		}

		previous = changelog.StatusSnapshot(currentStatus.Name)
		next = changelog.StatusSnapshot(newStatus.Name)

		updated, err = s.processes.Update(txCtx, p.SetStatus(newStatus.ID))
		if err != nil {
			return err
		}
		if err := s.logs.AppendProcessLog(txCtx, changelog.ProcessLog{
			ProcessID: updated.ID(),
			UserID:    actor.ID(),
			Kind:      changelog.StatusChange,
			Previous:  previous,
			New:       next,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		mutated = true
		return nil
	})
	if err != nil {
		return process.ChangeOPProcess{}, mapPgError(err)
	}
	if mutated {
		s.publisher.Publish(events.ProcessStatusChanged{Process: updated, Previous: previous, New: next})
	}
	return updated, nil
}

// AddMessage attaches a discussion entry with optional files. The whole
// write is one transaction: an invalid related request or oversized
// file leaves no message, file or relation rows behind.
func (s *ProcessService) AddMessage(
	ctx context.Context,
	processID int64,
	text string,
	files []FileUpload,
	relatedRequestIDs []int64,
) (message.Message, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return message.Message{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}
	if len(relatedRequestIDs) == 0 {
		return message.Message{}, serrors.Validation("EMPTY_RELATED_REQUESTS", "a message must reference at least one request", nil)
	}
	if text == "" && len(files) == 0 {
		return message.Message{}, serrors.Validation("EMPTY_MESSAGE", "a message needs text or at least one file", nil)
	}
	for _, f := range files {
		if f.Size > s.maxFileSize {
			return message.Message{}, serrors.Validation(
				"FILE_TOO_LARGE",
				fmt.Sprintf("file %q exceeds the %d byte limit", f.Filename, s.maxFileSize),
				nil,
			)
		}
	}

	var stored []persistence.StoredFile
	cleanup := func() {
		for _, f := range stored {
			_ = s.storage.Remove(f.Path)
		}
	}

	var msg message.Message
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.getProcess(txCtx, processID); err != nil {
			return err
		}
		for _, requestID := range relatedRequestIDs {
			req, err := s.requests.GetByID(txCtx, requestID)
			if err != nil {
				if errors.Is(err, persistence.ErrRequestNotFound) {
					return serrors.Validation("REQUEST_NOT_IN_PROCESS", fmt.Sprintf("request %d not found", requestID), err)
				}
				return err
			}
			if req.ProcessID() != processID {
				return serrors.Validation("REQUEST_NOT_IN_PROCESS", fmt.Sprintf("request %d does not belong to process %d", requestID, processID), nil)
			}
		}

		msg, err = s.messages.Create(txCtx, message.Message{
			ProcessID:         processID,
			CreatorID:         actor.ID(),
			Text:              text,
			RelatedRequestIDs: relatedRequestIDs,
		})
		if err != nil {
			return err
		}

		for _, f := range files {
			sf, err := s.storage.Save(f.Filename, io.LimitReader(f.Content, s.maxFileSize+1))
			if err != nil {
				return err
			}
			stored = append(stored, sf)
			if sf.Size > s.maxFileSize {
				return serrors.Validation(
					"FILE_TOO_LARGE",
					fmt.Sprintf("file %q exceeds the %d byte limit", f.Filename, s.maxFileSize),
					nil,
				)
			}
			if _, err := s.messages.AddFile(txCtx, message.File{
				MessageID: msg.ID,
				Filename:  f.Filename,
				Size:      sf.Size,
				MimeType:  sf.MimeType,
				Path:      sf.Path,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return message.Message{}, mapPgError(err)
	}
	s.publisher.Publish(events.MessageAdded{ProcessID: processID, MessageID: msg.ID})
	return msg, nil
}

// CreateRequest adds one request to an existing process and logs its
// creation against the request with an empty previous snapshot.
func (s *ProcessService) CreateRequest(ctx context.Context, processID int64, in CreateRequestInput) (request.ChangeOPRequest, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var created request.ChangeOPRequest
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.getProcess(txCtx, processID)
		if err != nil {
			return err
		}
		initial, err := s.statuses.GetByName(txCtx, status.ScopeRequest, p.ContractType(), status.InitialName)
		if err != nil {
			if errors.Is(err, persistence.ErrStatusNotFound) {
				return serrors.Internal("initial request status missing from catalog", err)
			}
			return err
		}
		created, err = s.createRequestRow(txCtx, processID, actor.ID(), initial.ID, in)
		if err != nil {
			return err
		}

		op, err := s.program(txCtx, created.OperationProgramID())
		if err != nil {
			return err
		}
		return s.logs.AppendRequestLog(txCtx, changelog.RequestLog{
			RequestID: created.ID(),
			UserID:    actor.ID(),
			Kind:      changelog.RequestCreation,
			Previous:  changelog.Snapshot{},
			New:       changelog.RequestSnapshotWithStatus(created, op, initial.Name),
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return request.ChangeOPRequest{}, mapPgError(err)
	}
	s.publisher.Publish(events.RequestCreated{Request: created})
	return created, nil
}

// UpdateRequests applies a batch of partial request updates in one
// transaction. A REQUEST_UPDATE log row is written per request only
// when one of the tracked fields actually changed.
func (s *ProcessService) UpdateRequests(ctx context.Context, processID int64, updates []UpdateRequestInput) ([]request.ChangeOPRequest, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var results []request.ChangeOPRequest
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.getProcess(txCtx, processID); err != nil {
			return err
		}
		for _, in := range updates {
			updated, err := s.updateRequestRow(txCtx, processID, actor.ID(), in)
			if err != nil {
				return err
			}
			results = append(results, updated)
		}
		return nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return results, nil
}

func (s *ProcessService) updateRequestRow(
	ctx context.Context,
	processID, actorID int64,
	in UpdateRequestInput,
) (request.ChangeOPRequest, error) {
	req, err := s.requests.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrRequestNotFound) {
			return request.ChangeOPRequest{}, serrors.NotFound("REQUEST_NOT_FOUND", fmt.Sprintf("request %d not found", in.ID), err)
		}
		return request.ChangeOPRequest{}, err
	}
	if req.ProcessID() != processID {
		return request.ChangeOPRequest{}, serrors.Validation("REQUEST_NOT_IN_PROCESS", fmt.Sprintf("request %d does not belong to process %d", in.ID, processID), nil)
	}
	if !in.Reason.IsValid() {
		return request.ChangeOPRequest{}, serrors.Validation("INVALID_REASON", fmt.Sprintf("unknown reason: %q", in.Reason), nil)
	}

	previousOP, err := s.program(ctx, req.OperationProgramID())
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	previousStatus, err := s.statuses.GetByID(ctx, status.ScopeRequest, req.StatusID())
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	before := changelog.RequestSnapshotWithStatus(req, previousOP, previousStatus.Name)

	newStatus, err := s.statuses.GetByID(ctx, status.ScopeRequest, in.StatusID)
	if err != nil {
		if errors.Is(err, persistence.ErrStatusNotFound) {
			return request.ChangeOPRequest{}, serrors.NotFound("STATUS_NOT_FOUND", "status not found", err)
		}
		return request.ChangeOPRequest{}, err
	}
	newOP, err := s.program(ctx, in.OperationProgramID)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}

	req = req.SetTitle(in.Title).
		SetMessage(in.Message).
		SetReason(in.Reason).
		SetOperationProgram(in.OperationProgramID).
		SetStatus(newStatus.ID).
		SetRelatedRoutes(in.RelatedRoutes)
	updated, err := s.requests.Update(ctx, req)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	after := changelog.RequestSnapshotWithStatus(updated, newOP, newStatus.Name)

	if !before.Equal(after) {
		if err := s.logs.AppendRequestLog(ctx, changelog.RequestLog{
			RequestID: updated.ID(),
			UserID:    actorID,
			Kind:      changelog.RequestUpdate,
			Previous:  before,
			New:       after,
			CreatedAt: time.Now(),
		}); err != nil {
			return request.ChangeOPRequest{}, err
		}
	}
	return updated, nil
}

// ChangeRelatedRequests replaces a request's full related-requests set.
// The replacement is deliberately not audit-logged.
func (s *ProcessService) ChangeRelatedRequests(ctx context.Context, processID, requestID int64, relatedIDs []int64) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.GetByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, persistence.ErrRequestNotFound) {
				return serrors.NotFound("REQUEST_NOT_FOUND", fmt.Sprintf("request %d not found", requestID), err)
			}
			return err
		}
		if req.ProcessID() != processID {
			return serrors.Validation("REQUEST_NOT_IN_PROCESS", fmt.Sprintf("request %d does not belong to process %d", requestID, processID), nil)
		}
		for _, relatedID := range relatedIDs {
			if _, err := s.requests.GetByID(txCtx, relatedID); err != nil {
				if errors.Is(err, persistence.ErrRequestNotFound) {
					return serrors.NotFound("REQUEST_NOT_FOUND", fmt.Sprintf("related request %d not found", relatedID), err)
				}
				return err
			}
		}
		return s.requests.SetRelatedRequests(txCtx, requestID, relatedIDs)
	})
	return mapPgError(err)
}

// MessageFiles lists the attachments of one message.
func (s *ProcessService) MessageFiles(ctx context.Context, messageID int64) ([]message.File, error) {
	var files []message.File
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		files, err = s.messages.FilesByMessage(txCtx, messageID)
		return err
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return files, nil
}
