package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/modules/opct/domain/events"
	"github.com/transapp/opct/modules/opct/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/eventbus"
	"github.com/transapp/opct/pkg/serrors"
)

// RequestService mirrors the process workflow at single-request
// granularity. Each transition short-circuits when the new value equals
// the current one.
type RequestService struct {
	requests  request.Repository
	statuses  status.Repository
	programs  operationprogram.Repository
	logs      changelog.Repository
	publisher eventbus.EventBus
}

func NewRequestService(
	requests request.Repository,
	statuses status.Repository,
	programs operationprogram.Repository,
	logs changelog.Repository,
	publisher eventbus.EventBus,
) *RequestService {
	return &RequestService{
		requests:  requests,
		statuses:  statuses,
		programs:  programs,
		logs:      logs,
		publisher: publisher,
	}
}

func (s *RequestService) getRequest(ctx context.Context, id int64) (request.ChangeOPRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrRequestNotFound) {
			return request.ChangeOPRequest{}, serrors.NotFound("REQUEST_NOT_FOUND", "change request not found", err)
		}
		return request.ChangeOPRequest{}, err
	}
	return req, nil
}

func (s *RequestService) program(ctx context.Context, id *int64) (*operationprogram.OperationProgram, error) {
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

func (s *RequestService) GetByID(ctx context.Context, id int64) (request.ChangeOPRequest, error) {
	var req request.ChangeOPRequest
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.getRequest(txCtx, id)
		return err
	})
	if err != nil {
		return request.ChangeOPRequest{}, mapPgError(err)
	}
	return req, nil
}

func (s *RequestService) Logs(ctx context.Context, requestID int64) ([]changelog.RequestLog, error) {
	var logs []changelog.RequestLog
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.getRequest(txCtx, requestID); err != nil {
			return err
		}
		var err error
		logs, err = s.logs.RequestLogs(txCtx, requestID)
		return err
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return logs, nil
}

// ChangeOperationProgram swaps the request's program, logging OP_CHANGE
// unless the named program is already current.
func (s *RequestService) ChangeOperationProgram(ctx context.Context, requestID int64, newProgramID *int64) (request.ChangeOPRequest, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var (
		updated  request.ChangeOPRequest
		previous changelog.Snapshot
		next     changelog.Snapshot
		mutated  bool
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.getRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if sameProgram(req.OperationProgramID(), newProgramID) {
			updated = req
			return nil
		}

		currentProgram, err := s.program(txCtx, req.OperationProgramID())
		if err != nil {
			return err
		}
		newProgram, err := s.program(txCtx, newProgramID)
		if err != nil {
			return err
		}

		previous = changelog.OPSnapshot(currentProgram)
		next = changelog.OPSnapshot(newProgram)

		updated, err = s.requests.Update(txCtx, req.SetOperationProgram(newProgramID))
		if err != nil {
			return err
		}
		if err := s.logs.AppendRequestLog(txCtx, changelog.RequestLog{
			RequestID: updated.ID(),
			UserID:    actor.ID(),
			Kind:      changelog.OPChange,
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
		return request.ChangeOPRequest{}, mapPgError(err)
	}
	if mutated {
		s.publisher.Publish(events.RequestChanged{
			Request:  updated,
			Kind:     changelog.OPChange,
			Previous: previous,
			New:      next,
		})
	}
	return updated, nil
}

// ChangeStatus moves the request to another status row. The current
// status is a no-op.
func (s *RequestService) ChangeStatus(ctx context.Context, requestID, newStatusID int64) (request.ChangeOPRequest, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var (
		updated  request.ChangeOPRequest
		previous changelog.Snapshot
		next     changelog.Snapshot
		mutated  bool
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.getRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.StatusID() == newStatusID {
			updated = req
			return nil
		}

		newStatus, err := s.statuses.GetByID(txCtx, status.ScopeRequest, newStatusID)
		if err != nil {
			if errors.Is(err, persistence.ErrStatusNotFound) {
				return serrors.NotFound("STATUS_NOT_FOUND", "status not found", err)
			}
			return err
		}
		currentStatus, err := s.statuses.GetByID(txCtx, status.ScopeRequest, req.StatusID())
		if err != nil {
			return err
		}

		previous = changelog.StatusSnapshot(currentStatus.Name)
		next = changelog.StatusSnapshot(newStatus.Name)

		updated, err = s.requests.Update(txCtx, req.SetStatus(newStatus.ID))
		if err != nil {
			return err
		}
		if err := s.logs.AppendRequestLog(txCtx, changelog.RequestLog{
			RequestID: updated.ID(),
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
		return request.ChangeOPRequest{}, mapPgError(err)
	}
	if mutated {
		s.publisher.Publish(events.RequestChanged{
			Request:  updated,
			Kind:     changelog.StatusChange,
			Previous: previous,
			New:      next,
		})
	}
	return updated, nil
}

// ChangeReason rewrites the request's reason, logging REASON_CHANGE by
// display label. Setting the current reason writes nothing.
func (s *RequestService) ChangeReason(ctx context.Context, requestID int64, newReason request.Reason) (request.ChangeOPRequest, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}
	if !newReason.IsValid() {
		return request.ChangeOPRequest{}, serrors.Validation("INVALID_REASON", fmt.Sprintf("unknown reason: %q", newReason), nil)
	}

	var (
		updated  request.ChangeOPRequest
		previous changelog.Snapshot
		next     changelog.Snapshot
		mutated  bool
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.getRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Reason() == newReason {
			updated = req
			return nil
		}

		previous = changelog.ReasonSnapshot(req.Reason())
		next = changelog.ReasonSnapshot(newReason)

		updated, err = s.requests.Update(txCtx, req.SetReason(newReason))
		if err != nil {
			return err
		}
		if err := s.logs.AppendRequestLog(txCtx, changelog.RequestLog{
			RequestID: updated.ID(),
			UserID:    actor.ID(),
			Kind:      changelog.ReasonChange,
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
		return request.ChangeOPRequest{}, mapPgError(err)
	}
	if mutated {
		s.publisher.Publish(events.RequestChanged{
			Request:  updated,
			Kind:     changelog.ReasonChange,
			Previous: previous,
			New:      next,
		})
	}
	return updated, nil
}

// StatusCatalog lists the configured statuses for one scope and
// contract type.
func (s *RequestService) StatusCatalog(ctx context.Context, scope status.Scope, ct contracttype.ContractType) ([]status.Status, error) {
	statuses, err := s.statuses.GetAll(ctx, scope, ct)
	if err != nil {
		return nil, mapPgError(err)
	}
	return statuses, nil
}
