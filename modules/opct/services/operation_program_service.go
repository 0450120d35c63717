package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/serrors"
)

// OperationProgramService owns the OP catalog. Updates are audit-logged
// into a chained data log: the previous half of each new row is the new
// half of the latest existing row, so history replays as a list of
// states. A failed log write aborts the update.
type OperationProgramService struct {
	programs  operationprogram.Repository
	processes process.Repository
	requests  request.Repository
	logs      changelog.Repository
}

func NewOperationProgramService(
	programs operationprogram.Repository,
	processes process.Repository,
	requests request.Repository,
	logs changelog.Repository,
) *OperationProgramService {
	return &OperationProgramService{
		programs:  programs,
		processes: processes,
		requests:  requests,
		logs:      logs,
	}
}

func opDataSnapshot(p operationprogram.OperationProgram) changelog.Snapshot {
	return changelog.Snapshot{
		"date":    p.StartDateString(),
		"op_type": p.ProgramType().Name,
	}
}

func (s *OperationProgramService) GetPaginated(ctx context.Context, params *operationprogram.FindParams) ([]operationprogram.OperationProgram, int64, error) {
	var (
		programs []operationprogram.OperationProgram
		total    int64
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		programs, total, err = s.programs.GetPaginated(txCtx, params)
		return err
	})
	if err != nil {
		return nil, 0, mapPgError(err)
	}
	return programs, total, nil
}

func (s *OperationProgramService) GetByID(ctx context.Context, id int64) (operationprogram.OperationProgram, error) {
	var p operationprogram.OperationProgram
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		p, err = s.programs.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, persistence.ErrOperationProgramNotFound) {
			return operationprogram.OperationProgram{}, serrors.NotFound("OP_NOT_FOUND", "operation program not found", err)
		}
		return operationprogram.OperationProgram{}, mapPgError(err)
	}
	return p, nil
}

func (s *OperationProgramService) Logs(ctx context.Context, id int64) ([]changelog.OPDataLog, error) {
	var logs []changelog.OPDataLog
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.programs.GetByID(txCtx, id); err != nil {
			if errors.Is(err, persistence.ErrOperationProgramNotFound) {
				return serrors.NotFound("OP_NOT_FOUND", "operation program not found", err)
			}
			return err
		}
		var err error
		logs, err = s.logs.OPDataLogs(txCtx, id)
		return err
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return logs, nil
}

func (s *OperationProgramService) ProgramTypes(ctx context.Context) ([]operationprogram.ProgramType, error) {
	var types []operationprogram.ProgramType
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		types, err = s.programs.GetProgramTypes(txCtx)
		return err
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return types, nil
}

func (s *OperationProgramService) Create(ctx context.Context, startDate time.Time, programTypeID int64) (operationprogram.OperationProgram, error) {
	var created operationprogram.OperationProgram
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		programType, err := s.programs.GetProgramTypeByID(txCtx, programTypeID)
		if err != nil {
			if errors.Is(err, persistence.ErrProgramTypeNotFound) {
				return serrors.Validation("PROGRAM_TYPE_NOT_FOUND", "program type not found", err)
			}
			return err
		}
		created, err = s.programs.Create(txCtx, operationprogram.New(startDate, programType))
		return err
	})
	if err != nil {
		return operationprogram.OperationProgram{}, mapPgError(err)
	}
	return created, nil
}

// Update edits a program's fields and appends the chained data log row
// in the same transaction.
func (s *OperationProgramService) Update(ctx context.Context, id int64, startDate time.Time, programTypeID int64) (operationprogram.OperationProgram, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return operationprogram.OperationProgram{}, serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	var updated operationprogram.OperationProgram
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.programs.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, persistence.ErrOperationProgramNotFound) {
				return serrors.NotFound("OP_NOT_FOUND", "operation program not found", err)
			}
			return err
		}

		var previous changelog.Snapshot
		latest, err := s.logs.LatestOPDataLog(txCtx, id)
		if err != nil {
			return err
		}
		if latest != nil {
			previous = latest.New.Clone()
		} else {
			previous = opDataSnapshot(current)
		}

		programType, err := s.programs.GetProgramTypeByID(txCtx, programTypeID)
		if err != nil {
			if errors.Is(err, persistence.ErrProgramTypeNotFound) {
				return serrors.Validation("PROGRAM_TYPE_NOT_FOUND", "program type not found", err)
			}
			return err
		}

		updated, err = s.programs.Update(txCtx, current.SetStartDate(startDate).SetProgramType(programType))
		if err != nil {
			return err
		}

		next := previous.Clone()
		next["date"] = updated.StartDateString()
		next["op_type"] = updated.ProgramType().Name
		return s.logs.AppendOPDataLog(txCtx, changelog.OPDataLog{
			OperationProgramID: updated.ID(),
			UserID:             actor.ID(),
			Previous:           previous,
			New:                next,
			CreatedAt:          time.Now(),
		})
	})
	if err != nil {
		return operationprogram.OperationProgram{}, mapPgError(err)
	}
	return updated, nil
}

// Delete refuses to remove a program still referenced by any change
// process or request.
func (s *OperationProgramService) Delete(ctx context.Context, id int64) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.programs.GetByID(txCtx, id); err != nil {
			if errors.Is(err, persistence.ErrOperationProgramNotFound) {
				return serrors.NotFound("OP_NOT_FOUND", "operation program not found", err)
			}
			return err
		}
		requestCount, err := s.requests.CountByOperationProgram(txCtx, id)
		if err != nil {
			return err
		}
		processCount, err := s.processes.CountByOperationProgram(txCtx, id)
		if err != nil {
			return err
		}
		if requestCount > 0 || processCount > 0 {
			return serrors.Conflict("OP_IN_USE", "operation program is referenced by change requests or processes", nil)
		}
		return s.programs.Delete(txCtx, id)
	})
	return mapPgError(err)
}
