package operationprogram

import (
	"context"
	"time"
)

type FindParams struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]OperationProgram, int64, error)
	GetByID(ctx context.Context, id int64) (OperationProgram, error)
	GetByStartDate(ctx context.Context, startDate time.Time) (OperationProgram, error)
	Create(ctx context.Context, program OperationProgram) (OperationProgram, error)
	Update(ctx context.Context, program OperationProgram) (OperationProgram, error)
	Delete(ctx context.Context, id int64) error

	GetProgramTypes(ctx context.Context) ([]ProgramType, error)
	GetProgramTypeByID(ctx context.Context, id int64) (ProgramType, error)
}
