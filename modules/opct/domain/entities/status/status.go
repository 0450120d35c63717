package status

import (
	"context"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
)

// InitialName is the required first status of every workflow. It is
// resolved by (contract type, name) lookup at creation time, never by a
// hardcoded id.
const InitialName = "Evaluando admisibilidad"

// Scope separates the process status catalog from the request one. The
// two catalogs evolve independently as configuration data.
type Scope string

const (
	ScopeProcess Scope = "process"
	ScopeRequest Scope = "request"
)

type Status struct {
	ID           int64
	ContractType contracttype.ContractType
	Scope        Scope
	Name         string
}

type Repository interface {
	GetByID(ctx context.Context, scope Scope, id int64) (Status, error)
	GetByName(ctx context.Context, scope Scope, ct contracttype.ContractType, name string) (Status, error)
	GetAll(ctx context.Context, scope Scope, ct contracttype.ContractType) ([]Status, error)
}
