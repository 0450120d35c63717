package operationprogram

import "time"

// ProgramType is a lookup row naming the kind of operation program
// (for example "Base" or "Modificado").
type ProgramType struct {
	ID   int64
	Name string
}

// OperationProgram is a scheduled transit service configuration
// effective from its start date. Start dates are unique.
type OperationProgram struct {
	id          int64
	startDate   time.Time
	programType ProgramType
	createdAt   time.Time
}

func New(startDate time.Time, programType ProgramType) OperationProgram {
	return OperationProgram{
		startDate:   startDate,
		programType: programType,
	}
}

func Hydrate(id int64, startDate time.Time, programType ProgramType, createdAt time.Time) OperationProgram {
	return OperationProgram{
		id:          id,
		startDate:   startDate,
		programType: programType,
		createdAt:   createdAt,
	}
}

func (p OperationProgram) ID() int64                { return p.id }
func (p OperationProgram) StartDate() time.Time     { return p.startDate }
func (p OperationProgram) ProgramType() ProgramType { return p.programType }
func (p OperationProgram) CreatedAt() time.Time     { return p.createdAt }

func (p OperationProgram) SetStartDate(d time.Time) OperationProgram {
	p.startDate = d
	return p
}

func (p OperationProgram) SetProgramType(t ProgramType) OperationProgram {
	p.programType = t
	return p
}

// StartDateString renders the start date the way logs and API payloads
// carry it.
func (p OperationProgram) StartDateString() string {
	return p.startDate.Format("2006-01-02")
}
