package process

import (
	"time"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
)

// ChangeOPProcess groups the change requests one organization proposes
// to another for a given operation program. The process carries the
// workflow status; requests carry their own.
//
// Invariant: releaseDate mirrors the associated operation program's
// start date. Both are set or both are nil, never one without the other.
type ChangeOPProcess struct {
	id               int64
	title            string
	message          string
	counterpartID    int64
	contractType     contracttype.ContractType
	creatorID        int64
	statusID         int64
	operationProgram *int64
	releaseDate      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

func New(title, message string, counterpartID int64, ct contracttype.ContractType, creatorID int64) ChangeOPProcess {
	return ChangeOPProcess{
		title:         title,
		message:       message,
		counterpartID: counterpartID,
		contractType:  ct,
		creatorID:     creatorID,
	}
}

func Hydrate(
	id int64,
	title, message string,
	counterpartID int64,
	ct contracttype.ContractType,
	creatorID, statusID int64,
	operationProgram *int64,
	releaseDate *time.Time,
	createdAt, updatedAt time.Time,
) ChangeOPProcess {
	return ChangeOPProcess{
		id:               id,
		title:            title,
		message:          message,
		counterpartID:    counterpartID,
		contractType:     ct,
		creatorID:        creatorID,
		statusID:         statusID,
		operationProgram: operationProgram,
		releaseDate:      releaseDate,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (p ChangeOPProcess) ID() int64                               { return p.id }
func (p ChangeOPProcess) Title() string                           { return p.title }
func (p ChangeOPProcess) Message() string                         { return p.message }
func (p ChangeOPProcess) CounterpartID() int64                    { return p.counterpartID }
func (p ChangeOPProcess) ContractType() contracttype.ContractType { return p.contractType }
func (p ChangeOPProcess) CreatorID() int64                        { return p.creatorID }
func (p ChangeOPProcess) StatusID() int64                         { return p.statusID }
func (p ChangeOPProcess) OperationProgramID() *int64              { return p.operationProgram }
func (p ChangeOPProcess) ReleaseDate() *time.Time                 { return p.releaseDate }
func (p ChangeOPProcess) CreatedAt() time.Time                    { return p.createdAt }
func (p ChangeOPProcess) UpdatedAt() time.Time                    { return p.updatedAt }

func (p ChangeOPProcess) SetStatus(statusID int64) ChangeOPProcess {
	p.statusID = statusID
	return p
}

// SetOperationProgram points the process at a program and keeps the
// release date in lock step. A nil id clears both.
func (p ChangeOPProcess) SetOperationProgram(id *int64, startDate *time.Time) ChangeOPProcess {
	p.operationProgram = id
	if id == nil {
		p.releaseDate = nil
	} else {
		p.releaseDate = startDate
	}
	return p
}

// KeepReleaseDate reassigns the program without touching the release
// date. Used when deadlines are deliberately not updated.
func (p ChangeOPProcess) KeepReleaseDate(id *int64) ChangeOPProcess {
	p.operationProgram = id
	return p
}
