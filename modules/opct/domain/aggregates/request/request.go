package request

import "time"

// ChangeOPRequest is one proposed modification nested under a change
// process. Requests only exist as children of a process and are never
// hard-deleted by the workflow.
type ChangeOPRequest struct {
	id                int64
	processID         int64
	creatorID         int64
	title             string
	message           string
	reason            Reason
	operationProgram  *int64
	statusID          int64
	relatedRoutes     []string
	relatedRequestIDs []int64
	createdAt         time.Time
	updatedAt         time.Time
}

func New(processID, creatorID int64, title, message string, reason Reason) ChangeOPRequest {
	return ChangeOPRequest{
		processID: processID,
		creatorID: creatorID,
		title:     title,
		message:   message,
		reason:    reason,
	}
}

func Hydrate(
	id, processID, creatorID int64,
	title, message string,
	reason Reason,
	operationProgram *int64,
	statusID int64,
	relatedRoutes []string,
	relatedRequestIDs []int64,
	createdAt, updatedAt time.Time,
) ChangeOPRequest {
	return ChangeOPRequest{
		id:                id,
		processID:         processID,
		creatorID:         creatorID,
		title:             title,
		message:           message,
		reason:            reason,
		operationProgram:  operationProgram,
		statusID:          statusID,
		relatedRoutes:     relatedRoutes,
		relatedRequestIDs: relatedRequestIDs,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (r ChangeOPRequest) ID() int64                  { return r.id }
func (r ChangeOPRequest) ProcessID() int64           { return r.processID }
func (r ChangeOPRequest) CreatorID() int64           { return r.creatorID }
func (r ChangeOPRequest) Title() string              { return r.title }
func (r ChangeOPRequest) Message() string            { return r.message }
func (r ChangeOPRequest) Reason() Reason             { return r.reason }
func (r ChangeOPRequest) OperationProgramID() *int64 { return r.operationProgram }
func (r ChangeOPRequest) StatusID() int64            { return r.statusID }
func (r ChangeOPRequest) RelatedRoutes() []string    { return r.relatedRoutes }
func (r ChangeOPRequest) RelatedRequestIDs() []int64 { return r.relatedRequestIDs }
func (r ChangeOPRequest) CreatedAt() time.Time       { return r.createdAt }
func (r ChangeOPRequest) UpdatedAt() time.Time       { return r.updatedAt }

func (r ChangeOPRequest) SetTitle(title string) ChangeOPRequest {
	r.title = title
	return r
}

func (r ChangeOPRequest) SetMessage(message string) ChangeOPRequest {
	r.message = message
	return r
}

func (r ChangeOPRequest) SetReason(reason Reason) ChangeOPRequest {
	r.reason = reason
	return r
}

func (r ChangeOPRequest) SetOperationProgram(id *int64) ChangeOPRequest {
	r.operationProgram = id
	return r
}

func (r ChangeOPRequest) SetStatus(statusID int64) ChangeOPRequest {
	r.statusID = statusID
	return r
}

func (r ChangeOPRequest) SetRelatedRoutes(routes []string) ChangeOPRequest {
	r.relatedRoutes = routes
	return r
}

func (r ChangeOPRequest) SetRelatedRequestIDs(ids []int64) ChangeOPRequest {
	r.relatedRequestIDs = ids
	return r
}
