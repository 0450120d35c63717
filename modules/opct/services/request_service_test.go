package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/modules/opct/domain/events"
)

func TestRequestChangeOperationProgram(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	seedProgram(e, 10, "2024-07-01")
	svc := e.requestService()

	updated, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), req.ID(), int64Ptr(10))
	require.NoError(t, err)
	require.Equal(t, int64(10), *updated.OperationProgramID())

	require.Len(t, e.logs.requestLogs, 1)
	log := e.logs.requestLogs[0]
	require.Equal(t, changelog.OPChange, log.Kind)
	require.Equal(t, changelog.Snapshot{"date": "", "type": ""}, log.Previous)
	require.Equal(t, changelog.Snapshot{"date": "2024-07-01", "type": "Base"}, log.New)

	require.Len(t, e.bus.published, 1)
	event := e.bus.published[0].(events.RequestChanged)
	require.Equal(t, changelog.OPChange, event.Kind)
}

func TestRequestChangeOperationProgramSameIsNoOp(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()

	updated, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), req.ID(), nil)
	require.NoError(t, err)
	require.Nil(t, updated.OperationProgramID())
	require.Empty(t, e.logs.requestLogs)
	require.Empty(t, e.bus.published)
}

func TestRequestChangeOperationProgramUnknownProgram(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()

	_, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), req.ID(), int64Ptr(999))
	requireServiceCode(t, err, "OP_NOT_FOUND")
	require.Empty(t, e.logs.requestLogs)
}

func TestRequestChangeStatus(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	accepted := e.statuses.mustID(status.ScopeRequest, contracttype.Old, "Aceptada")
	svc := e.requestService()

	updated, err := svc.ChangeStatus(serviceCtx(testActor(5, 1)), req.ID(), accepted)
	require.NoError(t, err)
	require.Equal(t, accepted, updated.StatusID())

	require.Len(t, e.logs.requestLogs, 1)
	log := e.logs.requestLogs[0]
	require.Equal(t, changelog.StatusChange, log.Kind)
	require.Equal(t, changelog.Snapshot{"value": status.InitialName}, log.Previous)
	require.Equal(t, changelog.Snapshot{"value": "Aceptada"}, log.New)
}

func TestRequestChangeStatusSameIsNoOp(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()

	updated, err := svc.ChangeStatus(serviceCtx(testActor(5, 1)), req.ID(), req.StatusID())
	require.NoError(t, err)
	require.Equal(t, req.StatusID(), updated.StatusID())
	require.Empty(t, e.logs.requestLogs)
	require.Empty(t, e.bus.published)
}

func TestRequestChangeReason(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()

	updated, err := svc.ChangeReason(serviceCtx(testActor(5, 1)), req.ID(), request.ReasonShortening)
	require.NoError(t, err)
	require.Equal(t, request.ReasonShortening, updated.Reason())

	require.Len(t, e.logs.requestLogs, 1)
	log := e.logs.requestLogs[0]
	require.Equal(t, changelog.ReasonChange, log.Kind)
	// Reasons are logged by display label, not by key.
	require.Equal(t, changelog.Snapshot{"value": "Extensión"}, log.Previous)
	require.Equal(t, changelog.Snapshot{"value": "Acortamiento"}, log.New)
}

func TestRequestChangeReasonSameIsNoOp(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()

	updated, err := svc.ChangeReason(serviceCtx(testActor(5, 1)), req.ID(), req.Reason())
	require.NoError(t, err)
	require.Equal(t, req.Reason(), updated.Reason())
	require.Empty(t, e.logs.requestLogs)
	require.Empty(t, e.bus.published)
}

func TestRequestChangeReasonInvalid(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()

	_, err := svc.ChangeReason(serviceCtx(testActor(5, 1)), req.ID(), request.Reason("invented"))
	requireServiceCode(t, err, "INVALID_REASON")
}

func TestRequestLogs(t *testing.T) {
	e := newEnv()
	seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, 1, contracttype.Old)
	svc := e.requestService()
	ctx := serviceCtx(testActor(5, 1))

	_, err := svc.ChangeReason(ctx, req.ID(), request.ReasonShortening)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, req.ID(), e.statuses.mustID(status.ScopeRequest, contracttype.Old, "Rechazada"))
	require.NoError(t, err)

	logs, err := svc.Logs(ctx, req.ID())
	require.NoError(t, err)
	require.Len(t, logs, 2)

	_, err = svc.Logs(ctx, 9999)
	requireServiceCode(t, err, "REQUEST_NOT_FOUND")
}

func TestRequestStatusCatalog(t *testing.T) {
	e := newEnv()
	svc := e.requestService()
	ctx := serviceCtx(testActor(5, 1))

	statuses, err := svc.StatusCatalog(ctx, status.ScopeRequest, contracttype.Old)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for _, s := range statuses {
		require.Equal(t, status.ScopeRequest, s.Scope)
		require.Equal(t, contracttype.Old, s.ContractType)
	}
}
