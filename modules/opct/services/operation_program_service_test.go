package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
)

func TestOperationProgramCreate(t *testing.T) {
	e := newEnv()
	svc := e.programService()
	ctx := serviceCtx(testActor(5, 1))

	startDate := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, startDate, 1)
	require.NoError(t, err)
	require.NotZero(t, created.ID())
	require.Equal(t, "2024-07-01", created.StartDateString())
	require.Equal(t, "Base", created.ProgramType().Name)
	require.Empty(t, e.logs.opLogs)

	_, err = svc.Create(ctx, startDate, 999)
	requireServiceCode(t, err, "PROGRAM_TYPE_NOT_FOUND")
}

func TestOperationProgramUpdateLogsState(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	svc := e.programService()
	ctx := serviceCtx(testActor(5, 1))

	updated, err := svc.Update(ctx, 10, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	require.Equal(t, "2024-09-01", updated.StartDateString())
	require.Equal(t, "Modificado", updated.ProgramType().Name)

	require.Len(t, e.logs.opLogs, 1)
	log := e.logs.opLogs[0]
	require.Equal(t, int64(10), log.OperationProgramID)
	require.Equal(t, int64(5), log.UserID)
	// No earlier log exists, so the previous half comes from the row
	// itself.
	require.Equal(t, changelog.Snapshot{"date": "2024-07-01", "op_type": "Base"}, log.Previous)
	require.Equal(t, changelog.Snapshot{"date": "2024-09-01", "op_type": "Modificado"}, log.New)
}

func TestOperationProgramUpdateChainsFromLatestLog(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	svc := e.programService()
	ctx := serviceCtx(testActor(5, 1))

	_, err := svc.Update(ctx, 10, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, err)
	_, err = svc.Update(ctx, 10, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	require.Len(t, e.logs.opLogs, 2)
	// Each row's previous half is the prior row's new half, so the log
	// replays as an unbroken chain of states.
	require.True(t, e.logs.opLogs[1].Previous.Equal(e.logs.opLogs[0].New))
	require.Equal(t, changelog.Snapshot{"date": "2024-10-01", "op_type": "Modificado"}, e.logs.opLogs[1].New)
}

func TestOperationProgramUpdateLogFailureAborts(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	e.logs.appendErr = errTestAppend
	svc := e.programService()

	_, err := svc.Update(serviceCtx(testActor(5, 1)), 10, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), 1)
	require.Error(t, err)
	require.Empty(t, e.logs.opLogs)
}

func TestOperationProgramDeleteRefusedWhileReferenced(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	seedProcess(e, contracttype.Old, int64Ptr(10))
	svc := e.programService()
	ctx := serviceCtx(testActor(5, 1))

	err := svc.Delete(ctx, 10)
	requireServiceCode(t, err, "OP_IN_USE")
	_, err = svc.GetByID(ctx, 10)
	require.NoError(t, err)
}

func TestOperationProgramDelete(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	svc := e.programService()
	ctx := serviceCtx(testActor(5, 1))

	require.NoError(t, svc.Delete(ctx, 10))
	_, err := svc.GetByID(ctx, 10)
	requireServiceCode(t, err, "OP_NOT_FOUND")

	err = svc.Delete(ctx, 10)
	requireServiceCode(t, err, "OP_NOT_FOUND")
}

func TestOperationProgramLogsRequireExistingProgram(t *testing.T) {
	e := newEnv()
	svc := e.programService()

	_, err := svc.Logs(serviceCtx(testActor(5, 1)), 404)
	requireServiceCode(t, err, "OP_NOT_FOUND")
}
