package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/modules/opct/domain/events"
	"github.com/transapp/opct/pkg/serrors"
)

func seedOrgPair(e *env) {
	now := time.Now()
	// Org 2 designates org 1 as its default counterpart, so org 1 may
	// open processes against org 2.
	e.orgs.byID[1] = organization.Hydrate(1, "Metro", contracttype.Old, int64Ptr(2), nil, now)
	e.orgs.byID[2] = organization.Hydrate(2, "Autoridad", contracttype.New, int64Ptr(1), nil, now)
	e.orgs.byID[3] = organization.Hydrate(3, "Buses Sur", contracttype.New, int64Ptr(2), nil, now)
}

func seedProgram(e *env, id int64, date string) operationprogram.OperationProgram {
	startDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	p := operationprogram.Hydrate(id, startDate, operationprogram.ProgramType{ID: 1, Name: "Base"}, time.Now())
	e.programs.byID[id] = p
	return p
}

func seedProcess(e *env, ct contracttype.ContractType, programID *int64) process.ChangeOPProcess {
	var releaseDate *time.Time
	if programID != nil {
		d := e.programs.byID[*programID].StartDate()
		releaseDate = &d
	}
	now := time.Now()
	p := process.Hydrate(
		1, "Cambios PO", "detalle", 2, ct, 5,
		e.statuses.mustID(status.ScopeProcess, ct, status.InitialName),
		programID, releaseDate, now, now,
	)
	e.processes.byID[p.ID()] = p
	return p
}

func seedRequest(e *env, id, processID int64, ct contracttype.ContractType) request.ChangeOPRequest {
	now := time.Now()
	r := request.Hydrate(
		id, processID, 5,
		"Extensión 506", "detalle", request.ReasonExtension,
		nil, e.statuses.mustID(status.ScopeRequest, ct, status.InitialName),
		[]string{"506"}, nil, now, now,
	)
	e.requests.byID[r.ID()] = r
	return r
}

func requireServiceCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var svcErr *serrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, code, svcErr.Code)
}

func TestProcessCreate(t *testing.T) {
	e := newEnv()
	seedOrgPair(e)
	svc := e.processService()
	ctx := serviceCtx(testActor(5, 1))

	detail, err := svc.Create(ctx, CreateProcessInput{
		Title:         "Cambios PO Julio",
		Message:       "ajustes de frecuencia",
		CounterpartID: 2,
		Requests: []CreateRequestInput{
			{Title: "Extensión 506", Message: "detalle", Reason: request.ReasonExtension, RelatedRoutes: []string{"506"}},
			{Title: "Acortamiento 210", Message: "detalle", Reason: request.ReasonShortening},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, detail.Process.ID())
	require.Equal(t, contracttype.Old, detail.Process.ContractType())
	require.Equal(t, int64(5), detail.Process.CreatorID())
	require.Equal(t,
		e.statuses.mustID(status.ScopeProcess, contracttype.Old, status.InitialName),
		detail.Process.StatusID(),
	)

	require.Len(t, detail.Requests, 2)
	for _, req := range detail.Requests {
		require.Equal(t, detail.Process.ID(), req.ProcessID())
		require.Equal(t,
			e.statuses.mustID(status.ScopeRequest, contracttype.Old, status.InitialName),
			req.StatusID(),
		)
	}

	// Creation itself is not a change, so nothing lands in the logs.
	require.Empty(t, e.logs.processLogs)
	require.Empty(t, e.logs.requestLogs)

	require.Len(t, e.bus.published, 1)
	event, ok := e.bus.published[0].(events.ProcessCreated)
	require.True(t, ok)
	require.Equal(t, detail.Process.ID(), event.Process.ID())
	require.Len(t, event.Requests, 2)
}

func TestProcessCreateRequiresRequests(t *testing.T) {
	e := newEnv()
	seedOrgPair(e)
	svc := e.processService()

	_, err := svc.Create(serviceCtx(testActor(5, 1)), CreateProcessInput{
		Title:         "vacío",
		CounterpartID: 2,
	})
	requireServiceCode(t, err, "EMPTY_REQUESTS")
	require.Empty(t, e.bus.published)
}

func TestProcessCreateRejectsForeignCounterpart(t *testing.T) {
	e := newEnv()
	seedOrgPair(e)
	svc := e.processService()

	// Org 3's default counterpart is org 2, not the actor's org 1.
	_, err := svc.Create(serviceCtx(testActor(5, 1)), CreateProcessInput{
		Title:         "no autorizado",
		CounterpartID: 3,
		Requests:      []CreateRequestInput{{Title: "x", Reason: request.ReasonOther}},
	})
	requireServiceCode(t, err, "UNAUTHORIZED_COUNTERPART")
}

func TestProcessCreateBothAdoptsCounterpartType(t *testing.T) {
	e := newEnv()
	now := time.Now()
	e.orgs.byID[1] = organization.Hydrate(1, "DTP", contracttype.Both, nil, nil, now)
	e.orgs.byID[2] = organization.Hydrate(2, "Buses Norte", contracttype.Old, nil, nil, now)
	svc := e.processService()

	detail, err := svc.Create(serviceCtx(testActor(5, 1)), CreateProcessInput{
		Title:         "desde autoridad",
		CounterpartID: 2,
		Requests:      []CreateRequestInput{{Title: "x", Reason: request.ReasonOther}},
	})
	require.NoError(t, err)
	require.Equal(t, contracttype.Old, detail.Process.ContractType())
}

func TestProcessCreateWithProgramSetsReleaseDate(t *testing.T) {
	e := newEnv()
	seedOrgPair(e)
	program := seedProgram(e, 10, "2024-07-01")
	svc := e.processService()

	detail, err := svc.Create(serviceCtx(testActor(5, 1)), CreateProcessInput{
		Title:              "con programa",
		CounterpartID:      2,
		OperationProgramID: int64Ptr(10),
		Requests:           []CreateRequestInput{{Title: "x", Reason: request.ReasonOther}},
	})
	require.NoError(t, err)
	require.NotNil(t, detail.Process.OperationProgramID())
	require.Equal(t, int64(10), *detail.Process.OperationProgramID())
	require.NotNil(t, detail.Process.ReleaseDate())
	require.True(t, detail.Process.ReleaseDate().Equal(program.StartDate()))
}

func TestChangeOperationProgramSameProgramIsNoOp(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	p := seedProcess(e, contracttype.Old, int64Ptr(10))
	svc := e.processService()

	updated, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), p.ID(), int64Ptr(10), true)
	require.NoError(t, err)
	require.Equal(t, int64(10), *updated.OperationProgramID())
	require.Empty(t, e.logs.processLogs)
	require.Empty(t, e.recalc.calls)
	require.Empty(t, e.bus.published)
}

func TestChangeOperationProgramWithDeadlineUpdate(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	next := seedProgram(e, 11, "2024-09-01")
	p := seedProcess(e, contracttype.Old, int64Ptr(10))
	svc := e.processService()

	updated, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), p.ID(), int64Ptr(11), true)
	require.NoError(t, err)
	require.Equal(t, int64(11), *updated.OperationProgramID())
	require.True(t, updated.ReleaseDate().Equal(next.StartDate()))

	require.Len(t, e.logs.processLogs, 1)
	log := e.logs.processLogs[0]
	require.Equal(t, changelog.OPChangeWithDeadlineStamp, log.Kind)
	require.Equal(t, changelog.Snapshot{"date": "2024-07-01", "type": "Base"}, log.Previous)
	require.Equal(t, changelog.Snapshot{"date": "2024-09-01", "type": "Base", "update_deadlines": true}, log.New)

	require.Len(t, e.recalc.calls, 1)
	require.Equal(t, p.ID(), e.recalc.calls[0].processID)
	require.Equal(t, int64(11), *e.recalc.calls[0].programID)

	require.Len(t, e.bus.published, 1)
	event := e.bus.published[0].(events.ProcessOPChanged)
	require.True(t, event.UpdateDeadlines)
}

func TestChangeOperationProgramKeepsReleaseDate(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	seedProgram(e, 11, "2024-09-01")
	p := seedProcess(e, contracttype.Old, int64Ptr(10))
	svc := e.processService()

	updated, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), p.ID(), int64Ptr(11), false)
	require.NoError(t, err)
	require.Equal(t, int64(11), *updated.OperationProgramID())
	// Deadlines were not requested, so the release date stays put.
	require.True(t, updated.ReleaseDate().Equal(*p.ReleaseDate()))

	require.Len(t, e.logs.processLogs, 1)
	require.Equal(t, changelog.OPChange, e.logs.processLogs[0].Kind)
	require.NotContains(t, e.logs.processLogs[0].New, "update_deadlines")
	require.Empty(t, e.recalc.calls)
}

func TestChangeOperationProgramClearCascades(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	p := seedProcess(e, contracttype.Old, int64Ptr(10))
	svc := e.processService()

	updated, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), p.ID(), nil, false)
	require.NoError(t, err)
	require.Nil(t, updated.OperationProgramID())
	require.Nil(t, updated.ReleaseDate())

	require.Len(t, e.logs.processLogs, 1)
	log := e.logs.processLogs[0]
	require.Equal(t, changelog.OPChange, log.Kind)
	require.Equal(t, changelog.Snapshot{"date": "", "type": ""}, log.New)

	require.Len(t, e.recalc.calls, 1)
	require.Nil(t, e.recalc.calls[0].programID)
}

func TestChangeOperationProgramLogFailureAborts(t *testing.T) {
	e := newEnv()
	seedProgram(e, 10, "2024-07-01")
	seedProgram(e, 11, "2024-09-01")
	p := seedProcess(e, contracttype.Old, int64Ptr(10))
	e.logs.appendErr = errTestAppend
	svc := e.processService()

	_, err := svc.ChangeOperationProgram(serviceCtx(testActor(5, 1)), p.ID(), int64Ptr(11), true)
	require.Error(t, err)
	require.Empty(t, e.bus.published)
	require.Empty(t, e.recalc.calls)
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	svc := e.processService()

	updated, err := svc.ChangeStatus(serviceCtx(testActor(5, 1)), p.ID(), p.StatusID())
	require.NoError(t, err)
	require.Equal(t, p.StatusID(), updated.StatusID())
	require.Empty(t, e.logs.processLogs)
	require.Empty(t, e.bus.published)
}

func TestChangeStatusLogsTransition(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	accepted := e.statuses.mustID(status.ScopeProcess, contracttype.Old, "Aceptada")
	svc := e.processService()

	updated, err := svc.ChangeStatus(serviceCtx(testActor(5, 1)), p.ID(), accepted)
	require.NoError(t, err)
	require.Equal(t, accepted, updated.StatusID())

	require.Len(t, e.logs.processLogs, 1)
	log := e.logs.processLogs[0]
	require.Equal(t, changelog.StatusChange, log.Kind)
	require.Equal(t, changelog.Snapshot{"value": status.InitialName}, log.Previous)
	require.Equal(t, changelog.Snapshot{"value": "Aceptada"}, log.New)
	require.Equal(t, int64(5), log.UserID)

	require.Len(t, e.bus.published, 1)
}

func TestChangeStatusUnknownStatus(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	svc := e.processService()

	_, err := svc.ChangeStatus(serviceCtx(testActor(5, 1)), p.ID(), 9999)
	requireServiceCode(t, err, "STATUS_NOT_FOUND")
}

func TestAddMessageValidations(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, p.ID(), contracttype.Old)
	otherProcess := process.Hydrate(2, "otro", "", 2, contracttype.Old, 5, 1, nil, nil, time.Now(), time.Now())
	e.processes.byID[2] = otherProcess
	foreign := seedRequest(e, 41, 2, contracttype.Old)
	svc := e.processService()
	ctx := serviceCtx(testActor(5, 1))

	_, err := svc.AddMessage(ctx, p.ID(), "hola", nil, nil)
	requireServiceCode(t, err, "EMPTY_RELATED_REQUESTS")

	_, err = svc.AddMessage(ctx, p.ID(), "", nil, []int64{req.ID()})
	requireServiceCode(t, err, "EMPTY_MESSAGE")

	_, err = svc.AddMessage(ctx, p.ID(), "hola", []FileUpload{
		{Filename: "big.pdf", Size: 4096, Content: strings.NewReader("x")},
	}, []int64{req.ID()})
	requireServiceCode(t, err, "FILE_TOO_LARGE")

	_, err = svc.AddMessage(ctx, p.ID(), "hola", nil, []int64{foreign.ID()})
	requireServiceCode(t, err, "REQUEST_NOT_IN_PROCESS")

	require.Empty(t, e.messages.messages)
}

func TestAddMessageStoresFiles(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, p.ID(), contracttype.Old)
	svc := e.processService()

	content := []byte("informe adjunto")
	msg, err := svc.AddMessage(serviceCtx(testActor(5, 1)), p.ID(), "ver adjunto", []FileUpload{
		{Filename: "informe.pdf", Size: int64(len(content)), Content: bytes.NewReader(content)},
	}, []int64{req.ID()})
	require.NoError(t, err)
	require.NotZero(t, msg.ID)
	require.Equal(t, []int64{req.ID()}, msg.RelatedRequestIDs)

	require.Len(t, e.storage.saved, 1)
	require.Len(t, e.messages.files, 1)
	file := e.messages.files[0]
	require.Equal(t, msg.ID, file.MessageID)
	require.Equal(t, "informe.pdf", file.Filename)
	require.Equal(t, int64(len(content)), file.Size)

	require.Len(t, e.bus.published, 1)
	event := e.bus.published[0].(events.MessageAdded)
	require.Equal(t, msg.ID, event.MessageID)
}

func TestAddMessageOversizedContentCleansUp(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, p.ID(), contracttype.Old)
	svc := e.processService()

	// Declared size passes the pre-check but the stream is larger than
	// the limit, so the post-save guard fires and stored bytes are
	// removed on rollback.
	content := bytes.Repeat([]byte("a"), 2048)
	_, err := svc.AddMessage(serviceCtx(testActor(5, 1)), p.ID(), "adjunto", []FileUpload{
		{Filename: "grande.bin", Size: 10, Content: bytes.NewReader(content)},
	}, []int64{req.ID()})
	requireServiceCode(t, err, "FILE_TOO_LARGE")

	require.Len(t, e.storage.saved, 1)
	require.Equal(t, []string{e.storage.saved[0].Path}, e.storage.removed)
	require.Empty(t, e.bus.published)
}

func TestCreateRequestLogsCreation(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	seedProgram(e, 10, "2024-07-01")
	svc := e.processService()

	created, err := svc.CreateRequest(serviceCtx(testActor(5, 1)), p.ID(), CreateRequestInput{
		Title:              "Acortamiento 210",
		Message:            "detalle",
		Reason:             request.ReasonShortening,
		OperationProgramID: int64Ptr(10),
		RelatedRoutes:      []string{"210", "210e"},
	})
	require.NoError(t, err)
	require.Equal(t, p.ID(), created.ProcessID())

	require.Len(t, e.logs.requestLogs, 1)
	log := e.logs.requestLogs[0]
	require.Equal(t, changelog.RequestCreation, log.Kind)
	require.Equal(t, changelog.Snapshot{}, log.Previous)
	require.Equal(t, changelog.Snapshot{
		"title":  "Acortamiento 210",
		"reason": "Acortamiento",
		"routes": "210, 210e",
		"date":   "2024-07-01",
		"type":   "Base",
		"status": status.InitialName,
	}, log.New)
}

func TestCreateRequestInvalidReason(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	svc := e.processService()

	_, err := svc.CreateRequest(serviceCtx(testActor(5, 1)), p.ID(), CreateRequestInput{
		Title:  "x",
		Reason: request.Reason("invented"),
	})
	requireServiceCode(t, err, "INVALID_REASON")
	require.Empty(t, e.logs.requestLogs)
}

func TestUpdateRequestsSkipsLogWhenUnchanged(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, p.ID(), contracttype.Old)
	svc := e.processService()

	results, err := svc.UpdateRequests(serviceCtx(testActor(5, 1)), p.ID(), []UpdateRequestInput{{
		ID:            req.ID(),
		Title:         req.Title(),
		Message:       req.Message(),
		Reason:        req.Reason(),
		StatusID:      req.StatusID(),
		RelatedRoutes: req.RelatedRoutes(),
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Empty(t, e.logs.requestLogs)
}

func TestUpdateRequestsLogsDiff(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, p.ID(), contracttype.Old)
	accepted := e.statuses.mustID(status.ScopeRequest, contracttype.Old, "Aceptada")
	svc := e.processService()

	results, err := svc.UpdateRequests(serviceCtx(testActor(5, 1)), p.ID(), []UpdateRequestInput{{
		ID:            req.ID(),
		Title:         "Extensión 506 nocturna",
		Message:       req.Message(),
		Reason:        req.Reason(),
		StatusID:      accepted,
		RelatedRoutes: req.RelatedRoutes(),
	}})
	require.NoError(t, err)
	require.Equal(t, "Extensión 506 nocturna", results[0].Title())
	require.Equal(t, accepted, results[0].StatusID())

	require.Len(t, e.logs.requestLogs, 1)
	log := e.logs.requestLogs[0]
	require.Equal(t, changelog.RequestUpdate, log.Kind)
	require.Equal(t, "Extensión 506", log.Previous["title"])
	require.Equal(t, "Extensión 506 nocturna", log.New["title"])
	require.Equal(t, status.InitialName, log.Previous["status"])
	require.Equal(t, "Aceptada", log.New["status"])
}

func TestUpdateRequestsRejectsForeignRequest(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	e.processes.byID[2] = process.Hydrate(2, "otro", "", 2, contracttype.Old, 5, 1, nil, nil, time.Now(), time.Now())
	foreign := seedRequest(e, 41, 2, contracttype.Old)
	svc := e.processService()

	_, err := svc.UpdateRequests(serviceCtx(testActor(5, 1)), p.ID(), []UpdateRequestInput{{
		ID:       foreign.ID(),
		Title:    "x",
		Reason:   request.ReasonOther,
		StatusID: foreign.StatusID(),
	}})
	requireServiceCode(t, err, "REQUEST_NOT_IN_PROCESS")
}

func TestChangeRelatedRequestsIsNotLogged(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	a := seedRequest(e, 40, p.ID(), contracttype.Old)
	b := seedRequest(e, 41, p.ID(), contracttype.Old)
	svc := e.processService()
	ctx := serviceCtx(testActor(5, 1))

	require.NoError(t, svc.ChangeRelatedRequests(ctx, p.ID(), a.ID(), []int64{b.ID()}))
	require.Equal(t, []int64{b.ID()}, e.requests.related[a.ID()])
	require.Empty(t, e.logs.requestLogs)

	err := svc.ChangeRelatedRequests(ctx, p.ID(), a.ID(), []int64{9999})
	requireServiceCode(t, err, "REQUEST_NOT_FOUND")
}

func TestProcessGetByIDAssemblesDetail(t *testing.T) {
	e := newEnv()
	p := seedProcess(e, contracttype.Old, nil)
	req := seedRequest(e, 40, p.ID(), contracttype.Old)
	svc := e.processService()
	ctx := serviceCtx(testActor(5, 1))

	accepted := e.statuses.mustID(status.ScopeProcess, contracttype.Old, "Aceptada")
	_, err := svc.ChangeStatus(ctx, p.ID(), accepted)
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, p.ID(), "avance", nil, []int64{req.ID()})
	require.NoError(t, err)

	detail, err := svc.GetByID(ctx, p.ID())
	require.NoError(t, err)
	require.Equal(t, p.ID(), detail.Process.ID())
	require.Len(t, detail.Requests, 1)
	require.Len(t, detail.Logs, 1)
	require.Len(t, detail.Messages, 1)
}

func TestProcessGetByIDNotFound(t *testing.T) {
	e := newEnv()
	svc := e.processService()

	_, err := svc.GetByID(serviceCtx(testActor(5, 1)), 404)
	requireServiceCode(t, err, "PROCESS_NOT_FOUND")
}
