package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
	corepersistence "github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/message"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/modules/opct/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
)

var errTestAppend = errors.New("log append failed")

// nopTx satisfies the transaction context key so InTx joins instead of
// opening a real transaction. The in-memory repositories never touch
// the embedded interface.
type nopTx struct{ pgx.Tx }

func serviceCtx(actor user.User) context.Context {
	ctx := composables.WithUser(context.Background(), actor)
	return composables.WithTx(ctx, nopTx{})
}

func testActor(id, organizationID int64) user.User {
	now := time.Now()
	return user.Hydrate(
		id,
		fmt.Sprintf("user%d@example.com", id),
		"Test", "User",
		organizationID,
		[]string{user.GroupUser},
		"", false, nil, now, now,
	)
}

type memOrganizations struct {
	byID map[int64]organization.Organization
}

func newMemOrganizations(orgs ...organization.Organization) *memOrganizations {
	m := &memOrganizations{byID: map[int64]organization.Organization{}}
	for _, o := range orgs {
		m.byID[o.ID()] = o
	}
	return m
}

func (m *memOrganizations) GetAll(context.Context) ([]organization.Organization, error) {
	out := make([]organization.Organization, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrganizations) GetByID(_ context.Context, id int64) (organization.Organization, error) {
	o, ok := m.byID[id]
	if !ok {
		return organization.Organization{}, corepersistence.ErrOrganizationNotFound
	}
	return o, nil
}

func (m *memOrganizations) Create(_ context.Context, o organization.Organization) (organization.Organization, error) {
	m.byID[o.ID()] = o
	return o, nil
}

func (m *memOrganizations) Update(_ context.Context, o organization.Organization) (organization.Organization, error) {
	m.byID[o.ID()] = o
	return o, nil
}

func (m *memOrganizations) Delete(_ context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

type memPrograms struct {
	byID   map[int64]operationprogram.OperationProgram
	types  []operationprogram.ProgramType
	nextID int64
}

func newMemPrograms(programs ...operationprogram.OperationProgram) *memPrograms {
	m := &memPrograms{
		byID: map[int64]operationprogram.OperationProgram{},
		types: []operationprogram.ProgramType{
			{ID: 1, Name: "Base"},
			{ID: 2, Name: "Modificado"},
		},
		nextID: 100,
	}
	for _, p := range programs {
		m.byID[p.ID()] = p
	}
	return m
}

func (m *memPrograms) GetPaginated(_ context.Context, _ *operationprogram.FindParams) ([]operationprogram.OperationProgram, int64, error) {
	out := make([]operationprogram.OperationProgram, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memPrograms) GetByID(_ context.Context, id int64) (operationprogram.OperationProgram, error) {
	p, ok := m.byID[id]
	if !ok {
		return operationprogram.OperationProgram{}, persistence.ErrOperationProgramNotFound
	}
	return p, nil
}

func (m *memPrograms) GetByStartDate(_ context.Context, startDate time.Time) (operationprogram.OperationProgram, error) {
	for _, p := range m.byID {
		if p.StartDate().Equal(startDate) {
			return p, nil
		}
	}
	return operationprogram.OperationProgram{}, persistence.ErrOperationProgramNotFound
}

func (m *memPrograms) Create(_ context.Context, p operationprogram.OperationProgram) (operationprogram.OperationProgram, error) {
	m.nextID++
	created := operationprogram.Hydrate(m.nextID, p.StartDate(), p.ProgramType(), time.Now())
	m.byID[created.ID()] = created
	return created, nil
}

func (m *memPrograms) Update(_ context.Context, p operationprogram.OperationProgram) (operationprogram.OperationProgram, error) {
	if _, ok := m.byID[p.ID()]; !ok {
		return operationprogram.OperationProgram{}, persistence.ErrOperationProgramNotFound
	}
	m.byID[p.ID()] = p
	return p, nil
}

func (m *memPrograms) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrOperationProgramNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memPrograms) GetProgramTypes(context.Context) ([]operationprogram.ProgramType, error) {
	return m.types, nil
}

func (m *memPrograms) GetProgramTypeByID(_ context.Context, id int64) (operationprogram.ProgramType, error) {
	for _, t := range m.types {
		if t.ID == id {
			return t, nil
		}
	}
	return operationprogram.ProgramType{}, persistence.ErrProgramTypeNotFound
}

type memStatuses struct {
	rows []status.Status
}

// newMemStatuses seeds the initial status plus one extra per scope for
// every contract type, so transitions have somewhere to go.
func newMemStatuses() *memStatuses {
	m := &memStatuses{}
	var id int64
	for _, ct := range contracttype.All() {
		for _, scope := range []status.Scope{status.ScopeProcess, status.ScopeRequest} {
			for _, name := range []string{status.InitialName, "Aceptada", "Rechazada"} {
				id++
				m.rows = append(m.rows, status.Status{ID: id, ContractType: ct, Scope: scope, Name: name})
			}
		}
	}
	return m
}

func (m *memStatuses) GetByID(_ context.Context, scope status.Scope, id int64) (status.Status, error) {
	for _, row := range m.rows {
		if row.ID == id && row.Scope == scope {
			return row, nil
		}
	}
	return status.Status{}, persistence.ErrStatusNotFound
}

func (m *memStatuses) GetByName(_ context.Context, scope status.Scope, ct contracttype.ContractType, name string) (status.Status, error) {
	for _, row := range m.rows {
		if row.Scope == scope && row.ContractType == ct && row.Name == name {
			return row, nil
		}
	}
	return status.Status{}, persistence.ErrStatusNotFound
}

func (m *memStatuses) GetAll(_ context.Context, scope status.Scope, ct contracttype.ContractType) ([]status.Status, error) {
	var out []status.Status
	for _, row := range m.rows {
		if row.Scope == scope && row.ContractType == ct {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStatuses) mustID(scope status.Scope, ct contracttype.ContractType, name string) int64 {
	s, err := m.GetByName(context.Background(), scope, ct, name)
	if err != nil {
		panic(err)
	}
	return s.ID
}

type memProcesses struct {
	byID   map[int64]process.ChangeOPProcess
	nextID int64
}

func newMemProcesses(processes ...process.ChangeOPProcess) *memProcesses {
	m := &memProcesses{byID: map[int64]process.ChangeOPProcess{}, nextID: 1000}
	for _, p := range processes {
		m.byID[p.ID()] = p
	}
	return m
}

func (m *memProcesses) GetPaginated(_ context.Context, _ *process.FindParams) ([]process.ChangeOPProcess, int64, error) {
	out := make([]process.ChangeOPProcess, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memProcesses) GetByID(_ context.Context, id int64) (process.ChangeOPProcess, error) {
	p, ok := m.byID[id]
	if !ok {
		return process.ChangeOPProcess{}, persistence.ErrProcessNotFound
	}
	return p, nil
}

func (m *memProcesses) Create(_ context.Context, p process.ChangeOPProcess) (process.ChangeOPProcess, error) {
	m.nextID++
	now := time.Now()
	created := process.Hydrate(
		m.nextID,
		p.Title(), p.Message(),
		p.CounterpartID(), p.ContractType(),
		p.CreatorID(), p.StatusID(),
		p.OperationProgramID(), p.ReleaseDate(),
		now, now,
	)
	m.byID[created.ID()] = created
	return created, nil
}

func (m *memProcesses) Update(_ context.Context, p process.ChangeOPProcess) (process.ChangeOPProcess, error) {
	if _, ok := m.byID[p.ID()]; !ok {
		return process.ChangeOPProcess{}, persistence.ErrProcessNotFound
	}
	m.byID[p.ID()] = p
	return p, nil
}

func (m *memProcesses) CountByOperationProgram(_ context.Context, opID int64) (int64, error) {
	var n int64
	for _, p := range m.byID {
		if id := p.OperationProgramID(); id != nil && *id == opID {
			n++
		}
	}
	return n, nil
}

func (m *memProcesses) CountByCounterpart(_ context.Context, organizationID int64) (int64, error) {
	var n int64
	for _, p := range m.byID {
		if p.CounterpartID() == organizationID {
			n++
		}
	}
	return n, nil
}

func (m *memProcesses) CountByCreator(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, p := range m.byID {
		if p.CreatorID() == userID {
			n++
		}
	}
	return n, nil
}

type memRequests struct {
	byID    map[int64]request.ChangeOPRequest
	related map[int64][]int64
	nextID  int64
}

func newMemRequests(requests ...request.ChangeOPRequest) *memRequests {
	m := &memRequests{
		byID:    map[int64]request.ChangeOPRequest{},
		related: map[int64][]int64{},
		nextID:  2000,
	}
	for _, r := range requests {
		m.byID[r.ID()] = r
	}
	return m
}

func (m *memRequests) GetByID(_ context.Context, id int64) (request.ChangeOPRequest, error) {
	r, ok := m.byID[id]
	if !ok {
		return request.ChangeOPRequest{}, persistence.ErrRequestNotFound
	}
	return r.SetRelatedRequestIDs(m.related[id]), nil
}

func (m *memRequests) GetByProcess(_ context.Context, processID int64) ([]request.ChangeOPRequest, error) {
	var out []request.ChangeOPRequest
	for _, r := range m.byID {
		if r.ProcessID() == processID {
			out = append(out, r.SetRelatedRequestIDs(m.related[r.ID()]))
		}
	}
	return out, nil
}

func (m *memRequests) Create(_ context.Context, r request.ChangeOPRequest) (request.ChangeOPRequest, error) {
	m.nextID++
	now := time.Now()
	created := request.Hydrate(
		m.nextID,
		r.ProcessID(), r.CreatorID(),
		r.Title(), r.Message(), r.Reason(),
		r.OperationProgramID(), r.StatusID(),
		r.RelatedRoutes(), nil,
		now, now,
	)
	m.byID[created.ID()] = created
	return created, nil
}

func (m *memRequests) Update(_ context.Context, r request.ChangeOPRequest) (request.ChangeOPRequest, error) {
	if _, ok := m.byID[r.ID()]; !ok {
		return request.ChangeOPRequest{}, persistence.ErrRequestNotFound
	}
	m.byID[r.ID()] = r
	return r, nil
}

func (m *memRequests) SetRelatedRequests(_ context.Context, requestID int64, relatedIDs []int64) error {
	m.related[requestID] = relatedIDs
	return nil
}

func (m *memRequests) CountByOperationProgram(_ context.Context, opID int64) (int64, error) {
	var n int64
	for _, r := range m.byID {
		if id := r.OperationProgramID(); id != nil && *id == opID {
			n++
		}
	}
	return n, nil
}

func (m *memRequests) CountByCreator(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, r := range m.byID {
		if r.CreatorID() == userID {
			n++
		}
	}
	return n, nil
}

type memLogs struct {
	processLogs []changelog.ProcessLog
	requestLogs []changelog.RequestLog
	opLogs      []changelog.OPDataLog
	appendErr   error
}

func (m *memLogs) AppendProcessLog(_ context.Context, log changelog.ProcessLog) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	log.ID = int64(len(m.processLogs) + 1)
	m.processLogs = append(m.processLogs, log)
	return nil
}

func (m *memLogs) AppendRequestLog(_ context.Context, log changelog.RequestLog) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	log.ID = int64(len(m.requestLogs) + 1)
	m.requestLogs = append(m.requestLogs, log)
	return nil
}

func (m *memLogs) AppendOPDataLog(_ context.Context, log changelog.OPDataLog) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	log.ID = int64(len(m.opLogs) + 1)
	m.opLogs = append(m.opLogs, log)
	return nil
}

func (m *memLogs) ProcessLogs(_ context.Context, processID int64) ([]changelog.ProcessLog, error) {
	var out []changelog.ProcessLog
	for _, log := range m.processLogs {
		if log.ProcessID == processID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *memLogs) RequestLogs(_ context.Context, requestID int64) ([]changelog.RequestLog, error) {
	var out []changelog.RequestLog
	for _, log := range m.requestLogs {
		if log.RequestID == requestID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *memLogs) OPDataLogs(_ context.Context, opID int64) ([]changelog.OPDataLog, error) {
	var out []changelog.OPDataLog
	for _, log := range m.opLogs {
		if log.OperationProgramID == opID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *memLogs) LatestOPDataLog(_ context.Context, opID int64) (*changelog.OPDataLog, error) {
	for i := len(m.opLogs) - 1; i >= 0; i-- {
		if m.opLogs[i].OperationProgramID == opID {
			log := m.opLogs[i]
			return &log, nil
		}
	}
	return nil, nil
}

type memMessages struct {
	messages []message.Message
	files    []message.File
	fileErr  error
}

func (m *memMessages) Create(_ context.Context, msg message.Message) (message.Message, error) {
	msg.ID = int64(len(m.messages) + 1)
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memMessages) AddFile(_ context.Context, file message.File) (message.File, error) {
	if m.fileErr != nil {
		return message.File{}, m.fileErr
	}
	file.ID = int64(len(m.files) + 1)
	m.files = append(m.files, file)
	return file, nil
}

func (m *memMessages) GetByProcess(_ context.Context, processID int64) ([]message.Message, error) {
	var out []message.Message
	for _, msg := range m.messages {
		if msg.ProcessID == processID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memMessages) FilesByMessage(_ context.Context, messageID int64) ([]message.File, error) {
	var out []message.File
	for _, f := range m.files {
		if f.MessageID == messageID {
			out = append(out, f)
		}
	}
	return out, nil
}

type memStorage struct {
	saved   []persistence.StoredFile
	removed []string
}

func (m *memStorage) Save(filename string, r io.Reader) (persistence.StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return persistence.StoredFile{}, err
	}
	sf := persistence.StoredFile{
		Path:     fmt.Sprintf("stored/%d_%s", len(m.saved)+1, filename),
		Size:     int64(len(data)),
		MimeType: "application/octet-stream",
	}
	m.saved = append(m.saved, sf)
	return sf, nil
}

func (m *memStorage) Remove(path string) error {
	m.removed = append(m.removed, path)
	return nil
}

type recalcSpy struct {
	calls []recalcCall
	err   error
}

type recalcCall struct {
	processID int64
	programID *int64
}

func (r *recalcSpy) Recalculate(_ context.Context, p process.ChangeOPProcess, newProgram *operationprogram.OperationProgram) error {
	call := recalcCall{processID: p.ID()}
	if newProgram != nil {
		id := newProgram.ID()
		call.programID = &id
	}
	r.calls = append(r.calls, call)
	return r.err
}

type busSpy struct {
	published []interface{}
}

func (b *busSpy) Publish(args ...interface{}) { b.published = append(b.published, args...) }

func (b *busSpy) Subscribe(handler interface{}) {}

func (b *busSpy) Unsubscribe(handler interface{}) {}

func (b *busSpy) SubscribersCount() int { return 0 }

// env bundles every dependency a process workflow test touches.
type env struct {
	processes *memProcesses
	requests  *memRequests
	statuses  *memStatuses
	programs  *memPrograms
	logs      *memLogs
	messages  *memMessages
	orgs      *memOrganizations
	storage   *memStorage
	recalc    *recalcSpy
	bus       *busSpy
}

func newEnv() *env {
	return &env{
		processes: newMemProcesses(),
		requests:  newMemRequests(),
		statuses:  newMemStatuses(),
		programs:  newMemPrograms(),
		logs:      &memLogs{},
		messages:  &memMessages{},
		orgs:      newMemOrganizations(),
		storage:   &memStorage{},
		recalc:    &recalcSpy{},
		bus:       &busSpy{},
	}
}

func (e *env) processService() *ProcessService {
	return NewProcessService(
		e.processes, e.requests, e.statuses, e.programs,
		e.logs, e.messages, e.orgs, e.storage,
		e.recalc, e.bus, 1024,
	)
}

func (e *env) requestService() *RequestService {
	return NewRequestService(e.requests, e.statuses, e.programs, e.logs, e.bus)
}

func (e *env) programService() *OperationProgramService {
	return NewOperationProgramService(e.programs, e.processes, e.requests, e.logs)
}

func int64Ptr(v int64) *int64 { return &v }
