package events

import (
	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
)

// Published on the eventbus after the owning transaction commits.
// Notification delivery (mail etc.) subscribes here instead of being
// wired into the orchestrator.

type ProcessCreated struct {
	Process  process.ChangeOPProcess
	Requests []request.ChangeOPRequest
}

type ProcessStatusChanged struct {
	Process  process.ChangeOPProcess
	Previous changelog.Snapshot
	New      changelog.Snapshot
}

type ProcessOPChanged struct {
	Process         process.ChangeOPProcess
	Previous        changelog.Snapshot
	New             changelog.Snapshot
	UpdateDeadlines bool
}

type RequestCreated struct {
	Request request.ChangeOPRequest
}

type RequestChanged struct {
	Request  request.ChangeOPRequest
	Kind     changelog.ChangeKind
	Previous changelog.Snapshot
	New      changelog.Snapshot
}

type MessageAdded struct {
	ProcessID int64
	MessageID int64
}
