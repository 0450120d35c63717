package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
)

// DeadlineRecalculator recomputes dependent schedule deadlines when a
// process is repointed at a different operation program. The default
// implementation only records the trigger; a real scheduler plugs in
// through module registration.
type DeadlineRecalculator interface {
	Recalculate(ctx context.Context, p process.ChangeOPProcess, newProgram *operationprogram.OperationProgram) error
}

type LogDeadlineRecalculator struct {
	logger *logrus.Logger
}

func NewLogDeadlineRecalculator(logger *logrus.Logger) *LogDeadlineRecalculator {
	return &LogDeadlineRecalculator{logger: logger}
}

func (r *LogDeadlineRecalculator) Recalculate(
	ctx context.Context,
	p process.ChangeOPProcess,
	newProgram *operationprogram.OperationProgram,
) error {
	fields := logrus.Fields{"process_id": p.ID()}
	if newProgram != nil {
		fields["operation_program_id"] = newProgram.ID()
		fields["start_date"] = newProgram.StartDateString()
	}
	r.logger.WithFields(fields).Info("deadline recalculation triggered")
	return nil
}
