package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
)

func testProgram(t *testing.T) operationprogram.OperationProgram {
	t.Helper()
	start, err := time.Parse("2006-01-02", "2024-03-01")
	require.NoError(t, err)
	return operationprogram.Hydrate(7, start, operationprogram.ProgramType{ID: 1, Name: "Base"}, time.Now())
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{"date": "2024-03-01", "type": "Base"}
	b := Snapshot{"date": "2024-03-01", "type": "Base"}
	require.True(t, a.Equal(b))

	b["type"] = "Especial"
	require.False(t, a.Equal(b))

	require.False(t, a.Equal(Snapshot{"date": "2024-03-01"}))
	require.True(t, Snapshot{}.Equal(Snapshot{}))
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	a := Snapshot{"value": "x"}
	b := a.Clone()
	b["value"] = "y"
	require.Equal(t, "x", a["value"])
}

func TestOPSnapshotNilProgramEncodesEmptyStrings(t *testing.T) {
	snap := OPSnapshot(nil)
	require.Equal(t, Snapshot{"date": "", "type": ""}, snap)
}

func TestOPSnapshot(t *testing.T) {
	op := testProgram(t)
	require.Equal(t, Snapshot{"date": "2024-03-01", "type": "Base"}, OPSnapshot(&op))
}

func TestReasonSnapshotUsesLabel(t *testing.T) {
	require.Equal(t, Snapshot{"value": "Acortamiento"}, ReasonSnapshot(request.ReasonShortening))
}

func TestRoutesValue(t *testing.T) {
	require.Equal(t, "", RoutesValue(nil))
	require.Equal(t, "T101", RoutesValue([]string{"T101"}))
	require.Equal(t, "T101, T102", RoutesValue([]string{"T101", "T102"}))
}

func TestRequestSnapshotWithStatus(t *testing.T) {
	op := testProgram(t)
	req := request.Hydrate(
		1, 2, 3,
		"Shorten T101",
		"details",
		request.ReasonShortening,
		nil,
		9,
		[]string{"T101", "T102"},
		nil,
		time.Now(),
		time.Now(),
	)

	snap := RequestSnapshotWithStatus(req, &op, "En análisis")
	require.Equal(t, Snapshot{
		"title":  "Shorten T101",
		"reason": "Acortamiento",
		"routes": "T101, T102",
		"date":   "2024-03-01",
		"type":   "Base",
		"status": "En análisis",
	}, snap)

	// Same inputs encode identically, so unchanged updates short-circuit.
	again := RequestSnapshotWithStatus(req, &op, "En análisis")
	require.True(t, snap.Equal(again))
}
