package changelog

import (
	"strings"

	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
)

// Snapshot is the canonical representation of an entity's tracked
// fields at a point in time. Snapshots are persisted verbatim as the
// previous/new halves of a log row, so the encoding must be stable:
// absent references become empty strings, never nulls, keeping equality
// comparisons well defined.
type Snapshot map[string]any

// Equal compares two snapshots structurally. Values are the flat
// strings and bools the encoders below produce, so direct comparison
// suffices.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for key, value := range s {
		if otherValue, ok := other[key]; !ok || otherValue != value {
			return false
		}
	}
	return true
}

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// OPSnapshot encodes an operation program reference as {date, type}.
// A nil program yields empty strings on both fields.
func OPSnapshot(op *operationprogram.OperationProgram) Snapshot {
	if op == nil {
		return Snapshot{"date": "", "type": ""}
	}
	return Snapshot{
		"date": op.StartDateString(),
		"type": op.ProgramType().Name,
	}
}

// StatusSnapshot encodes a status reference as {value: name}.
func StatusSnapshot(name string) Snapshot {
	return Snapshot{"value": name}
}

// ReasonSnapshot encodes a reason by its display label, not the raw key.
func ReasonSnapshot(r request.Reason) Snapshot {
	return Snapshot{"value": r.Label()}
}

// RoutesValue flattens a route code list into the single string form
// snapshots carry.
func RoutesValue(routes []string) string {
	return strings.Join(routes, ", ")
}

// RequestSnapshot encodes the five tracked fields of a change request.
// The operation program half comes pre-resolved since the aggregate
// only holds the id.
func RequestSnapshot(req request.ChangeOPRequest, op *operationprogram.OperationProgram) Snapshot {
	opSnap := OPSnapshot(op)
	return Snapshot{
		"title":  req.Title(),
		"reason": req.Reason().Label(),
		"routes": RoutesValue(req.RelatedRoutes()),
		"date":   opSnap["date"],
		"type":   opSnap["type"],
	}
}

// RequestSnapshotWithStatus extends RequestSnapshot with the status
// name for update diffs.
func RequestSnapshotWithStatus(req request.ChangeOPRequest, op *operationprogram.OperationProgram, statusName string) Snapshot {
	snap := RequestSnapshot(req, op)
	snap["status"] = statusName
	return snap
}
