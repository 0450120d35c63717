package request

import "fmt"

// Reason categorizes what a change request proposes. Stored by key;
// snapshots and API listings carry the Spanish display label.
type Reason string

const (
	ReasonShortening        Reason = "shortening"
	ReasonExtension         Reason = "extension"
	ReasonFusion            Reason = "fusion"
	ReasonDivision          Reason = "division"
	ReasonNewService        Reason = "new_service"
	ReasonServiceRemoval    Reason = "service_removal"
	ReasonFrequencyIncrease Reason = "frequency_increase"
	ReasonFrequencyDecrease Reason = "frequency_decrease"
	ReasonScheduleChange    Reason = "schedule_change"
	ReasonRouteChange       Reason = "route_change"
	ReasonStopAddition      Reason = "stop_addition"
	ReasonStopRemoval       Reason = "stop_removal"
	ReasonCapacityChange    Reason = "capacity_change"
	ReasonOperationSchedule Reason = "operation_schedule"
	ReasonTerminalChange    Reason = "terminal_change"
	ReasonFleetChange       Reason = "fleet_change"
	ReasonCircularService   Reason = "circular_service"
	ReasonSeasonalService   Reason = "seasonal_service"
	ReasonOther             Reason = "other"
)

var reasonLabels = map[Reason]string{
	ReasonShortening:        "Acortamiento",
	ReasonExtension:         "Extensión",
	ReasonFusion:            "Fusión de servicios",
	ReasonDivision:          "División de servicio",
	ReasonNewService:        "Servicio nuevo",
	ReasonServiceRemoval:    "Eliminación de servicio",
	ReasonFrequencyIncrease: "Aumento de frecuencia",
	ReasonFrequencyDecrease: "Disminución de frecuencia",
	ReasonScheduleChange:    "Cambio de horario",
	ReasonRouteChange:       "Modificación de trazado",
	ReasonStopAddition:      "Incorporación de paradas",
	ReasonStopRemoval:       "Eliminación de paradas",
	ReasonCapacityChange:    "Cambio de capacidad",
	ReasonOperationSchedule: "Cambio de período de operación",
	ReasonTerminalChange:    "Cambio de terminal",
	ReasonFleetChange:       "Cambio de flota",
	ReasonCircularService:   "Servicio circular",
	ReasonSeasonalService:   "Servicio estacional",
	ReasonOther:             "Otros",
}

// reasonOrder keeps catalog listings stable.
var reasonOrder = []Reason{
	ReasonShortening,
	ReasonExtension,
	ReasonFusion,
	ReasonDivision,
	ReasonNewService,
	ReasonServiceRemoval,
	ReasonFrequencyIncrease,
	ReasonFrequencyDecrease,
	ReasonScheduleChange,
	ReasonRouteChange,
	ReasonStopAddition,
	ReasonStopRemoval,
	ReasonCapacityChange,
	ReasonOperationSchedule,
	ReasonTerminalChange,
	ReasonFleetChange,
	ReasonCircularService,
	ReasonSeasonalService,
	ReasonOther,
}

func (r Reason) IsValid() bool {
	_, ok := reasonLabels[r]
	return ok
}

// Label returns the human-readable display value used in snapshots.
func (r Reason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return string(r)
}

func ParseReason(raw string) (Reason, error) {
	r := Reason(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown reason: %q", raw)
	}
	return r, nil
}

func Reasons() []Reason {
	out := make([]Reason, len(reasonOrder))
	copy(out, reasonOrder)
	return out
}
