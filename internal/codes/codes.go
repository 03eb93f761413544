// Package codes decodes the provider's small enumerations (charger status and
// connector/speed type codes) into internal values. Unknown codes never fail:
// they decode to Unknown and the raw code string travels with the record.
package codes

import (
	"fmt"
	"strings"
)

// Status is the internal charger status enumeration.
type Status string

const (
	StatusAvailable    Status = "AVAILABLE"
	StatusCharging     Status = "CHARGING"
	StatusOutOfService Status = "OUT_OF_SERVICE"
	StatusCommFail     Status = "COMM_FAIL"
	StatusCommMissing  Status = "COMM_MISSING"
	StatusReserved     Status = "RESERVED"
	StatusStopped      Status = "STOPPED"
	StatusMaintenance  Status = "MAINTENANCE"
	StatusPaused       Status = "PAUSED"
	StatusUnknown      Status = "UNKNOWN"
)

var statusByCode = map[string]Status{
	"0": StatusCommMissing,
	"1": StatusAvailable,
	"2": StatusCharging,
	"3": StatusOutOfService,
	"4": StatusCommFail,
	"5": StatusReserved,
	"6": StatusStopped,
	"7": StatusMaintenance,
	"8": StatusPaused,
	"9": StatusUnknown,
}

// DecodeStatus maps a provider cpStat code to the internal status.
func DecodeStatus(code string) Status {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return StatusUnknown
}

var speedByCode = map[string]string{
	"1": "Slow",
	"2": "Fast",
}

var connectorByCode = map[string]string{
	"1":  "B-Type (5 pin)",
	"2":  "C-Type (5 pin)",
	"3":  "BC-Type (5 pin)",
	"4":  "BC-Type (7 pin)",
	"5":  "DC CHAdeMO",
	"6":  "AC 3-phase",
	"7":  "DC Combo",
	"8":  "DC CHAdeMO + DC Combo",
	"9":  "DC CHAdeMO + AC 3-phase",
	"10": "DC CHAdeMO + DC Combo + AC 3-phase",
}

// TypeCode packs the provider's chargeTp and cpTp codes into the single
// type_code column, e.g. "2:7".
func TypeCode(chargeTp, cpTp string) string {
	return chargeTp + ":" + cpTp
}

// DecodeTypeCode labels a packed type code. Inputs that are not in the
// packed form are labeled as a bare connector code.
func DecodeTypeCode(code string) string {
	chargeTp, cpTp, found := strings.Cut(code, ":")
	if !found {
		return DecodeType("", code)
	}
	return DecodeType(chargeTp, cpTp)
}

// DecodeType composes a human label from the provider's chargeTp (speed) and
// cpTp (connector) codes, e.g. "Fast / DC Combo". Codes it does not recognize
// pass through verbatim so nothing is lost in the label.
func DecodeType(chargeTp, cpTp string) string {
	speed, ok := speedByCode[chargeTp]
	if !ok {
		speed = chargeTp
	}
	connector, ok := connectorByCode[cpTp]
	if !ok {
		connector = cpTp
	}
	switch {
	case speed == "" && connector == "":
		return ""
	case speed == "":
		return connector
	case connector == "":
		return speed
	}
	return fmt.Sprintf("%s / %s", speed, connector)
}
