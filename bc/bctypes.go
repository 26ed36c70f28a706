package bc

import (
	"fmt"
	"strings"
)

// Type is the ghost fill policy for one face of one dimension
type Type uint16

const (
	// Outflow copies the nearest interior cell into every ghost layer
	Outflow Type = iota
	// Periodic wraps around to the opposite face
	Periodic
	// Extrap extrapolates from the interior, order 0 or 1
	Extrap
	// Wall mirrors the interior and negates the normal momentum components
	Wall
	// Custom delegates the fill to a user supplied Filler
	Custom
)

func (bt Type) String() string {
	names := map[Type]string{
		Outflow:  "Outflow",
		Periodic: "Periodic",
		Extrap:   "Extrap",
		Wall:     "Wall",
		Custom:   "Custom",
	}
	if name, ok := names[bt]; ok {
		return name
	}
	return "Unknown"
}

// NameMap maps boundary policy names to Type, keys are lowercase
var NameMap = map[string]Type{
	"outflow":     Outflow,
	"zero_order":  Outflow,
	"periodic":    Periodic,
	"extrap":      Extrap,
	"extrapolate": Extrap,
	"wall":        Wall,
	"reflect":     Wall,
	"custom":      Custom,
	"user":        Custom,
}

// ParseType converts a policy name to a Type, case-insensitive
func ParseType(name string) (bt Type, err error) {
	var ok bool
	if bt, ok = NameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("bc: unknown boundary type %q", name)
	}
	return
}

// Face selects the lower or upper boundary of a dimension
type Face uint8

const (
	Lower Face = iota
	Upper
)

func (f Face) String() string {
	if f == Lower {
		return "lower"
	}
	return "upper"
}
