package enums

import "fmt"

// GateState is the supplier onboarding position: a store must exist, then a
// profile, before the catalog can be managed.
type GateState string

const (
	GateStateNoStore   GateState = "no_store"
	GateStateNoProfile GateState = "no_profile"
	GateStateReady     GateState = "ready"
)

var validGateStates = []GateState{
	GateStateNoStore,
	GateStateNoProfile,
	GateStateReady,
}

// String implements fmt.Stringer.
func (g GateState) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GateState.
func (g GateState) IsValid() bool {
	for _, candidate := range validGateStates {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGateState converts raw input into a GateState.
func ParseGateState(value string) (GateState, error) {
	for _, candidate := range validGateStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gate state %q", value)
}
