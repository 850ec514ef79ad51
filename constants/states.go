package constants

// Pipeline states, in the order a fresh storage log passes through them.
// StateRouted is reached from any state after StateClassified when a
// compensated failure sends the file to the errors bucket.
const (
	StateStart      = "start"
	StateClassified = "classified"
	StateBypassed   = "bypassed"
	StateGated      = "gated"
	StateDuplicate  = "duplicate"
	StateFresh      = "fresh"
	StateParsed     = "parsed"
	StateInserted   = "inserted"
	StateRelocated  = "relocated"
	StateRouted     = "routed_to_errors"
	StateTerminal   = "terminal"
)

// FreshPath is the happy path for a new storage log.
var FreshPath = []string{
	StateStart,
	StateClassified,
	StateGated,
	StateFresh,
	StateParsed,
	StateInserted,
	StateRelocated,
	StateTerminal,
}

// IsTerminalLocation returns true if loc names one of the valid
// terminal locations.
func IsTerminalLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}
