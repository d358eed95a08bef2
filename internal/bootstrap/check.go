package bootstrap

// Check is a single startup-time validator of one environmental condition.
//
// Check must be cheap, read-only and idempotent. It returns true when the
// condition is violated. An error means a probe accessor failed outright,
// which aborts startup regardless of enforcement.
//
// Message re-reads live probe values so the text reflects the current state.
// It is only meaningful after Check returned true but must be safe to call
// at any time.
type Check interface {
	Name() string
	Check() (bool, error)
	Message() string
}

// Settings are the configuration inputs to the check catalog.
type Settings struct {
	// MemoryLock is true when the node was configured to lock its memory.
	MemoryLock bool
	// MinimumMasterNodesSet is true when the quorum setting is present.
	MinimumMasterNodesSet bool
}
