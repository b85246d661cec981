package status

import "time"

// SyncPhase represents the current phase of a list sync
type SyncPhase string

const (
	// SyncPhaseSyncing means the list is being fetched and stored
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last sync stored every crate of the list
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last sync failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// SyncStatus is the recorded state of one list
type SyncStatus struct {
	Phase SyncPhase `json:"phase"`

	// Message describes the failure when Phase is Failed
	Message string `json:"message,omitempty"`

	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of attempts since the last success
	AttemptCount int `json:"attemptCount,omitempty"`

	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// LastSyncHash identifies the set of crate keys stored by the last success,
	// so unchanged lists can be told apart from changed ones
	LastSyncHash string `json:"lastSyncHash,omitempty"`

	// CrateCount is the number of crates stored by the last success
	CrateCount int `json:"crateCount,omitempty"`
}
