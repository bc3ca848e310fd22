package constants

// PassStatus is the canonical status for rows in extraction_passes.
type PassStatus string

// Stable values (store these exact strings in DB).
const (
	PassStatusPending    PassStatus = "pending"    // created, not yet picked up
	PassStatusProcessing PassStatus = "processing" // page loop in progress
	PassStatusCompleted  PassStatus = "completed"  // terminal success
	PassStatusFailed     PassStatus = "failed"     // terminal failure, error_message set
)

func (s PassStatus) Terminal() bool {
	return s == PassStatusCompleted || s == PassStatusFailed
}
