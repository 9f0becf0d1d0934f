package model

import "time"

// ChainMode is the process-wide chain registry mode resolved at startup.
type ChainMode string

const (
	ChainModeLive    ChainMode = "live"
	ChainModeTesting ChainMode = "testing"
)

// Testing reports whether chain calls are simulated in-process.
func (m ChainMode) Testing() bool {
	return m != ChainModeLive
}

// ChainStatus is the outcome of the on-chain registration step of a submission.
type ChainStatus string

const (
	ChainRegistered         ChainStatus = "registered"
	ChainAttemptedButFailed ChainStatus = "attemptedButFailed"
	ChainNotConfigured      ChainStatus = "notConfigured"
)

// ChainEntry is the tuple written to the registry contract.
type ChainEntry struct {
	Hash      string
	URL       string
	Timestamp int64
}

// ChainRecord is what the registry knows about a fingerprint.
type ChainRecord struct {
	Hash         string `json:"hash"`
	URL          string `json:"url"`
	RegisteredAt int64  `json:"registered_at"`
	Submitter    string `json:"submitter,omitempty"`
	TxRef        string `json:"tx_ref,omitempty"`
}

// ChainData is the response shape of a chain record.
type ChainData struct {
	SourceURL string `json:"sourceUrl"`
	Timestamp string `json:"timestamp"`
	Submitter string `json:"submitter,omitempty"`
}

// Data converts the record into its response shape.
func (r ChainRecord) Data() ChainData {
	return ChainData{
		SourceURL: r.URL,
		Timestamp: time.Unix(r.RegisteredAt, 0).UTC().Format(time.RFC3339),
		Submitter: r.Submitter,
	}
}
