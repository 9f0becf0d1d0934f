package model

// Source names the store that confirmed a fingerprint.
type Source string

const (
	SourceNone       Source = ""
	SourceDatabase   Source = "database"
	SourceBlockchain Source = "blockchain"
)

// Verdict is the unified verification outcome.
type Verdict struct {
	Verified bool
	Source   Source
	Hash     string
	Article  *Article
	Chain    ChainVerdict
}

// ChainVerdict is the registry half of a verdict.
type ChainVerdict struct {
	Verified bool
	Record   *ChainRecord
}
