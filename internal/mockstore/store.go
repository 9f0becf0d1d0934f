// Package mockstore holds the in-process state behind testing mode: chain
// records synthesized or registered without a real chain, and provisioned users.
package mockstore

import (
	"context"

	"newsLedger/internal/model"
)

// ChainStore keeps chain records keyed by fingerprint.
type ChainStore interface {
	GetRecord(ctx context.Context, hash string) (model.ChainRecord, bool, error)
	// PutRecordIfAbsent stores rec unless a record for rec.Hash exists, and
	// returns whichever record is stored afterwards.
	PutRecordIfAbsent(ctx context.Context, rec model.ChainRecord) (model.ChainRecord, error)
}

// UserStore keeps user identities keyed by lowercase address.
type UserStore interface {
	GetUser(ctx context.Context, address string) (model.UserIdentity, bool, error)
	PutUser(ctx context.Context, user model.UserIdentity) error
}

// Store is the full testing-mode state.
type Store interface {
	ChainStore
	UserStore
}
