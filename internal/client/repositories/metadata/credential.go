package metadata

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
)

const (
	keyUsername    = "username"
	keyAccessToken = "access_token"
)

// Credential is the signed-in user cached between client runs.
type Credential struct {
	Username    string
	AccessToken string
}

// CredentialStore keeps at most one Credential in the metadata table.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Save replaces the cached credential; both keys change in one transaction.
func (s *CredentialStore) Save(ctx context.Context, c Credential) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Set(ctx, keyUsername, []byte(c.Username)); err != nil {
			return err
		}
		return r.Set(ctx, keyAccessToken, []byte(c.AccessToken))
	})
}

// Load returns the cached credential; ok is false when none is stored.
func (s *CredentialStore) Load(ctx context.Context) (c Credential, ok bool, err error) {
	r := NewSQLiteRepository(s.db)

	user, err := r.Get(ctx, keyUsername)
	if err != nil {
		return Credential{}, false, err
	}
	token, err := r.Get(ctx, keyAccessToken)
	if err != nil {
		return Credential{}, false, err
	}
	if len(user) == 0 || len(token) == 0 {
		return Credential{}, false, nil
	}

	return Credential{Username: string(user), AccessToken: string(token)}, true, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Delete(ctx, keyUsername); err != nil {
			return err
		}
		return r.Delete(ctx, keyAccessToken)
	})
}
