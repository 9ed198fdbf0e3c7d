package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/auth"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type tokenDoc struct {
	ID        auth.TokenID     `firestore:"id"`
	Secret    auth.TokenSecret `firestore:"secret"`
	UserID    types.UserID     `firestore:"user_id"`
	CreatedAt time.Time        `firestore:"created_at"`
	ExpiresAt time.Time        `firestore:"expires_at"`
}

type tokenRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTokenRepository(client *firestore.Client) *tokenRepository {
	return &tokenRepository{client: client}
}

func (r *tokenRepository) tokensCollection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "tokens")
}

func (r *tokenRepository) put(ctx context.Context, token *auth.Token) error {
	doc := &tokenDoc{
		ID:        token.ID,
		Secret:    token.Secret,
		UserID:    token.UserID,
		CreatedAt: token.CreatedAt,
		ExpiresAt: token.ExpiresAt,
	}
	if _, err := r.tokensCollection().Doc(string(token.ID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put token", goerr.V("tokenID", token.ID))
	}
	return nil
}

func (r *tokenRepository) get(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	doc, err := r.tokensCollection().Doc(string(tokenID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "token not found", goerr.V("tokenID", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token", goerr.V("tokenID", tokenID))
	}

	var d tokenDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal token", goerr.V("tokenID", tokenID))
	}

	return &auth.Token{
		ID:        d.ID,
		Secret:    d.Secret,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}, nil
}

func (r *tokenRepository) delete(ctx context.Context, tokenID auth.TokenID) error {
	if _, err := r.tokensCollection().Doc(string(tokenID)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V("tokenID", tokenID))
	}
	return nil
}

func (f *Firestore) PutToken(ctx context.Context, token *auth.Token) error {
	return f.tokens.put(ctx, token)
}

func (f *Firestore) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	return f.tokens.get(ctx, tokenID)
}

func (f *Firestore) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	return f.tokens.delete(ctx, tokenID)
}
