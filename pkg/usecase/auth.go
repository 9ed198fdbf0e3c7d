package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/auth"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// IssueToken creates and stores a new API token for the given user
func (uc *UseCases) IssueToken(ctx context.Context, userID types.UserID) (*auth.Token, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid user ID", goerr.V("userID", userID))
	}

	token := auth.NewToken(userID, auth.DefaultTokenTTL)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token")
	}

	return token, nil
}

// ValidateToken looks up the token by ID and verifies the presented
// secret. Lookup failure and secret mismatch are indistinguishable to the
// caller.
func (uc *UseCases) ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Token, error) {
	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "token lookup failed")
	}

	if err := token.Validate(secret); err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "token validation failed")
	}

	return token, nil
}

// RevokeToken deletes a token
func (uc *UseCases) RevokeToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V("tokenID", tokenID))
	}
	return nil
}
