package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/auth"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
)

func TestToken_IssueAndValidate(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})
	ctx := context.Background()

	token, err := uc.IssueToken(ctx, testUserID)
	gt.NoError(t, err).Required()
	gt.Value(t, token.UserID).Equal(testUserID)
	gt.Bool(t, token.ExpiresAt.After(token.CreatedAt)).True()

	validated, err := uc.ValidateToken(ctx, token.ID, token.Secret)
	gt.NoError(t, err).Required()
	gt.Value(t, validated.UserID).Equal(testUserID)
}

func TestToken_RejectsWrongSecret(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})
	ctx := context.Background()

	token, err := uc.IssueToken(ctx, testUserID)
	gt.NoError(t, err).Required()

	_, err = uc.ValidateToken(ctx, token.ID, auth.TokenSecret("wrong-secret"))
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidToken)).True()
}

func TestToken_RejectsUnknownID(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})

	_, err := uc.ValidateToken(context.Background(), auth.TokenID("missing"), auth.TokenSecret("s"))
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidToken)).True()
}

func TestToken_Revoke(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})
	ctx := context.Background()

	token, err := uc.IssueToken(ctx, testUserID)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.RevokeToken(ctx, token.ID)).Required()

	_, err = uc.ValidateToken(ctx, token.ID, token.Secret)
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidToken)).True()
}

func TestToken_RejectsEmptyUser(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})

	_, err := uc.IssueToken(context.Background(), "")
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
}
