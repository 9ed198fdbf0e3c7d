package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/cli/config"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/auth"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdToken() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage API tokens",
		Commands: []*cli.Command{
			cmdTokenIssue(),
			cmdTokenRevoke(),
		},
	}
}

func cmdTokenIssue() *cli.Command {
	var userID string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User ID the token is issued for (required)",
			Required:    true,
			Sources:     cli.EnvVars("MNEMOSYNE_USER_ID"),
			Destination: &userID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "issue",
		Usage: "Issue a new API token",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, nil, nil, nil)
			token, err := uc.IssueToken(ctx, types.UserID(userID))
			if err != nil {
				return goerr.Wrap(err, "failed to issue token")
			}

			// The secret is shown exactly once; it is never logged and
			// cannot be retrieved later.
			fmt.Printf("%s %s\n", color.CyanString("Token ID:"), token.ID)
			fmt.Printf("%s %s\n", color.CyanString("Secret:  "), token.Secret)
			fmt.Printf("%s %s\n", color.CyanString("Expires: "), token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Printf("\nUse as: Authorization: Bearer %s:%s\n", token.ID, token.Secret)
			return nil
		},
	}
}

func cmdTokenRevoke() *cli.Command {
	var tokenID string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "token-id",
			Usage:       "Token ID to revoke (required)",
			Required:    true,
			Destination: &tokenID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "revoke",
		Usage: "Revoke an API token",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, nil, nil, nil)
			if err := uc.RevokeToken(ctx, auth.TokenID(tokenID)); err != nil {
				return goerr.Wrap(err, "failed to revoke token")
			}

			fmt.Printf("Token %s revoked\n", tokenID)
			return nil
		},
	}
}
