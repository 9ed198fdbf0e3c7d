package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/cli/config"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/service/embedding"
	"github.com/mnemo-lab/mnemosyne/pkg/service/extract"
	"github.com/mnemo-lab/mnemosyne/pkg/service/report"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// engineConfig bundles the flags shared by the one-shot engine commands
// (remember, recall).
type engineConfig struct {
	userID    string
	projectID string
	repoCfg   config.Repository
	geminiCfg config.Gemini
	policyCfg config.Policy
}

func (e *engineConfig) flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User ID acting on the project (required)",
			Required:    true,
			Sources:     cli.EnvVars("MNEMOSYNE_USER_ID"),
			Destination: &e.userID,
		},
		&cli.StringFlag{
			Name:        "project",
			Usage:       "Project ID (required)",
			Required:    true,
			Sources:     cli.EnvVars("MNEMOSYNE_PROJECT"),
			Destination: &e.projectID,
		},
	}
	flags = append(flags, e.repoCfg.Flags()...)
	flags = append(flags, e.geminiCfg.Flags()...)
	flags = append(flags, e.policyCfg.Flags()...)
	return flags
}

// configure builds the full engine stack. The returned closer shuts down
// the repository.
func (e *engineConfig) configure(ctx context.Context) (*usecase.UseCases, func(), error) {
	repo, err := e.repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	uc, err := buildUseCases(ctx, repo, &e.geminiCfg, &e.policyCfg)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return uc, closer, nil
}

func buildUseCases(ctx context.Context, repo interfaces.Repository, geminiCfg *config.Gemini, policyCfg *config.Policy) (*usecase.UseCases, error) {
	policy, err := policyCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load policy")
	}

	llmClient, err := geminiCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure LLM client")
	}

	embedder, err := embedding.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedding service")
	}
	extractor, err := extract.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create extract service")
	}
	reporter, err := report.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create report service")
	}

	return usecase.New(repo, embedder, extractor, reporter, usecase.WithPolicy(policy)), nil
}

func cmdRemember() *cli.Command {
	var engCfg engineConfig

	return &cli.Command{
		Name:      "remember",
		Usage:     "Extract and store memories from a conversation turn",
		ArgsUsage: "<conversation text>",
		Flags:     engCfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			conversation := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(conversation) == "" {
				return goerr.New("conversation text is required")
			}

			uc, closer, err := engCfg.configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			result, err := uc.Ingest(ctx, types.UserID(engCfg.userID), types.ProjectID(engCfg.projectID), conversation)
			if err != nil {
				return goerr.Wrap(err, "failed to ingest conversation")
			}

			for _, m := range result.Saved {
				fmt.Printf("%s %s\n", color.GreenString("saved"), m.Text)
			}
			for _, ignored := range result.Ignored {
				fmt.Printf("%s %s (%s)\n", color.YellowString("skipped"), ignored.Text, ignored.Reason)
			}
			if len(result.Saved) == 0 && len(result.Ignored) == 0 {
				fmt.Println("No memorable facts found")
			}
			return nil
		},
	}
}
