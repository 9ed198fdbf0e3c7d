package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdRecall() *cli.Command {
	var engCfg engineConfig

	return &cli.Command{
		Name:      "recall",
		Usage:     "Retrieve memories relevant to a query",
		ArgsUsage: "<query>",
		Flags:     engCfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return goerr.New("query text is required")
			}

			uc, closer, err := engCfg.configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			memories, err := uc.Recall(ctx, types.UserID(engCfg.userID), types.ProjectID(engCfg.projectID), query)
			if err != nil {
				return goerr.Wrap(err, "failed to recall memories")
			}

			if len(memories) == 0 {
				fmt.Println("No memories found")
				return nil
			}

			for _, m := range memories {
				fmt.Println(m.RecallLine())
				if len(m.Tags) > 0 {
					fmt.Printf("  %s %s\n", color.MagentaString("tags:"), m.TagText())
				}
			}
			fmt.Printf("\n%d memories\n", len(memories))
			return nil
		},
	}
}
