package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "sarah",
		Usage: "Educational AI tutor for the Tunisian curriculum",
		Commands: []*cli.Command{
			serveCommand(),
			chatCommand(),
			historyCommand(),
			corpusCommand(),
			quizCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
