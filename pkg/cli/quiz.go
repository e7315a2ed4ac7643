package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/usecase/chat"
	"github.com/dridi71/sarah/pkg/usecase/corpus"
	"github.com/dridi71/sarah/pkg/usecase/history"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func quizCommand() *cli.Command {
	var (
		cfg          config
		topic        string
		level        string
		numQuestions int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "topic",
			Aliases:     []string{"t"},
			Usage:       "Quiz topic",
			Required:    true,
			Destination: &topic,
		},
		&cli.StringFlag{
			Name:        "level",
			Usage:       "School level (e.g. P6, M7, S2)",
			Required:    true,
			Destination: &level,
		},
		&cli.IntFlag{
			Name:        "questions",
			Aliases:     []string{"q"},
			Usage:       "Number of questions",
			Value:       3,
			Destination: &numQuestions,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, gatewayFlags(&cfg)...)

	return &cli.Command{
		Name:  "quiz",
		Usage: "Generate an interactive quiz and save it to a new conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			if strings.TrimSpace(topic) == "" {
				return goerr.New("quiz topic is required")
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			gateway, err := cfg.newGateway()
			if err != nil {
				return err
			}

			store := history.New(ctx, repo, cfg.lang())
			corpusStore := corpus.New(ctx, repo)
			id := store.Create(ctx)

			session, err := chat.New(chat.NewInput{
				History:        store,
				Corpus:         corpusStore,
				Gateway:        gateway,
				ConversationID: id,
				Language:       cfg.lang(),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create chat session")
			}

			if err := session.GenerateQuiz(ctx, topic, level, int(numQuestions)); err != nil {
				return err
			}

			conv, ok := store.Get(id)
			if !ok || conv.LastMessage() == nil || conv.LastMessage().Quiz == nil {
				return goerr.New("quiz was not attached to the conversation")
			}

			fmt.Fprint(c.Root().Writer, renderQuiz(conv.LastMessage().Quiz))
			return nil
		},
	}
}

func renderQuiz(quiz *model.QuizData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", quiz.Title)

	for i, q := range quiz.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
		for _, option := range q.Options {
			marker := " "
			if option == q.CorrectAnswer {
				marker = "*"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", marker, option)
		}
		fmt.Fprintf(&b, "  > %s\n\n", q.Explanation)
	}
	return b.String()
}
