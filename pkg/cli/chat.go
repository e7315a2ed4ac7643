package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/service/extract"
	"github.com/dridi71/sarah/pkg/usecase/chat"
	"github.com/dridi71/sarah/pkg/usecase/corpus"
	"github.com/dridi71/sarah/pkg/usecase/history"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Aliases:     []string{"id"},
			Usage:       "Continue an existing conversation instead of starting a new one",
			Sources:     cli.EnvVars("SARAH_CONVERSATION_ID"),
			Destination: &conversationID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, gatewayFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with the tutor",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

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

			id := model.ConversationID(conversationID)
			if id == "" {
				id = store.Create(ctx)
			}

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

			return runChatLoop(ctx, c, session, store, cfg.lang())
		},
	}
}

func runChatLoop(ctx context.Context, c *cli.Command, session *chat.Session, store *history.Store, lang locale.Language) error {
	rl, err := readline.New("> ")
	if err != nil {
		return goerr.Wrap(err, "failed to initialize readline")
	}
	defer rl.Close()

	fmt.Fprintf(c.Root().Writer, "Chat session started. Type 'exit' to quit, '/attach <path>' to attach a file.\n")

	var attachment *model.Attachment
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read input")
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "exit":
			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil

		case line == "":
			continue

		case strings.HasPrefix(line, "/attach "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/attach "))
			attachment, err = attachFile(ctx, path)
			if err != nil {
				// Localized per failure case; the file can simply be retried
				fmt.Fprintf(c.Root().Writer, "%s\n", extractionMessage(lang, err))
				attachment = nil
				continue
			}
			fmt.Fprintf(c.Root().Writer, "Attached %s (%s)\n", attachment.Name, attachment.Kind)

		default:
			sendMessage(ctx, c, session, line, attachment)
			attachment = nil
		}
	}

	if !store.Healthy() {
		fmt.Fprintf(c.Root().Writer, "Warning: the last save failed; this session is running in memory only.\n")
	}

	fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
	return nil
}

func sendMessage(ctx context.Context, c *cli.Command, session *chat.Session, message string, attachment *model.Attachment) {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Start()

	var once sync.Once
	observe := func(fragment string) {
		once.Do(sp.Stop)
		fmt.Fprint(c.Root().Writer, fragment)
	}

	err := session.Send(ctx, message, attachment, observe)
	once.Do(sp.Stop)

	if err != nil {
		// The conversation already holds the localized error notice
		fmt.Fprintf(c.Root().Writer, "%s\n", err.Error())
		return
	}
	fmt.Fprintln(c.Root().Writer)
}

// attachFile runs the extraction pipeline over a local file
func attachFile(ctx context.Context, path string) (*model.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}

	return extract.Process(ctx, filepath.Base(path), "", data)
}

// extractionMessage maps an extraction failure to its localized user message
func extractionMessage(lang locale.Language, err error) string {
	switch {
	case errors.Is(err, extract.ErrFileTooLarge):
		return locale.T(lang, "errorFileSize")
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return locale.T(lang, "errorFileFormat")
	case errors.Is(err, extract.ErrEmptyContent):
		return locale.T(lang, "errorFileContent")
	default:
		return locale.T(lang, "errorFileRead")
	}
}
