package cli

import (
	"context"
	"fmt"

	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/usecase/history"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect and manage saved conversations",
		Commands: []*cli.Command{
			historyListCommand(),
			historyShowCommand(),
			historyDeleteCommand(),
			historyRenameCommand(),
			historyFeedbackCommand(),
		},
	}
}

func historyListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List all conversations, newest first",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := openStore(ctx, &cfg)
			if err != nil {
				return err
			}

			for _, conv := range store.Conversations() {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%d messages\t%s\n",
					conv.ID,
					conv.Title,
					len(conv.Messages),
					conv.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			return nil
		},
	}
}

func historyShowCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Aliases:     []string{"id"},
			Usage:       "Conversation to display",
			Required:    true,
			Destination: &conversationID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Print all messages of a conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := openStore(ctx, &cfg)
			if err != nil {
				return err
			}

			conv, ok := store.Get(model.ConversationID(conversationID))
			if !ok {
				return goerr.New("conversation not found", goerr.V("conversation_id", conversationID))
			}

			fmt.Fprintf(c.Root().Writer, "%s (%s)\n\n", conv.Title, conv.CreatedAt.Format("2006-01-02 15:04:05"))
			for _, msg := range conv.Messages {
				fmt.Fprintf(c.Root().Writer, "[%s] %s\n", msg.Role, msg.Content)
				if msg.Attachment != nil {
					fmt.Fprintf(c.Root().Writer, "  (attachment: %s, %s)\n", msg.Attachment.Name, msg.Attachment.Kind)
				}
				if msg.Quiz != nil {
					fmt.Fprint(c.Root().Writer, renderQuiz(msg.Quiz))
				}
				if msg.Feedback != model.FeedbackNone {
					fmt.Fprintf(c.Root().Writer, "  (feedback: %s)\n", msg.Feedback)
				}
				fmt.Fprintln(c.Root().Writer)
			}
			return nil
		},
	}
}

func historyDeleteCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Aliases:     []string{"id"},
			Usage:       "Conversation to delete",
			Required:    true,
			Destination: &conversationID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := openStore(ctx, &cfg)
			if err != nil {
				return err
			}

			store.Delete(ctx, model.ConversationID(conversationID))
			return nil
		},
	}
}

func historyRenameCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
		title          string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Aliases:     []string{"id"},
			Usage:       "Conversation to rename",
			Required:    true,
			Destination: &conversationID,
		},
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "New title",
			Required:    true,
			Destination: &title,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "rename",
		Usage: "Rename a conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := openStore(ctx, &cfg)
			if err != nil {
				return err
			}

			store.Rename(ctx, model.ConversationID(conversationID), title)
			return nil
		},
	}
}

func historyFeedbackCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
		messageID      string
		disliked       bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Aliases:     []string{"id"},
			Usage:       "Conversation holding the message",
			Required:    true,
			Destination: &conversationID,
		},
		&cli.StringFlag{
			Name:        "message-id",
			Aliases:     []string{"m"},
			Usage:       "Message to react to",
			Required:    true,
			Destination: &messageID,
		},
		&cli.BoolFlag{
			Name:        "dislike",
			Usage:       "Record a dislike instead of a like",
			Destination: &disliked,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "feedback",
		Usage: "Like or dislike an answer; repeating the same reaction clears it",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			store, err := openStore(ctx, &cfg)
			if err != nil {
				return err
			}

			feedback := model.FeedbackLiked
			if disliked {
				feedback = model.FeedbackDisliked
			}
			store.SetFeedback(ctx, model.ConversationID(conversationID), model.MessageID(messageID), feedback)
			return nil
		},
	}
}

func openStore(ctx context.Context, cfg *config) (*history.Store, error) {
	repo, err := cfg.newRepository()
	if err != nil {
		return nil, err
	}
	return history.New(ctx, repo, cfg.lang()), nil
}
