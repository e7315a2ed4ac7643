package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/service/extract"
	"github.com/dridi71/sarah/pkg/usecase/corpus"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func corpusCommand() *cli.Command {
	return &cli.Command{
		Name:  "corpus",
		Usage: "Manage the knowledge base used to ground answers",
		Commands: []*cli.Command{
			corpusAddCommand(),
			corpusListCommand(),
			corpusDeleteCommand(),
		},
	}
}

func corpusAddCommand() *cli.Command {
	var (
		cfg     config
		name    string
		content string
		file    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Document name",
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "content",
			Usage:       "Document content as a literal string",
			Destination: &content,
		},
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Extract the content from a file (pdf, docx, xlsx, txt)",
			Destination: &file,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "add",
		Usage: "Add a document to the knowledge base",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return goerr.Wrap(err, "failed to read file", goerr.V("path", file))
				}

				attachment, err := extract.Process(ctx, filepath.Base(file), "", data)
				if err != nil {
					return goerr.New(extractionMessage(cfg.lang(), err))
				}
				if attachment.Kind != model.AttachmentDocument {
					return goerr.New("only text-bearing documents can join the corpus", goerr.V("kind", attachment.Kind))
				}

				content = attachment.Content
				if name == "" {
					name = attachment.Name
				}
			}

			// Validation lives here at the input boundary; the store accepts
			// whatever it is given
			if name == "" {
				return goerr.New("document name is required")
			}
			if content == "" {
				return goerr.New("document content is required")
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			store := corpus.New(ctx, repo)
			id := store.Add(ctx, name, content)
			fmt.Fprintf(c.Root().Writer, "%s\n", id)
			return nil
		},
	}
}

func corpusListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List knowledge base documents",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			store := corpus.New(ctx, repo)
			documents := store.Documents()
			if len(documents) == 0 {
				fmt.Fprintf(c.Root().Writer, "%s\n", locale.T(cfg.lang(), "corpusEmptyState"))
				return nil
			}

			for _, doc := range documents {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%d bytes\n", doc.ID, doc.Name, len(doc.Content))
			}
			return nil
		},
	}
}

func corpusDeleteCommand() *cli.Command {
	var (
		cfg        config
		documentID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "document-id",
			Aliases:     []string{"id"},
			Usage:       "Document to delete",
			Required:    true,
			Destination: &documentID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "delete",
		Usage: "Remove a document from the knowledge base",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			store := corpus.New(ctx, repo)
			store.Delete(ctx, model.DocumentID(documentID))
			return nil
		},
	}
}
