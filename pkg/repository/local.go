package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dridi71/sarah/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	conversationsFile = "conversations.json"
	corpusFile        = "corpus.json"
)

// localRepo implements Repository using two JSON files under a data
// directory, mirroring the two keyed blobs of the original storage layout
type localRepo struct {
	dir string
}

// NewLocal creates a file-backed repository rooted at dir. The directory is
// created on first use if it does not exist.
func NewLocal(dir string) (Repository, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}
	return &localRepo{dir: dir}, nil
}

func (r *localRepo) LoadConversations(ctx context.Context) ([]*model.Conversation, error) {
	var conversations []*model.Conversation
	if err := r.load(conversationsFile, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *localRepo) SaveConversations(ctx context.Context, conversations []*model.Conversation) error {
	if conversations == nil {
		conversations = []*model.Conversation{}
	}
	return r.save(conversationsFile, conversations)
}

func (r *localRepo) LoadDocuments(ctx context.Context) ([]*model.CorpusDocument, error) {
	var documents []*model.CorpusDocument
	if err := r.load(corpusFile, &documents); err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *localRepo) SaveDocuments(ctx context.Context, documents []*model.CorpusDocument) error {
	if documents == nil {
		documents = []*model.CorpusDocument{}
	}
	return r.save(corpusFile, documents)
}

func (r *localRepo) load(name string, v any) error {
	path := filepath.Join(r.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to read blob", goerr.V("path", path))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to unmarshal blob", goerr.V("path", path))
	}
	return nil
}

func (r *localRepo) save(name string, v any) error {
	path := filepath.Join(r.dir, name)
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal blob", goerr.V("path", path))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write blob", goerr.V("path", path))
	}
	return nil
}
