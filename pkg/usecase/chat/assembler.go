package chat

import (
	"context"
	"fmt"
	"iter"

	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/usecase/history"
	"github.com/m-mizutani/goerr/v2"
)

// Assembler bridges a stream of text fragments into conversation store
// mutations, producing the appearance of progressive generation
type Assembler struct {
	store *history.Store
	lang  locale.Language
}

// NewAssembler creates an assembler writing into the given store
func NewAssembler(store *history.Store, lang locale.Language) *Assembler {
	return &Assembler{store: store, lang: lang}
}

// Consume applies each fragment to the last assistant message of the
// conversation, exactly once per fragment and strictly in arrival order. If
// the producer fails mid-sequence, the accumulated partial content is
// overwritten with a localized error notice and reading stops. The optional
// observe callback sees each fragment after it is applied (used for live
// terminal output).
func (a *Assembler) Consume(ctx context.Context, id model.ConversationID, fragments iter.Seq2[string, error], observe func(fragment string)) error {
	for fragment, err := range fragments {
		if err != nil {
			a.store.ApplyToLast(ctx, id, model.ContentUpdate(ErrorNotice(a.lang, err)))
			return goerr.Wrap(err, "response stream failed")
		}

		a.store.AppendFragment(ctx, id, fragment)
		if observe != nil {
			observe(fragment)
		}
	}
	return nil
}

// ErrorNotice formats an error as the localized message shown in place of an
// assistant answer
func ErrorNotice(lang locale.Language, err error) string {
	return fmt.Sprintf("**%s:** %s", locale.T(lang, "errorTitle"), err.Error())
}
