// Package tokenizer wraps the SentencePiece model used to turn CTC token
// ids back into text and individual word-piece strings.
package tokenizer

import (
	"github.com/orangepi5/micasr/internal/errors"
	sentencepiece "github.com/vikesh-raj/go-sentencepiece-encoder"
)

// Tokenizer decodes CTC token ids into text and individual pieces,
// mirroring the SentencePiece processor's DecodeIds/IdToPiece surface.
type Tokenizer struct {
	sp *sentencepiece.Sentencepiece
}

// Load reads a SentencePiece model file.
func Load(modelPath string) (*Tokenizer, error) {
	sp, err := sentencepiece.NewSentencepieceFromFile(modelPath, false)
	if err != nil {
		return nil, errors.New(err).Component("tokenizer").Category(errors.CategoryInit).
			Context("path", modelPath).Build()
	}
	return &Tokenizer{sp: sp}, nil
}

// DecodeIDs joins a sequence of token ids into text.
func (t *Tokenizer) DecodeIDs(ids []int) string {
	return t.sp.DecodeIds(ids)
}

// IDToPiece returns the raw subword piece text for a single token id,
// including its leading ▁ word-boundary marker if present.
func (t *Tokenizer) IDToPiece(id int) string {
	return t.sp.IdToPiece(id)
}
