package decode

import "strings"

// wordBoundaryMarker is SentencePiece's U+2581 marker for the start of a word.
const wordBoundaryMarker = "▁"

// Token is one decoded subword with its timing and confidence.
type Token struct {
	ID         int
	Text       string
	StartMs    float64
	EndMs      float64
	Confidence float64
}

// Word is a complete word re-aggregated from one or more subword Tokens.
type Word struct {
	Text       string
	StartMs    float64
	EndMs      float64
	Confidence float64
}

// TokensToWords merges SentencePiece subword tokens into whole words,
// splitting on the ▁ word-boundary marker and averaging confidence across
// the tokens that compose each word.
func TokensToWords(tokens []Token) []Word {
	var words []Word
	var current []Token

	flush := func() {
		if len(current) == 0 {
			return
		}
		var sb strings.Builder
		var confSum float64
		for _, tok := range current {
			sb.WriteString(tok.Text)
			confSum += tok.Confidence
		}
		text := strings.TrimSpace(strings.ReplaceAll(sb.String(), wordBoundaryMarker, " "))
		if text != "" {
			words = append(words, Word{
				Text:       text,
				StartMs:    current[0].StartMs,
				EndMs:      current[len(current)-1].EndMs,
				Confidence: confSum / float64(len(current)),
			})
		}
		current = nil
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok.Text, wordBoundaryMarker) && len(current) > 0 {
			flush()
		}
		current = append(current, tok)
	}
	flush()

	return words
}
