package decode

import (
	"sync"
	"time"
)

const (
	recentHashRingSize = 10
	lastTextsRingSize  = 6
)

// Tokenizer decodes CTC token ids to text and individual pieces. Satisfied
// by *tokenizer.Tokenizer.
type Tokenizer interface {
	DecodeIDs(ids []int) string
	IDToPiece(id int) string
}

// Config holds the decoder's tunable thresholds.
type Config struct {
	MinChars                  int
	SimilarityThreshold       float64
	DuplicateCooldown         time.Duration
	EnableConfidenceStitching bool
	ConfidenceThreshold       float64
	OverlapWordCount          int
}

// Result is one decoded, post-filtered transcription chunk.
type Result struct {
	Text        string
	Words       []Word
	Language    string
	Emotion     string
	AudioEvents []string
	RawText     string
	HasITN      bool
	Confidence  float64
}

// Decoder turns NPU logits into Results, applying the blank gate, content
// gate, confidence-gated stitching, and duplicate suppression described by
// the reference pipeline's TranscriptionDecoder.
type Decoder struct {
	mu sync.Mutex

	tok Tokenizer
	cfg Config

	recentHashes *hashRing
	lastTexts    *textRing
	lastEmitAt   time.Time
	prevTail     chunkTail
	havePrevTail bool
}

// New constructs a Decoder.
func New(tok Tokenizer, cfg Config) *Decoder {
	return &Decoder{
		tok:          tok,
		cfg:          cfg,
		recentHashes: newHashRing(recentHashRingSize),
		lastTexts:    newTextRing(lastTextsRingSize),
	}
}

// Decode runs the full decode pipeline on one chunk's logits, shaped
// [vocab][frames]. audioHash is the chunk's dedup fingerprint. Returns
// (nil, false) when the chunk is filtered out at any gate.
func (d *Decoder) Decode(logits [][]float64, audioHash uint64) (*Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recentHashes.contains(audioHash) {
		return nil, false
	}

	probs := Softmax(logits)
	if ok, _ := BlankGateOK(probs); !ok {
		return nil, false
	}

	ids := Argmax(logits)
	runs := CollapseRuns(ids, probs)
	if len(runs) == 0 {
		return nil, false
	}

	var confSum float64
	tokenIDs := make([]int, len(runs))
	tokens := make([]Token, len(runs))
	for i, r := range runs {
		tokenIDs[i] = r.TokenID
		confSum += r.Confidence
		tokens[i] = Token{
			ID:         r.TokenID,
			Text:       d.tok.IDToPiece(r.TokenID),
			StartMs:    FrameToMs(r.StartFrame),
			EndMs:      FrameToMs(r.EndFrame),
			Confidence: r.Confidence,
		}
	}
	avgConfidence := confSum / float64(len(runs))

	rawText := d.tok.DecodeIDs(tokenIDs)
	meta := ParseMetadataTokens(rawText)
	cleanText := meta.Text

	if CountAlnum(cleanText) < d.cfg.MinChars {
		return nil, false
	}

	if d.cfg.EnableConfidenceStitching && d.havePrevTail {
		cleanText = ApplyConfidenceStitching(cleanText, avgConfidence, d.prevTail, d.cfg.ConfidenceThreshold)
	}
	if d.cfg.EnableConfidenceStitching {
		d.prevTail = StoreTail(cleanText, avgConfidence, d.cfg.OverlapWordCount)
		d.havePrevTail = true
	}

	now := time.Now()
	lowerClean := toLower(cleanText)
	for _, prevText := range d.lastTexts.all() {
		if Similarity(lowerClean, toLower(prevText)) >= d.cfg.SimilarityThreshold {
			if now.Sub(d.lastEmitAt) < d.cfg.DuplicateCooldown {
				return nil, false
			}
		}
	}
	d.lastTexts.push(cleanText)
	d.lastEmitAt = now
	d.recentHashes.push(audioHash)

	words := TokensToWords(tokens)

	return &Result{
		Text:        cleanText,
		Words:       words,
		Language:    meta.Language,
		Emotion:     meta.Emotion,
		AudioEvents: meta.AudioEvents,
		RawText:     meta.RawText,
		HasITN:      meta.HasITN,
		Confidence:  avgConfidence,
	}, true
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
