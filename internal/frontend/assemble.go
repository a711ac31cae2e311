package frontend

import (
	"github.com/orangepi5/micasr/internal/embedding"
)

// RKNNInputLen is the fixed model input sequence length.
const RKNNInputLen = 171

// SpeechScale scales speech frames to keep fp16 inference from overflowing.
const SpeechScale = 0.5

// LanguageIDs maps the closed language set to the fixed embedding row ids
// the model was trained against.
var LanguageIDs = map[string]int{
	"auto":     0,
	"zh":       3,
	"en":       4,
	"yue":      7,
	"ja":       11,
	"ko":       12,
	"nospeech": 13,
}

const (
	itnQueryRow    = 14
	noITNQueryRow  = 15
	eventQueryRow  = 1
	emotionQueryRow = 2
)

// Frontend extracts Mel/LFR/CMVN features and assembles the final model
// input tensor, including the prepended language/event/ITN query rows.
type Frontend struct {
	opts      FbankOptions
	lfrM      int
	lfrN      int
	cmvn      *CMVN
	maxFrames int
	embed     *embedding.Table
}

// New constructs a Frontend. cmvn may be nil (normalization is then a
// no-op); embed must not be nil since query rows are required.
func New(opts FbankOptions, lfrM, lfrN, maxFrames int, cmvn *CMVN, embed *embedding.Table) *Frontend {
	return &Frontend{opts: opts, lfrM: lfrM, lfrN: lfrN, cmvn: cmvn, maxFrames: maxFrames, embed: embed}
}

// Assemble converts a 16 kHz, [-1, 1]-normalized waveform into the
// [RKNNInputLen][dim]float32 model input tensor for the given language
// and ITN preference.
func (fe *Frontend) Assemble(waveform []float32, language string, useITN bool) [][]float32 {
	scaled := make([]float64, len(waveform))
	for i, s := range waveform {
		scaled[i] = float64(s) * (1 << 15)
	}

	feats := Fbank(scaled, fe.opts)
	lfr := ApplyLFR(feats, fe.lfrM, fe.lfrN)
	if fe.cmvn != nil {
		lfr = ApplyCMVN(lfr, fe.cmvn.Mean, fe.cmvn.Variance)
	}

	if len(lfr) > fe.maxFrames {
		lfr = lfr[:fe.maxFrames]
	}

	dim := fe.embed.Dim()
	speechRows := make([][]float32, len(lfr))
	for i, row := range lfr {
		out := make([]float32, dim)
		for d := 0; d < dim && d < len(row); d++ {
			out[d] = float32(row[d]) * SpeechScale
		}
		speechRows[i] = out
	}

	langID, ok := LanguageIDs[language]
	if !ok {
		langID = LanguageIDs["auto"]
	}
	itnRow := noITNQueryRow
	if useITN {
		itnRow = itnQueryRow
	}

	queryRows := [][]float32{
		fe.embed.Row(langID),
		fe.embed.Row(eventQueryRow),
		fe.embed.Row(emotionQueryRow),
		fe.embed.Row(itnRow),
	}

	tensor := make([][]float32, 0, RKNNInputLen)
	tensor = append(tensor, queryRows...)
	tensor = append(tensor, speechRows...)

	if len(tensor) < RKNNInputLen {
		padding := RKNNInputLen - len(tensor)
		zero := make([]float32, dim)
		for i := 0; i < padding; i++ {
			tensor = append(tensor, zero)
		}
	} else if len(tensor) > RKNNInputLen {
		tensor = tensor[:RKNNInputLen]
	}

	return tensor
}
