package decode

import (
	"regexp"
	"strings"
)

// EmotionTags maps SenseVoice SER tags to display emoji.
var EmotionTags = map[string]string{
	"HAPPY": "😊", "SAD": "😢", "ANGRY": "😠", "NEUTRAL": "😐",
	"FEARFUL": "😨", "DISGUSTED": "🤢", "SURPRISED": "😲",
}

// AudioEventTags maps SenseVoice AED tags to display emoji.
var AudioEventTags = map[string]string{
	"BGM": "🎵", "SPEECH": "💬", "APPLAUSE": "👏", "LAUGHTER": "😄",
	"CRYING": "😭", "SNEEZE": "🤧", "BREATH": "💨", "COUGH": "🤒",
}

// LanguageTags maps SenseVoice LID tags to display names.
var LanguageTags = map[string]string{
	"zh": "Chinese", "en": "English", "ja": "Japanese",
	"ko": "Korean", "yue": "Cantonese", "auto": "Auto",
}

var metadataTokenRe = regexp.MustCompile(`<\|(.*?)\|>`)

// Metadata is the result of parsing SenseVoice's inline <|TAG|> tokens out
// of decoded text.
type Metadata struct {
	RawText     string
	Text        string
	Language    string
	Emotion     string
	AudioEvents []string
	HasITN      bool
}

// ParseMetadataTokens extracts language/emotion/event/ITN tags embedded in
// text as <|TAG|> markers and strips them to produce clean text.
func ParseMetadataTokens(text string) Metadata {
	meta := Metadata{RawText: text}

	for _, match := range metadataTokenRe.FindAllStringSubmatch(text, -1) {
		token := match[1]
		upper := strings.ToUpper(token)

		switch {
		case LanguageTags[token] != "":
			meta.Language = LanguageTags[token]
		case EmotionTags[upper] != "":
			meta.Emotion = upper
		case AudioEventTags[upper] != "":
			meta.AudioEvents = append(meta.AudioEvents, upper)
		case strings.EqualFold(token, "withitn"):
			meta.HasITN = true
		}
	}

	meta.Text = strings.TrimSpace(metadataTokenRe.ReplaceAllString(text, ""))
	return meta
}

var alnumRe = regexp.MustCompile(`[A-Za-z0-9]`)

// CountAlnum returns the number of ASCII alphanumeric runes in text, used
// for the decoder's minimum-content gate.
func CountAlnum(text string) int {
	return len(alnumRe.FindAllString(text, -1))
}
