package language

import "strings"

// UnknownCode is the sentinel stored when no 2-letter code can be derived.
const UnknownCode = "unknown"

// nameToCode maps lowercased English language names to ISO-639-1 codes.
// The provider reports languages by name, not by tag.
var nameToCode = map[string]string{
	"afrikaans":   "af",
	"albanian":    "sq",
	"amharic":     "am",
	"arabic":      "ar",
	"armenian":    "hy",
	"azerbaijani": "az",
	"basque":      "eu",
	"belarusian":  "be",
	"bengali":     "bn",
	"bosnian":     "bs",
	"bulgarian":   "bg",
	"burmese":     "my",
	"catalan":     "ca",
	"chinese":     "zh",
	"croatian":    "hr",
	"czech":       "cs",
	"danish":      "da",
	"dutch":       "nl",
	"english":     "en",
	"estonian":    "et",
	"filipino":    "tl",
	"finnish":     "fi",
	"french":      "fr",
	"georgian":    "ka",
	"german":      "de",
	"greek":       "el",
	"gujarati":    "gu",
	"hebrew":      "he",
	"hindi":       "hi",
	"hungarian":   "hu",
	"icelandic":   "is",
	"indonesian":  "id",
	"irish":       "ga",
	"italian":     "it",
	"japanese":    "ja",
	"kannada":     "kn",
	"kazakh":      "kk",
	"khmer":       "km",
	"korean":      "ko",
	"lao":         "lo",
	"latvian":     "lv",
	"lithuanian":  "lt",
	"macedonian":  "mk",
	"malay":       "ms",
	"malayalam":   "ml",
	"maltese":     "mt",
	"marathi":     "mr",
	"mongolian":   "mn",
	"nepali":      "ne",
	"norwegian":   "no",
	"persian":     "fa",
	"polish":      "pl",
	"portuguese":  "pt",
	"punjabi":     "pa",
	"romanian":    "ro",
	"russian":     "ru",
	"serbian":     "sr",
	"sinhala":     "si",
	"slovak":      "sk",
	"slovenian":   "sl",
	"somali":      "so",
	"spanish":     "es",
	"swahili":     "sw",
	"swedish":     "sv",
	"tagalog":     "tl",
	"tamil":       "ta",
	"telugu":      "te",
	"thai":        "th",
	"turkish":     "tr",
	"ukrainian":   "uk",
	"urdu":        "ur",
	"uzbek":       "uz",
	"vietnamese":  "vi",
	"welsh":       "cy",
	"zulu":        "zu",
}

// CodeForName maps a language name (or an already-normalized tag such as
// "en" or "en-US") to its ISO-639-1 code. The second return reports whether
// a mapping was found.
func CodeForName(name string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return "", false
	}

	if code, ok := nameToCode[trimmed]; ok {
		return code, true
	}

	if tag := normalizeTag(trimmed); tag != "" {
		return tag, true
	}

	return "", false
}

// normalizeTag extracts the primary subtag from a language-tag-shaped value
// ("en", "en-US", "pt_BR"). Returns "" when the value is not a plausible tag.
func normalizeTag(value string) string {
	value = strings.ReplaceAll(value, "_", "-")
	primary, _, _ := strings.Cut(value, "-")
	if len(primary) != 2 {
		return ""
	}
	for _, r := range primary {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return primary
}
