package language

import "nisee.app/newsflow/internal/langdetect"

// ResolveCode derives the 2-letter language code for a post. Order: mapped
// provider language name, detection over the article text, then the
// "unknown" sentinel.
func ResolveCode(providerName, sampleText string) string {
	if code, ok := CodeForName(providerName); ok {
		return code
	}
	if code := langdetect.DetectISO6391(sampleText); code != "" {
		return code
	}
	return UnknownCode
}
