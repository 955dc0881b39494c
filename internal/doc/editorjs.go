package doc

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Version is the editor.js document version tag written on every document.
const Version = "2.26.5"

const sentencesPerParagraph = 3

// Block is one editor.js paragraph block.
type Block struct {
	Type string    `json:"type"`
	Data BlockData `json:"data"`
}

type BlockData struct {
	Text string `json:"text"`
}

// Document is an editor.js paragraph-block document.
type Document struct {
	Time    int64   `json:"time"`
	Blocks  []Block `json:"blocks"`
	Version string  `json:"version"`
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// FromText restructures free text into a paragraph-block document:
// whitespace is collapsed, the text is split into sentences, and sentences
// are grouped into paragraphs of up to three.
func FromText(text string, now time.Time) Document {
	paragraphs := SplitIntoParagraphs(text)

	blocks := make([]Block, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		blocks = append(blocks, Block{
			Type: "paragraph",
			Data: BlockData{Text: paragraph},
		})
	}

	return Document{
		Time:    now.UnixMilli(),
		Blocks:  blocks,
		Version: Version,
	}
}

// Marshal serializes the document for storage.
func (d Document) Marshal() (string, error) {
	encoded, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// PlainText reconstructs the flat text of a serialized document by joining
// its paragraph blocks. Returns "" when the input is not a document.
func PlainText(serialized string) string {
	var document Document
	if err := json.Unmarshal([]byte(serialized), &document); err != nil {
		return ""
	}

	texts := make([]string, 0, len(document.Blocks))
	for _, block := range document.Blocks {
		if block.Type != "paragraph" {
			continue
		}
		if text := strings.TrimSpace(block.Data.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, " ")
}

// SplitIntoParagraphs groups the text's sentences into paragraphs of up to
// three sentences each.
func SplitIntoParagraphs(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	paragraphs := make([]string, 0, (len(sentences)+sentencesPerParagraph-1)/sentencesPerParagraph)
	for start := 0; start < len(sentences); start += sentencesPerParagraph {
		end := min(start+sentencesPerParagraph, len(sentences))
		paragraphs = append(paragraphs, strings.Join(sentences[start:end], " "))
	}
	return paragraphs
}

// SplitSentences collapses whitespace and splits the text after
// sentence-ending punctuation, keeping the punctuation attached.
func SplitSentences(text string) []string {
	collapsed := whitespaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
	if collapsed == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder
	runes := []rune(collapsed)
	for i, r := range runes {
		current.WriteRune(r)
		if isSentenceEnd(r) && (i+1 == len(runes) || runes[i+1] == ' ') {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// CountSentences counts sentences by splitting on sentence-ending
// punctuation and discarding blank fragments. Empty input counts zero.
func CountSentences(text string) int {
	count := 0
	fragment := strings.Builder{}
	flush := func() {
		if strings.TrimSpace(fragment.String()) != "" {
			count++
		}
		fragment.Reset()
	}

	for _, r := range text {
		if isSentenceEnd(r) {
			flush()
			continue
		}
		fragment.WriteRune(r)
	}
	flush()

	return count
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
