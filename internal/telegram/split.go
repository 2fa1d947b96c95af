package telegram

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MaxMessageLen is Telegram's limit for one text message.
	MaxMessageLen = 4096
	// chunkLimit leaves room for the part footer and for characters
	// Telegram counts twice (UTF-16 surrogate pairs).
	chunkLimit = MaxMessageLen - 256
)

// Split cuts text into chunks of at most limit runes on line boundaries.
// Lines longer than limit are cut between elements, never inside a tag,
// an entity or an open element such as a mention link.
// Multiple chunks get a "Part i/n" footer.
func Split(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for _, piece := range cutLine(line, limit) {
			n := len([]rune(piece))
			if curLen+n > limit {
				flush()
			}
			cur.WriteString(piece)
			curLen += n
		}
	}
	flush()

	if len(chunks) > 1 {
		for i := range chunks {
			chunks[i] += fmt.Sprintf("\n\n<i>Part %d/%d</i>", i+1, len(chunks))
		}
	}
	return chunks
}

func cutLine(line string, limit int) []string {
	r := []rune(line)
	var out []string
	for len(r) > limit {
		cut := safeCut(r, limit)
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	return append(out, string(r))
}

// safeCut picks a cut position within the first limit runes where no tag,
// entity or element is open, preferring a position right after whitespace.
// Without such a position it cuts at limit.
func safeCut(r []rune, limit int) int {
	var (
		depth             int
		inTag, closing    bool
		inEntity          bool
		lastSafe, lastGap int
	)
	for i := 0; i < limit && i < len(r); i++ {
		c := r[i]
		switch {
		case inTag:
			if c == '>' {
				inTag = false
				if closing {
					depth--
				} else {
					depth++
				}
			}
		case c == '<':
			inTag = true
			closing = i+1 < len(r) && r[i+1] == '/'
		case inEntity:
			if c == ';' {
				inEntity = false
			}
		case c == '&':
			inEntity = true
		}
		if inTag || inEntity || depth > 0 {
			continue
		}
		lastSafe = i + 1
		if unicode.IsSpace(c) {
			lastGap = i + 1
		}
	}
	switch {
	case lastGap > limit/2:
		return lastGap
	case lastSafe > 0:
		return lastSafe
	}
	return limit
}
