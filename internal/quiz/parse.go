package quiz

import (
	"regexp"
	"strings"
)

var (
	// Question-number markers: "Q:", "Q3:", "Question 2:". The marker is
	// consumed and whatever follows it on the line starts the next block.
	markerPattern = regexp.MustCompile(`(?im)^[ \t]*(?:q\d*|question[ \t]*\d+)[ \t]*:`)

	// A line made only of three or more hyphens.
	separatorPattern = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*$`)

	// Two line breaks with nothing but whitespace between them.
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\n`)

	optionPattern = regexp.MustCompile(`^[A-D][).]`)
	ruleLine      = regexp.MustCompile(`^-{3,}$`)

	standaloneLetter = regexp.MustCompile(`\b[A-D]\b`)
	anyLetter        = regexp.MustCompile(`[A-D]`)
)

// splitters are tried in order; the first that yields more than one
// non-empty block wins.
var splitters = []func(string) []string{
	func(s string) []string { return splitOn(markerPattern, s) },
	func(s string) []string { return splitOn(separatorPattern, s) },
	func(s string) []string { return splitOn(blankLinePattern, s) },
}

// SplitBlocks segments raw model output into candidate question blocks.
//
// Strategies, most specific first: question-number markers, separator
// lines, blank lines. If none produces more than one block the whole text
// is a single block. Blank input yields no blocks.
func SplitBlocks(raw string) []string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	for _, split := range splitters {
		if blocks := split(text); len(blocks) > 1 {
			return blocks
		}
	}
	if whole := strings.TrimSpace(text); whole != "" {
		return []string{whole}
	}
	return nil
}

func splitOn(re *regexp.Regexp, s string) []string {
	var blocks []string
	for _, part := range re.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			blocks = append(blocks, p)
		}
	}
	return blocks
}

// Candidate is a block after field extraction and before validation.
type Candidate struct {
	Question    string
	Options     map[string]string
	Answer      string
	Explanation string

	// FirstLine is the first non-empty line of the block, used when no
	// question line was found.
	FirstLine string
}

// ExtractFields reads a block line by line.
//
// Lines are trimmed; empty lines and leftover "---" rules are skipped.
// Prefix rules are checked before the answer rule so that an explanation
// mentioning "answer:" does not overwrite the answer letter. The first
// question line wins.
func ExtractFields(block string) Candidate {
	c := Candidate{Options: make(map[string]string)}
	current := ""

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || ruleLine.MatchString(line) {
			continue
		}
		if c.FirstLine == "" {
			c.FirstLine = line
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "Q:") || strings.HasPrefix(upper, "QUESTION"):
			if c.Question == "" {
				c.Question = afterColon(line)
			}

		case optionPattern.MatchString(upper):
			letter := upper[:1]
			c.Options[letter] = strings.TrimSpace(line[2:])
			current = letter

		case strings.HasPrefix(upper, "EXPLANATION:") || strings.HasPrefix(upper, "NOTE:"):
			c.Explanation = afterColon(line)

		case strings.Contains(upper, "ANSWER:"):
			if letter := answerLetter(upper); letter != "" {
				c.Answer = letter
			}

		default:
			if _, ok := c.Options[current]; ok {
				if c.Options[current] == "" {
					c.Options[current] = line
				} else {
					c.Options[current] += " " + line
				}
			}
		}
	}

	return c
}

// afterColon returns the trimmed text after the first colon, or the whole
// line when there is none.
func afterColon(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(line)
}

// answerLetter picks the answer from an upper-cased line containing
// "ANSWER:". Only the text after the marker is searched; a standalone
// letter is preferred over one embedded in a word.
func answerLetter(upper string) string {
	rest := upper[strings.Index(upper, "ANSWER:")+len("ANSWER:"):]
	if m := standaloneLetter.FindString(rest); m != "" {
		return m
	}
	return anyLetter.FindString(rest)
}

// ParseResponse runs segmentation, extraction and validation over raw
// model output. Valid questions keep their order; rejected blocks are
// returned separately so the caller can log them.
func ParseResponse(raw string, meta Metadata) ([]Question, []*MalformedBlockError) {
	var (
		questions []Question
		dropped   []*MalformedBlockError
	)
	for i, block := range SplitBlocks(raw) {
		q, err := Validate(ExtractFields(block))
		if err != nil {
			err.Index = i
			dropped = append(dropped, err)
			continue
		}
		meta.apply(&q)
		questions = append(questions, q)
	}
	return questions, dropped
}
