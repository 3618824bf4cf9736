package parser

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// maxSectionTitle bounds the length of a line treated as a section title.
const maxSectionTitle = 60

// TextParser handles plain text man output (e.g. `man ls | col -b`).
// Unindented all-caps lines such as "NAME" or "SEE ALSO" become level-2
// headings; everything else is kept verbatim.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if isSectionTitle(line) {
			out = append(out, "## "+strings.TrimSpace(line))
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

func isSectionTitle(line string) bool {
	if line == "" || len(line) > maxSectionTitle {
		return false
	}
	if first := rune(line[0]); unicode.IsSpace(first) {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}
