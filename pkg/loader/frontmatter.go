package loader

import (
	"errors"
	"strings"
)

// SplitFrontmatter separates the leading "---" delimited YAML block from
// the markdown body. The opening delimiter must be the first non-blank
// line; a byte-order mark is tolerated. The delimiters themselves are
// not part of either half.
func SplitFrontmatter(content string) (frontmatter, body string, err error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isDelimiter(line) {
			start = i
		}
		break
	}
	if start == -1 {
		return "", "", errors.New("missing frontmatter")
	}
	for i := start + 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			fm := strings.Join(lines[start+1:i], "\n")
			rest := strings.Join(lines[i+1:], "\n")
			return strings.TrimSpace(fm), strings.TrimSpace(rest), nil
		}
	}
	return "", "", errors.New("unterminated frontmatter")
}

// isDelimiter matches a "---" line at column 0, ignoring trailing
// whitespace. Indented dashes stay part of the YAML block.
func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == "---"
}
