package actions

import (
	"strconv"
	"strings"

	"github.com/five82/ghdeck/internal/source"
)

// LabelWidth is how many characters of a repository name fit on one key line.
const LabelWidth = 11

const ellipsis = "…"

// RepoLine fits a repository name onto a key. Without wrapping, a name longer
// than LabelWidth keeps its first LabelWidth-1 characters followed by an
// ellipsis. With wrapping, the name is split strictly every LabelWidth
// characters, counted in runes, so "organization-name" becomes
// "organizatio\nn-name", never the 12-character split "organization\n-name".
func RepoLine(name string, wrap bool) string {
	runes := []rune(name)
	if len(runes) <= LabelWidth {
		return name
	}
	if !wrap {
		return string(runes[:LabelWidth-1]) + ellipsis
	}
	var lines []string
	for len(runes) > 0 {
		n := min(LabelWidth, len(runes))
		lines = append(lines, string(runes[:n]))
		runes = runes[n:]
	}
	return strings.Join(lines, "\n")
}

// ItemTitle is the two-part key title for an item: repository, then #number.
func ItemTitle(item source.Item, wrap bool) string {
	return RepoLine(item.Repository, wrap) + "\n#" + strconv.Itoa(item.Number)
}
