package sheets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// maxTitleLength is the longest tab name Google Sheets accepts, in characters.
const maxTitleLength = 100

// Ports for outbound spreadsheet adapters.
type (
	// TableWriter replaces the full contents of one tab, creating it if
	// needed. rows[0] is the header.
	TableWriter interface {
		ReplaceSheet(ctx context.Context, title string, rows [][]string) error
	}

	TableReader interface {
		ReadSheet(ctx context.Context, title string) ([][]string, error)
	}
)

// SheetTitle names the tab mirroring one user's list of a record kind.
// Characters that spreadsheet tab names reject are replaced with '_'.
// User ids too long to fit are shortened to a prefix plus a hash of the
// full id, so distinct users never share a tab.
func SheetTitle(userID, kind string) string {
	r := strings.NewReplacer("[", "_", "]", "_", "*", "_", "?", "_", "/", "_", "\\", "_", ":", "_")
	id := strings.TrimSpace(userID)
	name := r.Replace(id)
	suffix := " " + kind
	room := maxTitleLength - utf8.RuneCountInString(suffix)
	if utf8.RuneCountInString(name) <= room {
		return name + suffix
	}

	sum := sha256.Sum256([]byte(id))
	hash := "~" + hex.EncodeToString(sum[:])[:12]
	keep := room - len(hash)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(name)[:keep]) + hash + suffix
}
