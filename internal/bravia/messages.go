package bravia

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nerrad567/gray-logic-bravia/internal/favourites"
)

// request is the JSON-RPC style body sent to the television's REST API.
type request struct {
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Version string `json:"version"`
	Params  []any  `json:"params"`
}

// response is the envelope the television answers with. Exactly one of
// Result or Error is populated; Error is [code, message].
type response struct {
	ID     int               `json:"id"`
	Result []json.RawMessage `json:"result"`
	Error  []json.RawMessage `json:"error"`
}

// powerStatus is the payload of a getPowerStatus result.
type powerStatus struct {
	Status string `json:"status"`
}

// powerStatusActive is the status string reported while the panel is on.
const powerStatusActive = "active"

// ContentItem is one entry of a getContentList result.
//
// The television populates fields unevenly depending on source and
// firmware, so every field is optional; ChannelNumber copes with the
// gaps.
type ContentItem struct {
	URI        string `json:"uri"`
	Title      string `json:"title"`
	DispNum    string `json:"dispNum"`
	Index      int    `json:"index"`
	ProgramNum int    `json:"programNum"`
}

// titleNumberPattern matches a leading run of 1-4 digits in a title.
var titleNumberPattern = regexp.MustCompile(`^[0-9]{1,4}`)

// uriNumberPattern extracts a channel number embedded in a content URI,
// e.g. "tv:dvbt?dispNum=7" or "...&channel=12".
var uriNumberPattern = regexp.MustCompile(`(?i)(?:dispNum|channel|ch)=([0-9]+)`)

// ChannelNumber derives the broadcast channel number for this entry.
//
// Precedence:
//  1. the dispNum field, when present and all digits
//  2. a leading run of 1-4 digits in the title
//  3. a dispNum=/channel=/ch= digit fragment in the URI (case-insensitive)
//
// The result is normalized (leading zeros stripped). Entries that yield
// no number return "" and are dropped from the channel map.
func (c ContentItem) ChannelNumber() string {
	if disp := strings.TrimSpace(c.DispNum); disp != "" && isAllDigits(disp) {
		return favourites.NormalizeNumber(disp)
	}

	if m := titleNumberPattern.FindString(strings.TrimSpace(c.Title)); m != "" {
		return favourites.NormalizeNumber(m)
	}

	if m := uriNumberPattern.FindStringSubmatch(c.URI); m != nil {
		return favourites.NormalizeNumber(m[1])
	}

	return ""
}

// isAllDigits reports whether s is non-empty and entirely ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
