package pleadings

import (
	"regexp"
	"time"
)

// Judgment orders carry their filing date stamped somewhere in the header
// text, in one of a few clerk formats. GuessFileDate scans for the first
// plausible date; it is a heuristic oracle, not a parse of the document.

var fileDateCandidates = []struct {
	pattern *regexp.Regexp
	layout  string
}{
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "1/2/2006"},
	{regexp.MustCompile(`\b((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4})\b`), "January 2, 2006"},
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2})\b`), "1/2/06"},
	{regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.\d{2})\b`), "1.2.06"},
}

// GuessFileDate returns the first plausible filing date found in the text,
// or false when none can be recovered.
func GuessFileDate(text string) (time.Time, bool) {
	for _, candidate := range fileDateCandidates {
		for _, m := range candidate.pattern.FindAllStringSubmatch(text, -1) {
			parsed, err := time.Parse(candidate.layout, m[1])
			if err != nil {
				continue
			}
			// Reject clerk typos that parse but land nowhere near a real
			// filing year.
			if parsed.Year() < 2000 || parsed.Year() > 2100 {
				continue
			}
			return parsed, true
		}
	}
	return time.Time{}, false
}
