package challan

import (
	"regexp"
	"strconv"
	"strings"

	"challanup-backend/lib/htmlutil"
	"challanup-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// reportMeta is the extra context pulled out of the challan print
// report for the history log. Every field is optional: the report is
// server-rendered HTML with no stable ids, so extraction is heuristic
// and a miss leaves the caller's existing value alone.
type reportMeta struct {
	LineNo        string
	Color         string
	BookingNo     string
	TotalQuantity int64
}

var (
	// the line number renders as a labeled pair of cells:
	// <strong>Line </strong></td><td>: 31</td>
	linePattern = regexp.MustCompile(`(?i)<strong>\s*Line\s*</strong>\s*</td>\s*<td[^>]*>\s*:\s*([^<]+)`)
	// the color name is the last free-text cell before the first run of
	// fixed-width size columns
	colorPattern = regexp.MustCompile(`(?i)<td[^>]*>([^<]{2,})</td>\s*<td[^>]*width="50"`)
	// in the grand-total row the fixed-width cells are per-size
	// subtotals; the overall quantity is the cell after them
	grandTotalPattern = regexp.MustCompile(`(?i)(?:<td[^>]*width="50"[^>]*>[^<]*</td>\s*)+<td[^>]*>(\d+)</td>`)
)

func parseChallanReport(html string, base reportMeta) reportMeta {
	meta := base

	if line := strings.TrimSpace(textutil.Extract(linePattern, html, "")); line != "" {
		meta.LineNo = line
	}

	if color := strings.TrimSpace(textutil.Extract(colorPattern, html, "")); color != "" && !isNumeric(color) {
		meta.Color = color
	}

	// anchor on the literal label so size subtotals in ordinary data
	// rows cannot match
	if gtIdx := strings.Index(html, "Grand Total"); gtIdx >= 0 {
		raw := textutil.Extract(grandTotalPattern, html[gtIdx:], "")
		if qty, err := strconv.ParseInt(raw, 10, 64); err == nil {
			meta.TotalQuantity = qty
		}
	}

	meta.BookingNo = extractBookingNo(html, meta.BookingNo)
	return meta
}

// extractBookingNo pulls the internal-ref column out of the order info
// table: the fifth cell of the first row wide enough to be a data row
// (SL, buyer, job no, style ref, internal ref). The value is sometimes
// wrapped in further markup, so the cell text is flattened.
func extractBookingNo(html, fallback string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fallback
	}

	var booking string
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 5 {
			return true
		}
		node := cells.Get(4)
		booking = htmlutil.CleanText(htmlutil.GetText(node))
		return false
	})
	if booking == "" {
		return fallback
	}
	return booking
}

func isNumeric(s string) bool {
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
