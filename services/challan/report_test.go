package challan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChallanReport(t *testing.T) {
	meta := parseChallanReport(challanReportHtml, reportMeta{LineNo: "7", TotalQuantity: 99})
	require.Equal(t, "31", meta.LineNo)
	require.Equal(t, "Navy Blue", meta.Color)
	require.Equal(t, "BK-2025-114", meta.BookingNo)
	require.Equal(t, int64(54), meta.TotalQuantity)
}

func TestParseChallanReportKeepsBaseOnMiss(t *testing.T) {
	base := reportMeta{LineNo: "31", TotalQuantity: 54}

	meta := parseChallanReport("<html><body><p>nothing useful</p></body></html>", base)
	require.Equal(t, base, meta)

	// malformed markup must never clobber the values computed upstream
	meta = parseChallanReport("<td><tr></table", base)
	require.Equal(t, base.LineNo, meta.LineNo)
	require.Equal(t, base.TotalQuantity, meta.TotalQuantity)
}

func TestIsNumeric(t *testing.T) {
	require.True(t, isNumeric("54"))
	require.False(t, isNumeric(""))
	require.False(t, isNumeric("12 A"))
	require.False(t, isNumeric("Navy Blue"))
}
