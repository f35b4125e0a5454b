package erp

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func bundleRow(trId, barcode, bundleNo, orderId, qty string) string {
	return fmt.Sprintf(
		`<tr id="tr_%s"><td title="%s"><span id="bundle_%s">%s</span></td>`+
			`<td><input name="orderId[]" type="hidden" value="%s">`+
			`<input name="gmtsitemId[]" type="hidden" value="4">`+
			`<input name="countryId[]" type="hidden" value="7">`+
			`<input name="colorId[]" type="hidden" value="21">`+
			`<input name="sizeId[]" type="hidden" value="9">`+
			`<input name="colorSizeId[]" type="hidden" value="210">`+
			`<input name="qty[]" type="hidden" value="%s">`+
			`<input name="dtlsId[]" type="hidden" value="5001">`+
			`<input name="cutNo[]" type="hidden" value="C-12">`+
			`<input name="isRescan[]" type="hidden" value="0"></td></tr>`,
		trId, barcode, trId, bundleNo, orderId, qty,
	)
}

func TestFetchBundles(t *testing.T) {
	table := `<table><tr><th>Bundle</th><th>Qty</th></tr>` +
		bundleRow("1", "900101", "12 A", "301", "24") +
		bundleRow("2", "900102", "12 B", "301", "30") +
		bundleRow("3", "900103", "13 A", "302", "18") +
		`<tr><td colspan="2">Total</td></tr></table>`

	fake := &fakeErp{
		bundleNosBody:   "12,13**junk**junk",
		bundleTableBody: table,
	}
	client, _ := newTestClient(t, fake, Options{})

	lines, err := client.FetchBundles(context.Background(), "48213", "2", "31")
	require.NoError(t, err)

	expected := []BundleLine{
		{
			BarcodeNo: "900101", BundleNo: "12 A", OrderId: "301",
			GmtsItemId: "4", CountryId: "7", ColorId: "21", SizeId: "9",
			ColorSizeId: "210", Qty: "24", DtlsId: "5001", CutNo: "C-12",
			IsRescan: "0",
		},
		{
			BarcodeNo: "900102", BundleNo: "12 B", OrderId: "301",
			GmtsItemId: "4", CountryId: "7", ColorId: "21", SizeId: "9",
			ColorSizeId: "210", Qty: "30", DtlsId: "5001", CutNo: "C-12",
			IsRescan: "0",
		},
		{
			BarcodeNo: "900103", BundleNo: "13 A", OrderId: "302",
			GmtsItemId: "4", CountryId: "7", ColorId: "21", SizeId: "9",
			ColorSizeId: "210", Qty: "18", DtlsId: "5001", CutNo: "C-12",
			IsRescan: "0",
		},
	}
	if diff := cmp.Diff(expected, lines); diff != "" {
		t.Fatalf("bundle lines mismatch (-expected +got):\n%s", diff)
	}
}

func TestFetchBundlesEmptySet(t *testing.T) {
	fake := &fakeErp{
		bundleNosBody: "**0**whatever",
	}
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.FetchBundles(context.Background(), "48213", "2", "31")
	require.ErrorIs(t, err, ErrNoBundles)
	// the detail call must not be issued for an empty bundle set
	require.Equal(t, 0, fake.bundleTableCalls)
}

func TestParseBundleTableSkipsNonDataRows(t *testing.T) {
	body := `<tr class="header"><th>x</th></tr>` +
		bundleRow("9", "900109", "15 C", "305", "12") +
		`<tr><td>footer</td></tr>`

	lines := parseBundleTable(body)
	require.Len(t, lines, 1)
	require.Equal(t, "15 C", lines[0].BundleNo)
}

func TestParseBundleTableDefaults(t *testing.T) {
	// a data row missing every recognizable field still yields a line
	lines := parseBundleTable(`<tr id="tr_4"><td>bare</td></tr>`)
	require.Len(t, lines, 1)
	require.Equal(t, BundleLine{
		BarcodeNo: "0", BundleNo: "Unknown", OrderId: "0", GmtsItemId: "0",
		CountryId: "0", ColorId: "0", SizeId: "0", ColorSizeId: "0",
		Qty: "0", DtlsId: "0", CutNo: "0", IsRescan: "0",
	}, lines[0])
}
