package erp

import (
	"fmt"
	"regexp"

	"challanup-backend/lib/textutil"
)

// the challan popup response is a javascript snippet full of
// $('#<id>').val('<value>') assignments; one pattern per form control
func popupField(name, id string) textutil.Field {
	return textutil.Field{
		Name:     name,
		Pattern:  regexp.MustCompile(fmt.Sprintf(`\$\('#%s'\)\.val\('([^']*)'\)`, regexp.QuoteMeta(id))),
		Fallback: "0",
	}
}

var (
	floorField      = popupField("Floor", "cbo_floor")
	lineField       = popupField("Line No", "cbo_line_no")
	sourceField     = popupField("Source", "cbo_source")
	embCompanyField = popupField("Emb Company", "cbo_emb_company")
	locationField   = popupField("Location", "cbo_location")
	issueDateField  = popupField("Issue Date", "txt_issue_date")
)

// bundle table rows carry most values as hidden inputs named
// `<field>[]`; the capture is anchored on the name attribute so
// unrelated inputs in the same fragment cannot shadow it
func rowField(name string) textutil.Field {
	return textutil.Field{
		Name:     name,
		Pattern:  regexp.MustCompile(fmt.Sprintf(`name="%s\[\]".*?value="(\d+)"`, regexp.QuoteMeta(name))),
		Fallback: "0",
	}
}

var (
	barcodeField = textutil.Field{
		Name:     "barcodeNo",
		Pattern:  regexp.MustCompile(`title="(\d+)"`),
		Fallback: "0",
	}
	bundleNoField = textutil.Field{
		Name:     "bundleNo",
		Pattern:  regexp.MustCompile(`id="bundle_\d+"[^>]*>([^<]+)`),
		Fallback: "Unknown",
	}
	orderIdField     = rowField("orderId")
	gmtsItemIdField  = rowField("gmtsitemId")
	countryIdField   = rowField("countryId")
	colorIdField     = rowField("colorId")
	sizeIdField      = rowField("sizeId")
	colorSizeIdField = rowField("colorSizeId")
	qtyField         = rowField("qty")
	dtlsIdField      = rowField("dtlsId")
	isRescanField    = rowField("isRescan")

	// cut numbers can carry non-digit characters
	cutNoField = textutil.Field{
		Name:     "cutNo",
		Pattern:  regexp.MustCompile(`name="cutNo\[\]".*?value="([^"]+)"`),
		Fallback: "0",
	}
)
