package erp

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

// BundleLine is one row of cutting-to-sewing transfer data. Fields
// are numeric-looking strings straight off the wire; a value the row
// lacks defaults to "0" ("Unknown" for the bundle number).
type BundleLine struct {
	BarcodeNo   string
	BundleNo    string
	OrderId     string
	GmtsItemId  string
	CountryId   string
	ColorId     string
	SizeId      string
	ColorSizeId string
	Qty         string
	DtlsId      string
	CutNo       string
	IsRescan    string
}

var ErrNoBundles = fmt.Errorf("challan has no bundles")

// FetchBundles enumerates the challan's child bundles: first the raw
// bundle-number set, then the detail table for those bundles. Row
// order is preserved because the save payload ties every per-line
// field together by 1-based index.
func (c *Client) FetchBundles(ctx context.Context, recordId, companyLogic, line string) ([]BundleLine, error) {
	ctx, span := tracer.Start(ctx, "client:FetchBundles")
	defer span.End()

	res, err := c.ajaxRequest(ctx).
		SetQueryParams(map[string]string{
			"data":   recordId,
			"action": "bundle_nos",
		}).
		Get(cuttingControllerPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bundle_nos request failed")
		return nil, fmt.Errorf("bundle list: %w", err)
	}

	// everything before the first ** delimiter is the bundle set
	rawBundles, _, _ := strings.Cut(res.String(), "**")
	if rawBundles == "" {
		span.SetStatus(codes.Ok, "empty bundle set")
		return nil, ErrNoBundles
	}

	res, err = c.ajaxRequest(ctx).
		SetQueryParams(map[string]string{
			"data":   fmt.Sprintf("%s**0**%s**%s**%s", rawBundles, recordId, companyLogic, line),
			"action": "populate_bundle_data_update",
		}).
		Get(cuttingControllerPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bundle detail request failed")
		return nil, fmt.Errorf("bundle detail: %w", err)
	}

	lines := parseBundleTable(res.String())
	if len(lines) == 0 {
		span.SetStatus(codes.Ok, "no data rows in bundle table")
		return nil, ErrNoBundles
	}
	return lines, nil
}

// parseBundleTable splits the table-shaped response on row boundaries
// and keeps only fragments carrying a tr_-prefixed row id, which is
// how the ERP marks data rows apart from headers and filler.
func parseBundleTable(body string) []BundleLine {
	rows := strings.Split(body, "<tr")
	var lines []BundleLine
	for _, row := range rows {
		if !strings.Contains(row, `id="tr_`) {
			continue
		}
		lines = append(lines, BundleLine{
			BarcodeNo:   barcodeField.Extract(row),
			BundleNo:    bundleNoField.Extract(row),
			OrderId:     orderIdField.Extract(row),
			GmtsItemId:  gmtsItemIdField.Extract(row),
			CountryId:   countryIdField.Extract(row),
			ColorId:     colorIdField.Extract(row),
			SizeId:      sizeIdField.Extract(row),
			ColorSizeId: colorSizeIdField.Extract(row),
			Qty:         qtyField.Extract(row),
			DtlsId:      dtlsIdField.Extract(row),
			CutNo:       cutNoField.Extract(row),
			IsRescan:    isRescanField.Extract(row),
		})
	}
	return lines
}
