package erp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

// remote-asserted outcomes, reported verbatim and never retried
var (
	// code "20": the ERP detected these bundles were already punched
	// by a prior submission (message preserved as the operators know it)
	ErrBundleAlreadyScanned = errors.New("সার্ভার সমস্যা/বান্ডিল অলরেডি পান্স করা হয়েছে")
	// code "10": remote validation, usually a line/floor allocation
	// mismatch
	ErrRemoteValidation = errors.New("validation failed, check line/floor allocation")
)

// RemoteCodeError is any status token this client does not know. The
// response grammar is reverse-engineered from sparse evidence, so
// unknown codes stay opaque instead of being guessed at.
type RemoteCodeError struct {
	Code string
}

func (e RemoteCodeError) Error() string {
	return fmt.Sprintf("server code: %s", e.Code)
}

// UnexpectedBodyError covers a save response without the ** delimiter
// at all, which means the request never reached the controller logic.
type UnexpectedBodyError struct {
	StatusCode int
}

func (e UnexpectedBodyError) Error() string {
	return fmt.Sprintf("save failed: unexpected response shape (http %d)", e.StatusCode)
}

// ReportRef points at one of the two documents the ERP generates for
// a saved transfer. Url is always set; File only when the report was
// downloaded.
type ReportRef struct {
	Name string
	Url  string
	File string
}

// SaveResult is the outcome of a successful submission.
type SaveResult struct {
	SystemId  string
	ChallanNo string
	// embellishment issue report
	BundleReport ReportRef
	// sewing input challan report
	ChallanReport ReportRef
}

const fallbackChallanLabel = "Sewing Challan"

// buildPayload assembles the flat form map the ERP's own save button
// posts. Header values are single-quote-wrapped, mirroring the
// client-side convention of the remote UI; line values are not.
// Every line contributes fifteen keys suffixed with its 1-based index.
func buildPayload(header HeaderFields, lines []BundleLine, companyLogic string) map[string]string {
	q := func(v string) string { return "'" + v + "'" }

	payload := map[string]string{
		"action":                     "save_update_delete",
		"operation":                  "0",
		"tot_row":                    strconv.Itoa(len(lines)),
		"garments_nature":            q("2"),
		"cbo_company_name":           q(companyLogic),
		"sewing_production_variable": q("3"),
		"cbo_source":                 q(header.Source),
		"cbo_emb_company":            q(header.EmbCompany),
		"cbo_location":               q(header.Location),
		"cbo_floor":                  q(header.Floor),
		"txt_issue_date":             q(header.IssueDate),
		"txt_organic":                q(""),
		"txt_system_id":              q(""),
		"delivery_basis":             q("3"),
		"txt_challan_no":             q(""),
		"cbo_line_no":                q(header.Line),
		"cbo_shift_name":             q("0"),
		"cbo_working_company_name":   q("0"),
		"cbo_working_location":       q("0"),
		"txt_remarks":                q(""),
		"txt_reporting_hour":         q(header.ReportingHour),
	}

	for i, b := range lines {
		idx := strconv.Itoa(i + 1)
		payload["bundleNo_"+idx] = b.BundleNo
		payload["orderId_"+idx] = b.OrderId
		payload["gmtsitemId_"+idx] = b.GmtsItemId
		payload["countryId_"+idx] = b.CountryId
		payload["colorId_"+idx] = b.ColorId
		payload["sizeId_"+idx] = b.SizeId
		payload["inseamId_"+idx] = "0"
		payload["colorSizeId_"+idx] = b.ColorSizeId
		payload["qty_"+idx] = b.Qty
		payload["dtlsId_"+idx] = b.DtlsId
		payload["cutNo_"+idx] = b.CutNo
		payload["isRescan_"+idx] = b.IsRescan
		payload["barcodeNo_"+idx] = b.BarcodeNo
		payload["cutMstIdNo_"+idx] = "0"
		payload["cutNumPrefixNo_"+idx] = "0"
	}

	return payload
}

// Submit posts the assembled transfer and interprets the positional
// response code. The save is never retried: the insert is an
// at-most-once side effect and code "20" is specifically the ERP
// noticing a duplicate.
func (c *Client) Submit(ctx context.Context, header HeaderFields, lines []BundleLine, companyLogic string) (SaveResult, error) {
	ctx, span := tracer.Start(ctx, "client:Submit")
	defer span.End()

	payload := buildPayload(header, lines, companyLogic)

	res, err := c.save.R().
		SetContext(ctx).
		SetHeader("Referer", c.transactionPage()).
		SetFormData(payload).
		Post(sewingControllerPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save request failed")
		return SaveResult{}, fmt.Errorf("save: %w", err)
	}

	body := res.String()
	if !strings.Contains(body, "**") {
		span.SetStatus(codes.Error, "response body has no delimiter")
		slog.DebugContext(ctx, "unparseable save response", "status", res.StatusCode(), "body", body)
		return SaveResult{}, UnexpectedBodyError{StatusCode: res.StatusCode()}
	}

	parts := strings.Split(body, "**")
	code := strings.TrimSpace(parts[0])
	switch code {
	case "0":
		result := SaveResult{
			SystemId:  parts[1],
			ChallanNo: fallbackChallanLabel,
		}
		if len(parts) > 2 {
			result.ChallanNo = parts[2]
		}
		result.BundleReport, result.ChallanReport = c.reportRefs(result.SystemId, companyLogic)
		return result, nil
	case "20":
		span.SetStatus(codes.Error, "duplicate submission detected by server")
		return SaveResult{}, ErrBundleAlreadyScanned
	case "10":
		span.SetStatus(codes.Error, "server-side validation failed")
		return SaveResult{}, ErrRemoteValidation
	default:
		span.SetStatus(codes.Error, "unknown server code")
		slog.DebugContext(ctx, "unknown save response code", "code", code, "body", body)
		return SaveResult{}, RemoteCodeError{Code: code}
	}
}

// the ❏-prefixed label the print pages expect, pre-encoded the way
// the ERP's own links carry it
const reportLabel = "%E2%9D%8F%20Bundle%20Wise%20Sewing%20Input"

func (c *Client) reportRefs(systemId, companyLogic string) (bundle, challan ReportRef) {
	bundle = ReportRef{
		Name: "Bundle Report",
		Url: fmt.Sprintf(
			"%s%s?data=1*%s*%s*%s*1*undefined*undefined*undefined&action=emblishment_issue_print_13",
			c.opts.BaseUrl, sewingControllerPath, systemId, companyLogic, reportLabel,
		),
	}
	challan = ReportRef{
		Name: "Challan Report",
		Url: fmt.Sprintf(
			"%s%s?data=1*%s*%s*%s*undefined*undefined*undefined*1&action=sewing_input_challan_print_5",
			c.opts.BaseUrl, sewingControllerPath, systemId, companyLogic, reportLabel,
		),
	}
	return bundle, challan
}

// FetchReport retrieves a generated report through the authenticated
// session and returns its HTML.
func (c *Client) FetchReport(ctx context.Context, ref ReportRef) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchReport")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Referer", c.transactionPage()).
		SetHeader("Upgrade-Insecure-Requests", "1").
		Get(ref.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report request failed")
		return "", fmt.Errorf("fetch %s: %w", ref.Name, err)
	}
	return res.String(), nil
}

// DownloadReports fetches both report documents and writes them as
// Bundle_<challan>.html / Challan_<challan>.html under dir, updating
// the refs with the file paths.
func (c *Client) DownloadReports(ctx context.Context, result *SaveResult, dir string) error {
	ctx, span := tracer.Start(ctx, "client:DownloadReports")
	defer span.End()

	if dir == "" {
		dir = "."
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	for _, item := range []struct {
		ref    *ReportRef
		prefix string
	}{
		{&result.BundleReport, "Bundle"},
		{&result.ChallanReport, "Challan"},
	} {
		html, err := c.FetchReport(ctx, *item.ref)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "report download failed")
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.html", item.prefix, result.ChallanNo))
		err = os.WriteFile(path, []byte(html), 0644)
		if err != nil {
			return err
		}
		item.ref.File = path
	}
	return nil
}
