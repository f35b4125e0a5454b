// Package challan drives one cutting-to-sewing transfer end to end:
// session, search, header defaults, bundle enumeration, save, reports.
// This is the only contract any front end (CLI, HTTP) needs.
package challan

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"challanup-backend/lib/challanstore"
	"challanup-backend/lib/scrapers/erp"
	"challanup-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("challanup.services.challan")

// human-facing names for the legal entities behind each routing code
var companyNames = map[string]string{
	"1": "Cotton Club BD",
	"2": "Cotton Clothing",
	"3": "Tropical Knitex",
	"4": "Cotton Clout BD",
}

type Service struct {
	opts  erp.Options
	store *challanstore.Store
}

// NewService keeps the ERP options, not a client: each Run builds its
// own client because the ERP's menu-activation state is tied to one
// authenticated session, which therefore cannot be shared between
// concurrent runs.
func NewService(opts erp.Options, store *challanstore.Store) Service {
	return Service{opts: opts, store: store}
}

// Result is the single structured outcome any presentation layer
// consumes.
type Result struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	ChallanNo   string `json:"challan_no,omitempty"`
	SystemId    string `json:"system_id,omitempty"`
	Report1Url  string `json:"report1_url,omitempty"`
	Report2Url  string `json:"report2_url,omitempty"`
	Report1File string `json:"report1_file,omitempty"`
	Report2File string `json:"report2_file,omitempty"`
}

func errorResult(message string) Result {
	return Result{Status: "error", Message: message}
}

// Run processes one challan number through the whole pipeline. Every
// step returns a typed outcome; the first failing step stops the run
// and maps to exactly one human-readable message. The caller's ctx
// deadline bounds the entire sequential chain.
func (s Service) Run(ctx context.Context, challanNo string) Result {
	ctx, span := tracer.Start(ctx, "service:Run")
	defer span.End()

	if challanNo == "" {
		return errorResult("Missing Data")
	}

	client, err := erp.NewClient(s.opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build erp client")
		return errorResult(err.Error())
	}

	err = client.Login(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return errorResult(err.Error())
	}
	client.ActivateSession(ctx)

	companyLogic := client.CompanyLogic(challanNo)
	slog.InfoContext(ctx, "processing challan", "challan_no", challanNo, "company_logic", companyLogic)

	recordId, err := client.Locate(ctx, challanNo, companyLogic)
	if errors.Is(err, erp.ErrChallanNotFound) {
		span.SetStatus(codes.Ok, "challan not found")
		return errorResult("Invalid Challan / No Data")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return errorResult(err.Error())
	}

	header, err := client.PopulateHeader(ctx, recordId)
	var missing erp.MissingFieldsError
	if errors.As(err, &missing) {
		span.SetStatus(codes.Ok, "mandatory header fields missing")
		return errorResult(missing.Error())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "header populate failed")
		return errorResult(err.Error())
	}

	lines, err := client.FetchBundles(ctx, recordId, companyLogic, header.Line)
	if errors.Is(err, erp.ErrNoBundles) {
		span.SetStatus(codes.Ok, "empty bundle list")
		return errorResult("Empty Bundle List")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bundle enumeration failed")
		return errorResult(err.Error())
	}

	slog.InfoContext(ctx, "submitting transfer",
		"challan_no", challanNo,
		"record_id", recordId,
		"bundles", len(lines),
		"line", header.Line,
		"floor", header.Floor,
	)

	save, err := client.Submit(ctx, header, lines, companyLogic)
	switch {
	case err == nil:
	case errors.Is(err, erp.ErrBundleAlreadyScanned):
		span.SetStatus(codes.Ok, "duplicate submission")
		return errorResult(err.Error())
	case errors.Is(err, erp.ErrRemoteValidation):
		span.SetStatus(codes.Ok, "remote validation failed")
		return errorResult("Validation Error (10)")
	default:
		var remote erp.RemoteCodeError
		if errors.As(err, &remote) {
			span.SetStatus(codes.Ok, "unknown server code")
			return errorResult("Server Error Code: " + remote.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return errorResult(err.Error())
	}

	if s.opts.Reports == erp.ReportDownload {
		err = client.DownloadReports(ctx, &save, s.opts.ReportDir)
		if err != nil {
			// the transfer is already saved; a report download
			// failure must not turn success into failure
			slog.WarnContext(ctx, "report download failed", "err", err)
		}
	}

	s.recordHistory(ctx, client, challanNo, companyLogic, header, lines, save)

	return Result{
		Status:      "success",
		ChallanNo:   save.ChallanNo,
		SystemId:    save.SystemId,
		Report1Url:  save.BundleReport.Url,
		Report2Url:  save.ChallanReport.Url,
		Report1File: save.BundleReport.File,
		Report2File: save.ChallanReport.File,
	}
}

// recordHistory enriches the saved transfer with metadata scraped
// from the challan print report and persists it. Best-effort: the ERP
// already accepted the transfer, so nothing here may fail the run.
func (s Service) recordHistory(
	ctx context.Context,
	client *erp.Client,
	challanNo, companyLogic string,
	header erp.HeaderFields,
	lines []erp.BundleLine,
	save erp.SaveResult,
) {
	if s.store == nil {
		return
	}
	ctx, span := tracer.Start(ctx, "service:recordHistory")
	defer span.End()

	totalQty := int64(0)
	for _, b := range lines {
		qty, err := strconv.ParseInt(b.Qty, 10, 64)
		if err == nil {
			totalQty += qty
		}
	}

	meta := reportMeta{LineNo: header.Line, TotalQuantity: totalQty}
	html, err := client.FetchReport(ctx, save.ChallanReport)
	if err != nil {
		slog.WarnContext(ctx, "report fetch for history failed", "err", err)
	} else {
		meta = parseChallanReport(html, meta)
	}

	companyName := companyNames[companyLogic]
	if companyName == "" {
		companyName = companyLogic
	}

	_, err = s.store.Push(ctx, challanstore.Record{
		ChallanNo:     save.ChallanNo,
		SystemId:      save.SystemId,
		CompanyId:     companyLogic,
		CompanyName:   companyName,
		BookingNo:     meta.BookingNo,
		LineNo:        meta.LineNo,
		Color:         meta.Color,
		IssueDate:     header.IssueDate,
		TotalQuantity: meta.TotalQuantity,
		Report1Url:    save.BundleReport.Url,
		Report2Url:    save.ChallanReport.Url,
		CreatedAt:     timezone.Now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "history insert failed")
		slog.WarnContext(ctx, "failed to record challan history", "err", err)
	}
}

// FetchReport retrieves a previously issued report URL on behalf of a
// caller that has no ERP session of its own. Only URLs under the
// configured ERP base are honored.
func (s Service) FetchReport(ctx context.Context, reportUrl string) (string, error) {
	if !strings.HasPrefix(reportUrl, s.opts.BaseUrl) {
		return "", errors.New("report url is outside the configured erp")
	}

	client, err := erp.NewClient(s.opts)
	if err != nil {
		return "", err
	}
	err = client.Login(ctx)
	if err != nil {
		return "", err
	}
	client.ActivateSession(ctx)

	return client.FetchReport(ctx, erp.ReportRef{Name: "Report", Url: reportUrl})
}

// History lists the most recent successful uploads.
func (s Service) History(ctx context.Context, limit int) ([]challanstore.Record, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx, limit)
}
