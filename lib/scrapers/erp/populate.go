package erp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"challanup-backend/lib/textutil"
	"challanup-backend/lib/timezone"

	"go.opentelemetry.io/otel/codes"
)

// HeaderFields are the transfer-header defaults the ERP embeds in the
// challan popup response. All values stay strings: they are form
// control ids, never arithmetic operands.
type HeaderFields struct {
	Floor         string
	Line          string
	Source        string
	EmbCompany    string
	Location      string
	IssueDate     string
	ReportingHour string
}

// values the popup emits for a control the challan never filled in
var forbiddenPlaceholders = map[string]bool{
	"0":         true,
	"00":        true,
	"":          true,
	"undefined": true,
	"null":      true,
}

// MissingFieldsError names the mandatory header fields the challan
// popup left empty or placeholder-valued.
type MissingFieldsError struct {
	Fields []string
}

func (e MissingFieldsError) Error() string {
	return fmt.Sprintf("Missing/Zero: %s", strings.Join(e.Fields, ", "))
}

// PopulateHeader fetches the challan's form defaults and validates
// them according to the configured mode. Strict mode aborts with
// MissingFieldsError before anything is submitted; lenient mode only
// needs floor and line.
func (c *Client) PopulateHeader(ctx context.Context, recordId string) (HeaderFields, error) {
	ctx, span := tracer.Start(ctx, "client:PopulateHeader")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"data":   recordId,
			"action": "populate_data_from_challan_popup",
		}).
		// cache buster, same as the ERP's own pages
		SetFormData(map[string]string{
			"rndval": strconv.FormatInt(time.Now().UnixMilli(), 10),
		}).
		Post(cuttingControllerPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "popup request failed")
		return HeaderFields{}, fmt.Errorf("populate header: %w", err)
	}
	body := res.String()

	now := timezone.Now()
	header := HeaderFields{
		Floor:         floorField.Extract(body),
		Line:          lineField.Extract(body),
		Source:        sourceField.Extract(body),
		EmbCompany:    embCompanyField.Extract(body),
		Location:      locationField.Extract(body),
		ReportingHour: now.Format("15:04"),
	}

	switch c.opts.Validation {
	case ValidationStrict:
		// the newer revision always books against the factory clock
		header.IssueDate = timezone.IssueDate(now).Format("02-Jan-2006")

		var missing []string
		for _, f := range []struct {
			name  string
			value string
		}{
			{sourceField.Name, header.Source},
			{embCompanyField.Name, header.EmbCompany},
			{lineField.Name, header.Line},
			{locationField.Name, header.Location},
			{floorField.Name, header.Floor},
		} {
			if forbiddenPlaceholders[f.value] {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			span.SetStatus(codes.Error, "mandatory header fields missing")
			return header, MissingFieldsError{Fields: missing}
		}

	default:
		raw := textutil.Extract(
			issueDateField.Pattern, body,
			timezone.IssueDate(now).Format("02-Jan-2006"),
		)
		header.IssueDate = reformatIssueDate(raw)

		var missing []string
		for _, f := range []struct {
			name  string
			value string
		}{
			{floorField.Name, header.Floor},
			{lineField.Name, header.Line},
		} {
			if forbiddenPlaceholders[f.value] {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			span.SetStatus(codes.Error, "mandatory header fields missing")
			return header, MissingFieldsError{Fields: missing}
		}
	}

	return header, nil
}

// the popup emits DD-MM-YYYY but the save form wants DD-Mon-YYYY;
// anything unparseable passes through verbatim
func reformatIssueDate(raw string) string {
	t, err := time.ParseInLocation("02-01-2006", raw, timezone.Location)
	if err != nil {
		return raw
	}
	return t.Format("02-Jan-2006")
}
