package erp

import (
	"context"
	"fmt"
	"regexp"

	"challanup-backend/lib/textutil"

	"go.opentelemetry.io/otel/codes"
)

// CompanyLogicMap derives the legal-entity routing code from the
// first character of a challan number. The mapping is an inferred
// business rule, not anything the ERP documents, so it stays
// configurable rather than hard-coded.
type CompanyLogicMap struct {
	ByPrefix map[string]string `json:"by_prefix"`
	Default  string            `json:"default"`
}

func DefaultCompanyLogic() CompanyLogicMap {
	return CompanyLogicMap{
		ByPrefix: map[string]string{
			"3": "2",
			"4": "4",
		},
		Default: "1",
	}
}

func (m CompanyLogicMap) Code(challanNo string) string {
	if challanNo != "" {
		if code, ok := m.ByPrefix[challanNo[:1]]; ok {
			return code
		}
	}
	return m.Default
}

// CompanyLogic resolves the routing code for a challan number using
// the client's configured mapping.
func (c *Client) CompanyLogic(challanNo string) string {
	return c.opts.CompanyLogic.Code(challanNo)
}

var ErrChallanNotFound = fmt.Errorf("challan not found in the ERP")

// the search response invokes js_set_value(<system id>) when a record
// matches; the digits are the internal record id
var recordIdPattern = regexp.MustCompile(`js_set_value\((\d+)\)`)

// Locate resolves a user-entered challan number to the ERP's internal
// record id. A missing js_set_value token is a normal negative result
// (ErrChallanNotFound), and the workflow must stop without issuing
// further calls.
func (c *Client) Locate(ctx context.Context, challanNo, companyLogic string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Locate")
	defer span.End()

	res, err := c.ajaxRequest(ctx).
		SetQueryParams(map[string]string{
			"data":   fmt.Sprintf("%s_0__%s_2__1_", challanNo, companyLogic),
			"action": "create_challan_search_list_view",
		}).
		Get(cuttingControllerPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search request failed")
		return "", fmt.Errorf("challan search: %w", err)
	}

	recordId := textutil.Extract(recordIdPattern, res.String(), "")
	if recordId == "" {
		span.SetStatus(codes.Ok, "no record matched")
		return "", ErrChallanNotFound
	}
	return recordId, nil
}
