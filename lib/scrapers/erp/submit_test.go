package erp

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHeader() HeaderFields {
	return HeaderFields{
		Floor: "12", Line: "31", Source: "1", EmbCompany: "2",
		Location: "2", IssueDate: "05-Aug-2025", ReportingHour: "10:45",
	}
}

func testLines(n int) []BundleLine {
	lines := make([]BundleLine, n)
	for i := range lines {
		lines[i] = BundleLine{
			BarcodeNo: fmt.Sprintf("90010%d", i), BundleNo: fmt.Sprintf("12 %c", 'A'+i),
			OrderId: "301", GmtsItemId: "4", CountryId: "7", ColorId: "21",
			SizeId: "9", ColorSizeId: "210", Qty: "24", DtlsId: "5001",
			CutNo: "C-12", IsRescan: "0",
		}
	}
	return lines
}

func TestBuildPayloadShape(t *testing.T) {
	const n = 3
	payload := buildPayload(testHeader(), testLines(n), "2")

	require.Equal(t, "save_update_delete", payload["action"])
	require.Equal(t, "0", payload["operation"])
	require.Equal(t, "3", payload["tot_row"])

	// header values carry the remote UI's single-quote convention
	require.Equal(t, "'2'", payload["cbo_company_name"])
	require.Equal(t, "'12'", payload["cbo_floor"])
	require.Equal(t, "'31'", payload["cbo_line_no"])
	require.Equal(t, "'05-Aug-2025'", payload["txt_issue_date"])
	require.Equal(t, "'10:45'", payload["txt_reporting_hour"])
	require.Equal(t, "''", payload["txt_challan_no"])

	// line values are unquoted, and indices are 1-based
	require.Equal(t, "12 A", payload["bundleNo_1"])
	require.Equal(t, "12 C", payload["bundleNo_3"])
	require.Equal(t, "0", payload["inseamId_2"])
	require.Equal(t, "0", payload["cutMstIdNo_2"])
	require.Equal(t, "0", payload["cutNumPrefixNo_2"])
	_, ok := payload["bundleNo_0"]
	require.False(t, ok)
	_, ok = payload["bundleNo_4"]
	require.False(t, ok)

	indexed := 0
	for key := range payload {
		if idx := strings.LastIndexByte(key, '_'); idx > 0 {
			suffix := key[idx+1:]
			if suffix == "1" || suffix == "2" || suffix == "3" {
				indexed++
			}
		}
	}
	require.Equal(t, 15*n, indexed)
}

func TestSubmitSuccess(t *testing.T) {
	fake := &fakeErp{
		saveBody: "0**51234**CH-9**extra",
	}
	client, server := newTestClient(t, fake, Options{})

	result, err := client.Submit(context.Background(), testHeader(), testLines(2), "2")
	require.NoError(t, err)
	require.Equal(t, "51234", result.SystemId)
	require.Equal(t, "CH-9", result.ChallanNo)
	require.Contains(t, result.BundleReport.Url, server.URL)
	require.Contains(t, result.BundleReport.Url, "emblishment_issue_print_13")
	require.Contains(t, result.BundleReport.Url, "1*51234*2*")
	require.Contains(t, result.ChallanReport.Url, "sewing_input_challan_print_5")
}

func TestSubmitSuccessWithoutLabel(t *testing.T) {
	fake := &fakeErp{
		saveBody: "0**51234",
	}
	client, _ := newTestClient(t, fake, Options{})

	result, err := client.Submit(context.Background(), testHeader(), testLines(1), "1")
	require.NoError(t, err)
	require.Equal(t, "51234", result.SystemId)
	require.Equal(t, fallbackChallanLabel, result.ChallanNo)
}

func TestSubmitConflictNotRetried(t *testing.T) {
	fake := &fakeErp{
		saveBody: "20**",
	}
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.Submit(context.Background(), testHeader(), testLines(1), "1")
	require.ErrorIs(t, err, ErrBundleAlreadyScanned)
	// the save has at-most-once side effects: exactly one POST
	require.Equal(t, 1, fake.saveCalls)
}

func TestSubmitRemoteValidation(t *testing.T) {
	fake := &fakeErp{
		saveBody: "10**",
	}
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.Submit(context.Background(), testHeader(), testLines(1), "1")
	require.ErrorIs(t, err, ErrRemoteValidation)
	require.Equal(t, 1, fake.saveCalls)
}

func TestSubmitUnknownCode(t *testing.T) {
	fake := &fakeErp{
		saveBody: "77**something",
	}
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.Submit(context.Background(), testHeader(), testLines(1), "1")
	var remote RemoteCodeError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "77", remote.Code)
}

func TestSubmitUnexpectedBody(t *testing.T) {
	fake := &fakeErp{
		saveBody: "<html>login page</html>",
	}
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.Submit(context.Background(), testHeader(), testLines(1), "1")
	var unexpected UnexpectedBodyError
	require.ErrorAs(t, err, &unexpected)
	require.Equal(t, 200, unexpected.StatusCode)
}

func TestLoginAndActivateSession(t *testing.T) {
	fake := &fakeErp{}
	client, _ := newTestClient(t, fake, Options{})
	ctx := context.Background()

	err := client.Login(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fake.loginCalls)

	client.ActivateSession(ctx)
	require.Equal(t, 2, fake.activateCalls)
}
