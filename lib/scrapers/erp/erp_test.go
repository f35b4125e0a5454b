package erp

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeErp stands in for the remote controller: same paths, same
// action-dispatched responses, with per-leg call counters so tests
// can assert on retry and short-circuit behavior.
type fakeErp struct {
	mu sync.Mutex

	searchBody      string
	popupBody       string
	bundleNosBody   string
	bundleTableBody string
	saveBody        string
	reportBody      string

	// respond 502 to this many search calls before succeeding
	failSearches int

	loginCalls       int
	activateCalls    int
	searchCalls      int
	popupCalls       int
	bundleNosCalls   int
	bundleTableCalls int
	saveCalls        int
	reportCalls      int
}

func (f *fakeErp) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.URL.Path {
		case loginPath:
			f.loginCalls++
			http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "testsession"})
			w.Write([]byte("<html>menu</html>"))

		case menuCheckPath, menuSessionPath:
			f.activateCalls++
			w.Write([]byte("1"))

		case cuttingControllerPath:
			switch r.URL.Query().Get("action") {
			case "create_challan_search_list_view":
				f.searchCalls++
				if f.failSearches > 0 {
					f.failSearches--
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.Write([]byte(f.searchBody))
			case "populate_data_from_challan_popup":
				f.popupCalls++
				w.Write([]byte(f.popupBody))
			case "bundle_nos":
				f.bundleNosCalls++
				w.Write([]byte(f.bundleNosBody))
			case "populate_bundle_data_update":
				f.bundleTableCalls++
				w.Write([]byte(f.bundleTableBody))
			default:
				w.WriteHeader(http.StatusNotFound)
			}

		case sewingControllerPath:
			switch r.URL.Query().Get("action") {
			case "emblishment_issue_print_13", "sewing_input_challan_print_5":
				f.reportCalls++
				w.Write([]byte(f.reportBody))
			default:
				f.saveCalls++
				w.Write([]byte(f.saveBody))
			}

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T, fake *fakeErp, opts Options) (*Client, *httptest.Server) {
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	opts.BaseUrl = server.URL
	if opts.UserId == "" {
		opts.UserId = "input1.clothing-cutting"
		opts.Password = "123456"
	}
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client, server
}
