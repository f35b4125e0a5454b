// Package erp drives the bundle-wise cutting-to-sewing transfer
// workflow against the factory ERP. The ERP has no API: every
// operation here mimics the requests its own browser-side javascript
// makes, and every response is semi-structured text that has to be
// scanned defensively.
package erp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"challanup-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	loginPath             = "/login.php"
	menuCheckPath         = "/tools/valid_user_action.php"
	menuSessionPath       = "/includes/common_functions_for_js.php"
	cuttingControllerPath = "/production/requires/bundle_wise_cutting_delevar_to_input_controller.php"
	sewingControllerPath  = "/production/requires/bundle_wise_sewing_input_controller.php"
	transactionPagePath   = "/production/bundle_wise_sewing_input.php"
	transactionPageQuery  = "permission=1_1_2_1"
)

const defaultUserAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Mobile Safari/537.36"

type ValidationMode string

const (
	ValidationLenient ValidationMode = "lenient"
	ValidationStrict  ValidationMode = "strict"
)

type ReportMode string

const (
	// ReportLink returns the two print URLs for the caller to open
	ReportLink ReportMode = "link"
	// ReportDownload fetches the reports and writes them next to the
	// working directory
	ReportDownload ReportMode = "download"
)

type Options struct {
	BaseUrl   string `json:"base_url"`
	UserId    string `json:"user_id"`
	Password  string `json:"password"`
	UserAgent string `json:"user_agent"`

	CompanyLogic CompanyLogicMap `json:"company_logic"`
	Validation   ValidationMode  `json:"validation"`
	Reports      ReportMode      `json:"reports"`
	ReportDir    string          `json:"report_dir"`

	TimeoutSeconds int `json:"timeout_seconds"`
}

// Client owns one authenticated ERP session. Sessions must not be
// shared across concurrent workflow runs: the menu-activation state
// the ERP keeps server-side is tied to a single authenticated context.
type Client struct {
	opts    Options
	baseUrl *url.URL

	// retrying client for the read legs of the workflow
	http *resty.Client
	// the save POST inserts rows remotely, so it is never retried;
	// code "20" is the ERP's own duplicate-submission detection
	save *resty.Client
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseUrl == "" {
		return nil, fmt.Errorf("erp base url is required")
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Validation == "" {
		opts.Validation = ValidationStrict
	}
	if opts.Reports == "" {
		opts.Reports = ReportLink
	}
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = 30
	}
	if opts.CompanyLogic.Default == "" {
		opts.CompanyLogic = DefaultCompanyLogic()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	// the two resty clients share one transport and cookie jar so the
	// save POST rides the same ERP session as the read legs
	raw := &http.Client{Jar: jar}

	origin := fmt.Sprintf("%s://%s", baseUrl.Scheme, baseUrl.Host)

	retrying := resty.NewWithClient(raw)
	configureClient(retrying, opts, baseUrl, origin)
	retrying.SetRetryCount(3)
	retrying.SetRetryWaitTime(time.Second)
	retrying.SetRetryMaxWaitTime(time.Second * 8)
	retrying.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		switch res.StatusCode() {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	})

	save := resty.NewWithClient(raw)
	configureClient(save, opts, baseUrl, origin)

	c := &Client{
		opts:    opts,
		baseUrl: baseUrl,
		http:    retrying,
		save:    save,
	}
	return c, nil
}

func configureClient(client *resty.Client, opts Options, baseUrl *url.URL, origin string) {
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Second * time.Duration(opts.TimeoutSeconds))
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Origin", origin)
	client.SetHeader("Referer", opts.BaseUrl+loginPath)

	telemetry.InstrumentResty(client, "scrapers/erp/http")
	instrumentOutputLock.Lock()
	out := restyInstrumentOutput
	instrumentOutputLock.Unlock()
	if out != nil {
		applyInstrumentOutput(client, out)
	}
}

func (c *Client) Options() Options {
	return c.opts
}

// the ERP checks the referer of transaction requests against its own
// entry page
func (c *Client) transactionPage() string {
	return fmt.Sprintf("%s%s?%s", c.opts.BaseUrl, transactionPagePath, transactionPageQuery)
}

// ajaxRequest mirrors the header set jQuery sends from the ERP's own
// pages: X-Requested-With and no Content-Type.
func (c *Client) ajaxRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("X-Requested-With", "XMLHttpRequest")
}

// Login posts the fixed service credentials. The ERP returns the same
// page regardless of outcome, so the response body is not checked:
// a bad login surfaces later as empty responses from the controller.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	_, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"txt_userid":   c.opts.UserId,
			"txt_password": c.opts.Password,
			"submit":       "Login",
		}).
		Post(loginPath)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// ActivateSession issues the two menu-activation pings the ERP pages
// fire on load. Skipping them tends to earn an error-10 on save, but
// they are a heuristic, not a correctness requirement, so failures
// are logged and the workflow carries on.
func (c *Client) ActivateSession(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "client:ActivateSession")
	defer span.End()

	c.bestEffort(ctx, "menu check", func() error {
		_, err := c.http.R().
			SetContext(ctx).
			SetHeader("Referer", c.transactionPage()).
			SetQueryParam("menuid", "724").
			Get(menuCheckPath)
		return err
	})
	c.bestEffort(ctx, "menu session", func() error {
		_, err := c.http.R().
			SetContext(ctx).
			SetHeader("Referer", c.transactionPage()).
			SetQueryParams(map[string]string{
				"data":   "724_7_406",
				"action": "create_menu_session",
			}).
			Get(menuSessionPath)
		return err
	})
}

// bestEffort runs a step whose failure must not abort the pipeline,
// as opposed to the workflow legs whose failure does.
func (c *Client) bestEffort(ctx context.Context, name string, fn func() error) {
	err := fn()
	if err != nil {
		slog.WarnContext(ctx, "best-effort step failed", "step", name, "err", err)
	}
}
