// internal/courtreserve/client.go
package courtreserve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ncapps/court-reserve/internal/booking"
)

const (
	defaultBaseURL = "https://app.courtreserve.com/Online"
	defaultTimeout = 15 * time.Second

	verificationTokenField = "__RequestVerificationToken"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 11_2_3) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.114 Safari/537.36"
)

var (
	sessionIDPattern = regexp.MustCompile(`sId=([0-9]+)`)
	epochPattern     = regexp.MustCompile(`[0-9]+`)
)

// Config describes one organization's view of app.courtreserve.com.
type Config struct {
	OrgID      string
	CostTypeID string
	MemberIDs  []string
	CourtIDs   []string

	// TimezoneName is sent to the site and used to localize booking times.
	TimezoneName string
	Timezone     *time.Location

	// BaseURL overrides the production site, for tests.
	BaseURL string
	Timeout time.Duration
}

// Client interacts with app.courtreserve.com over an authenticated cookie
// session. It implements booking.Site. A client is good for a single run;
// nothing is cached across runs.
type Client struct {
	hc  *http.Client
	cfg Config

	base      string
	sessionID string
}

// New creates an unauthenticated client. Call Login before any other
// operation.
func New(cfg Config) (*Client, error) {
	if cfg.OrgID == "" {
		return nil, fmt.Errorf("org id is required")
	}
	if cfg.Timezone == nil {
		return nil, fmt.Errorf("timezone is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		hc:   &http.Client{Jar: jar, Timeout: timeout},
		cfg:  cfg,
		base: base,
	}, nil
}

// Login signs in through the site's HTML login form. The form carries a
// hidden verification token that must be scraped from the login page and
// echoed back. The site redirects back to the login page on bad credentials
// and to the member portal on success; the portal page carries the session
// id used by every later request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	loginPath := "Account/Login/" + c.cfg.OrgID

	resp, err := c.do(ctx, http.MethodGet, loginPath, "", nil)
	if err != nil {
		return fmt.Errorf("get login page: %w", err)
	}
	doc, err := document(resp)
	if err != nil {
		return fmt.Errorf("parse login page: %w", err)
	}

	token, ok := doc.Find("#loginForm input[name=" + verificationTokenField + "]").Attr("value")
	if !ok {
		return fmt.Errorf("login page: verification token not found")
	}

	form := url.Values{
		"UserNameOrEmail":      {username},
		"Password":             {password},
		verificationTokenField: {token},
	}
	resp, err = c.do(ctx, http.MethodPost, loginPath, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	// Bad credentials land back on the login page.
	if strings.Contains(resp.Request.URL.Path, "Account/Login") {
		drain(resp)
		return fmt.Errorf("%w: redirected to login page", booking.ErrLoginFailed)
	}

	portal, err := document(resp)
	if err != nil {
		return fmt.Errorf("parse portal page: %w", err)
	}
	href, ok := portal.Find("li.sub-menu-li a").Attr("href")
	if !ok {
		return fmt.Errorf("portal page: bookings link not found")
	}
	m := sessionIDPattern.FindStringSubmatch(href)
	if m == nil {
		return fmt.Errorf("portal page: session id not found in %q", href)
	}
	c.sessionID = m[1]
	return nil
}

// readExpandedResponse is the site's bookings feed. Start and End are
// ASP.NET date strings like "/Date(1619917200000)/".
type readExpandedResponse struct {
	Total int `json:"Total"`
	Data  []struct {
		CourtID    int64  `json:"CourtId"`
		CourtLabel string `json:"CourtLabel"`
		Start      string `json:"Start"`
		End        string `json:"End"`
	} `json:"Data"`
}

// ListReservations returns the raw booking records for the given date.
func (c *Client) ListReservations(ctx context.Context, date time.Time) ([]booking.Booking, error) {
	if c.sessionID == "" {
		return nil, fmt.Errorf("not logged in")
	}

	payload, err := json.Marshal(c.bookingsRequestBody(date))
	if err != nil {
		return nil, fmt.Errorf("encode bookings request: %w", err)
	}
	body := "jsonData=" + url.QueryEscape(string(payload))

	resp, err := c.doXHR(ctx, http.MethodPost, "Reservations/ReadExpanded/"+c.cfg.OrgID, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bookings: status %d", resp.StatusCode)
	}

	var decoded readExpandedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	records := make([]booking.Booking, 0, len(decoded.Data))
	for _, row := range decoded.Data {
		start, err := epochTime(row.Start, c.cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("booking start: %w", err)
		}
		end, err := epochTime(row.End, c.cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("booking end: %w", err)
		}
		records = append(records, booking.Booking{
			CourtID: strconv.FormatInt(row.CourtID, 10),
			Start:   start,
			End:     end,
		})
	}
	return records, nil
}

// bookingsRequestBody builds the Kendo scheduler payload ReadExpanded
// expects. Field casing follows the site's own requests.
func (c *Client) bookingsRequestBody(date time.Time) map[string]any {
	memberID := ""
	if len(c.cfg.MemberIDs) > 0 {
		memberID = c.cfg.MemberIDs[0]
	}
	return map[string]any{
		"startDate": date.Format("2006-01-02") + "T07:00:00.000Z",
		"end":       date.Format("2006-01-02") + "T07:00:00.000Z",
		"orgId":     c.cfg.OrgID,
		"TimeZone":  c.cfg.TimezoneName,
		"Date": fmt.Sprintf("%s, %d %s %d 07:00:00 GMT",
			date.Format("Mon"), date.Day(), date.Format("Jan"), date.Year()),
		"KendoDate": map[string]int{
			"Year":  date.Year(),
			"Month": int(date.Month()),
			"Day":   date.Day(),
		},
		"UiCulture":              "en-US",
		"CostTypeId":             c.cfg.CostTypeID,
		"CustomSchedulerId":      c.sessionID,
		"ReservationMinInterval": "60",
		"SelectedCourtIds":       strings.Join(c.cfg.CourtIDs, ","),
		"MemberIds":              memberID,
		"MemberFamilyId":         "",
	}
}

type createResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// CreateReservation submits a reservation for the chosen court and window.
// The create form carries its own verification token, scraped from the
// court view page first.
func (c *Client) CreateReservation(ctx context.Context, req booking.ReservationRequest) (booking.Confirmation, error) {
	if c.sessionID == "" {
		return booking.Confirmation{}, fmt.Errorf("not logged in")
	}

	viewPath := fmt.Sprintf("Reservations/CreateReservationCourtsview/%s?start=%s&end=%s&courtLabel=%s&customSchedulerId=%s",
		c.cfg.OrgID,
		url.QueryEscape(req.Start.Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")),
		url.QueryEscape(req.End.Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")),
		url.QueryEscape(req.CourtLabel),
		c.sessionID,
	)
	resp, err := c.doXHR(ctx, http.MethodGet, viewPath, nil)
	if err != nil {
		return booking.Confirmation{}, fmt.Errorf("get reservation form: %w", err)
	}
	doc, err := document(resp)
	if err != nil {
		return booking.Confirmation{}, fmt.Errorf("parse reservation form: %w", err)
	}
	token, ok := doc.Find("#createReservation-Form input").Attr("value")
	if !ok {
		return booking.Confirmation{}, fmt.Errorf("reservation form: verification token not found")
	}

	form := c.createRequestBody(req, token)
	resp, err = c.doXHR(ctx, http.MethodPost, "Reservations/CreateReservation/"+c.cfg.OrgID, strings.NewReader(form.Encode()))
	if err != nil {
		return booking.Confirmation{}, fmt.Errorf("create reservation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return booking.Confirmation{}, fmt.Errorf("create reservation: status %d", resp.StatusCode)
	}

	var decoded createResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return booking.Confirmation{}, fmt.Errorf("decode create response: %w", err)
	}
	return booking.Confirmation{Success: decoded.IsValid, Message: decoded.Message}, nil
}

func (c *Client) createRequestBody(req booking.ReservationRequest, token string) url.Values {
	form := url.Values{
		verificationTokenField: {token},
		"Id":                   {c.cfg.OrgID},
		"OrgId":                {c.cfg.OrgID},
		"Date":                 {req.Start.Format("1/2/2006") + " 12:00:00 AM"},
		"StartTime":            {req.Start.Format("15:04:05")},
		"EndTime":              {req.End.Format("15:04:05")},
		"CourtId":              {req.CourtID},
		"CourtLabel":           {req.CourtLabel},
		"CostTypeId":           {c.cfg.CostTypeID},
		"CustomSchedulerId":    {c.sessionID},
		"UiCulture":            {"en-US"},
	}
	if len(req.MemberIDs) > 0 {
		form.Set("MemberId", req.MemberIDs[0])
		for _, id := range req.MemberIDs[1:] {
			form.Add("AdditionalMemberIds", id)
		}
	}
	return form
}

// do sends a plain browser-style request and follows redirects.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.hc.Do(req)
}

// doXHR sends a request with the AJAX headers the site's scheduler endpoints
// expect.
func (c *Client) doXHR(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Referer", fmt.Sprintf("%s/Reservations/Bookings/%s?sId=%s", c.base, c.cfg.OrgID, c.sessionID))
	return c.hc.Do(req)
}

func document(resp *http.Response) (*goquery.Document, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// epochTime converts "/Date(1619917200000)/" to a time in loc.
func epochTime(raw string, loc *time.Location) (time.Time, error) {
	digits := epochPattern.FindString(raw)
	if digits == "" {
		return time.Time{}, fmt.Errorf("no epoch in %q", raw)
	}
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse epoch %q: %w", raw, err)
	}
	return time.UnixMilli(ms).In(loc), nil
}
