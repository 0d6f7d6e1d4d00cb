// Package uldk is a client for the ULDK parcel registry service run by
// GUGiK (https://uldk.gugik.gov.pl). Lookups take a point in EPSG:2180 and
// return the hex encoded geometry of the parcel or commune containing it.
package uldk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultURL is the public ULDK endpoint.
const DefaultURL = "https://uldk.gugik.gov.pl/"

// StatusOK is the status line of a successful lookup.
const StatusOK = "0"

// Request names understood by the service.
const (
	GetParcelByXY  = "GetParcelByXY"
	GetCommuneByXY = "GetCommuneByXY"
)

var (
	// ErrIncomplete is returned for responses without a payload line.
	ErrIncomplete = errors.New("uldk: incomplete response")
	// ErrStatus matches every *StatusError.
	ErrStatus = errors.New("uldk: lookup failed")
)

// StatusError carries a non-zero status line returned by the service.
type StatusError struct {
	Request string
	Status  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("uldk: %s returned status %q", e.Request, e.Status)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Result is a successful lookup.
type Result struct {
	Status string
	// Payload is the hex encoded (E)WKB geometry.
	Payload string
	// Attributes holds the extra result fields requested with
	// Client.Fields, keyed by field name.
	Attributes map[string]string
}

// Client issues lookups against a ULDK endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Fields lists extra result fields (for example "teryt", "commune")
	// requested next to the geometry. Empty means geometry only.
	Fields []string
	Log    logrus.FieldLogger
}

// NewClient returns a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// GetParcelByXY looks up the cadastral parcel containing xy ("x,y").
func (c *Client) GetParcelByXY(ctx context.Context, xy string) (Result, error) {
	return c.Lookup(ctx, GetParcelByXY, xy)
}

// GetCommuneByXY looks up the commune containing xy ("x,y").
func (c *Client) GetCommuneByXY(ctx context.Context, xy string) (Result, error) {
	return c.Lookup(ctx, GetCommuneByXY, xy)
}

// Lookup issues request for xy and parses the two line response.
func (c *Client) Lookup(ctx context.Context, request, xy string) (Result, error) {
	u, err := c.requestURL(request, xy)
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("uldk: %w", err)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	log := c.logger().WithFields(logrus.Fields{"request": request, "xy": xy})
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("uldk: %s: %w", request, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return Result{}, fmt.Errorf("uldk: %s: http status %s", request, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("uldk: %s: reading body: %w", request, err)
	}
	log.WithField("elapsed", time.Since(start)).Debug("lookup finished")
	return ParseResponse(request, string(body), c.Fields)
}

func (c *Client) requestURL(request, xy string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("uldk: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("request", request)
	q.Set("xy", xy)
	if len(c.Fields) > 0 {
		q.Set("result", strings.Join(append([]string{"geom_wkb"}, c.Fields...), ","))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// ParseResponse parses a ULDK text response. Line one is the status, line
// two the payload. When fields were requested the payload line is
// "wkb|field1|field2...".
func ParseResponse(request, body string, fields []string) (Result, error) {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Result{}, fmt.Errorf("%w: %s returned %d line(s)", ErrIncomplete, request, len(lines))
	}
	status := strings.TrimSpace(lines[0])
	if status != StatusOK {
		return Result{}, &StatusError{Request: request, Status: status}
	}
	parts := strings.Split(strings.TrimSpace(lines[1]), "|")
	res := Result{Status: status, Payload: strings.TrimSpace(parts[0])}
	if res.Payload == "" {
		return Result{}, fmt.Errorf("%w: %s returned an empty geometry", ErrIncomplete, request)
	}
	if len(fields) > 0 {
		res.Attributes = make(map[string]string, len(fields))
		for i, f := range fields {
			if i+1 < len(parts) {
				res.Attributes[f] = strings.TrimSpace(parts[i+1])
			}
		}
	}
	return res, nil
}
