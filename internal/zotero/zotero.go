package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/reftools/zotero-mcp/internal/logging"
)

const (
	defaultBaseURL = "https://api.zotero.org/"
	apiVersion     = "3"
	userAgent      = "zotero-mcp"
	mediaTypeJSON  = "application/json"
)

// LibraryType identifies whether a library belongs to a user or a group.
type LibraryType string

const (
	LibraryTypeUser  LibraryType = "user"
	LibraryTypeGroup LibraryType = "group"
)

// Valid reports whether t is a recognized library type.
func (t LibraryType) Valid() bool {
	return t == LibraryTypeUser || t == LibraryTypeGroup
}

// Option represents a function that can configure a Client.
type Option func(*Client) error

// WithAPIKey returns an Option that sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithBaseURL returns an Option that sets the base URL for the client.
// The URL must be a valid HTTP or HTTPS URL. If the URL doesn't end with
// a trailing slash, one will be added automatically.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}

		parsedURL, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}

		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("base URL must use HTTP or HTTPS scheme, got: %s", parsedURL.Scheme)
		}

		// Ensure trailing slash for consistent URL joining
		if !strings.HasSuffix(parsedURL.Path, "/") {
			parsedURL.Path += "/"
		}

		c.BaseURL = parsedURL
		return nil
	}
}

// WithHTTPClient returns an Option that sets the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.client = httpClient
		return nil
	}
}

// WithLogger returns an Option that sets the logger used for request
// debug logging.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithUserAgent returns an Option that sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.UserAgent = ua
		return nil
	}
}

// Client manages communication with the Zotero Web API v3 for one library.
type Client struct {
	client *http.Client

	// BaseURL for API requests. Must end with a trailing slash.
	BaseURL *url.URL

	// UserAgent used when communicating with the API.
	UserAgent string

	libraryID   string
	libraryType LibraryType
	apiKey      string
	logger      logging.Logger

	common service

	// Items provides access to the item-related API operations.
	Items *ItemsService
}

type service struct {
	client *Client
}

// NewClient returns a client for the given library. The API key is optional
// for public group libraries; pass WithAPIKey for private libraries.
func NewClient(libraryID string, libraryType LibraryType, opts ...Option) (*Client, error) {
	if libraryID == "" {
		return nil, fmt.Errorf("library ID cannot be empty")
	}
	if !libraryType.Valid() {
		return nil, fmt.Errorf("invalid library type %q (must be %q or %q)",
			libraryType, LibraryTypeUser, LibraryTypeGroup)
	}

	baseURL, err := url.Parse(defaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default base URL: %w", err)
	}

	c := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL:     baseURL,
		UserAgent:   userAgent,
		libraryID:   libraryID,
		libraryType: libraryType,
		logger:      logging.DefaultLogger(),
	}

	c.common.client = c
	c.Items = (*ItemsService)(&c.common)

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("zotero client initialized",
		logging.LibraryID(c.libraryID),
		logging.KeyLibraryType, string(c.libraryType),
		"api_key", logging.SanitizeToken(c.apiKey))

	return c, nil
}

// LibraryID returns the library identifier this client is bound to.
func (c *Client) LibraryID() string {
	return c.libraryID
}

// LibraryType returns the library type this client is bound to.
func (c *Client) LibraryType() LibraryType {
	return c.libraryType
}

// prefix returns the library path prefix, e.g. "users/12345" or "groups/67".
func (c *Client) prefix() string {
	if c.libraryType == LibraryTypeGroup {
		return "groups/" + c.libraryID
	}
	return "users/" + c.libraryID
}

// NewRequest creates an API request. A relative URL can be provided in
// urlStr, in which case it is resolved relative to the BaseURL of the
// Client. Relative URLs should always be specified without a preceding
// slash. If specified, the value pointed to by body is JSON encoded and
// included as the request body.
func (c *Client) NewRequest(method, urlStr string, body any) (*http.Request, error) {
	if !strings.HasSuffix(c.BaseURL.Path, "/") {
		return nil, fmt.Errorf("BaseURL must have a trailing slash, but %q does not", c.BaseURL)
	}

	u, err := c.BaseURL.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	var buf io.ReadWriter
	if body != nil {
		buf = &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, u.String(), buf)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", mediaTypeJSON)
	}
	req.Header.Set("Accept", mediaTypeJSON)
	req.Header.Set("Zotero-API-Version", apiVersion)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return req, nil
}

// Response wraps an http.Response and carries the Zotero pagination and
// versioning headers.
type Response struct {
	*http.Response

	// TotalResults is the value of the Total-Results header, or -1 when
	// the header is absent.
	TotalResults int

	// NextURL is the "next" link from the Link header, empty when the
	// current page is the last one.
	NextURL string

	// LastModifiedVersion is the library version from the
	// Last-Modified-Version header, or -1 when absent.
	LastModifiedVersion int
}

func newResponse(r *http.Response) *Response {
	response := &Response{
		Response:            r,
		TotalResults:        -1,
		LastModifiedVersion: -1,
	}
	if v := r.Header.Get("Total-Results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			response.TotalResults = n
		}
	}
	if v := r.Header.Get("Last-Modified-Version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			response.LastModifiedVersion = n
		}
	}
	response.NextURL = parseNextLink(r.Header.Get("Link"))
	return response
}

// parseNextLink extracts the rel="next" URL from a Link header value.
func parseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(strings.TrimSpace(part), ";")
		if len(segments) < 2 {
			continue
		}
		u := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(u, "<") || !strings.HasSuffix(u, ">") {
			continue
		}
		for _, segment := range segments[1:] {
			if strings.TrimSpace(segment) == `rel="next"` {
				return strings.Trim(u, "<>")
			}
		}
	}
	return ""
}

// Do sends an API request and returns the API response. The API response
// is JSON decoded and stored in the value pointed to by v, or returned as
// an error if an API error has occurred. If v implements the io.Writer
// interface, the raw response body will be written to v, without
// attempting to first decode it.
//
// The provided ctx must be non-nil. If it is canceled or times out,
// ctx.Err() will be returned.
func (c *Client) Do(ctx context.Context, req *http.Request, v any) (*Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context must be non-nil")
	}

	req = req.WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		// If we got an error, and the context has been canceled,
		// the context's error is probably more useful.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return nil, err
	}
	defer resp.Body.Close()

	response := newResponse(resp)

	if err := CheckResponse(resp); err != nil {
		return response, err
	}

	if v != nil {
		if w, ok := v.(io.Writer); ok {
			_, err = io.Copy(w, resp.Body)
		} else {
			decErr := json.NewDecoder(resp.Body).Decode(v)
			if decErr == io.EOF {
				decErr = nil // ignore EOF errors caused by empty response body
			}
			if decErr != nil {
				err = decErr
			}
		}
	}

	return response, err
}

// Error reports an unsuccessful API response. Zotero returns error details
// as a plain-text body.
type Error struct {
	// Response is the HTTP response that caused this error.
	Response *http.Response

	// Message is the error detail from the response body.
	Message string
}

func (e *Error) Error() string {
	if e.Response != nil && e.Response.Request != nil {
		return fmt.Sprintf("zotero: %v %v: %d %s",
			e.Response.Request.Method,
			e.Response.Request.URL.Path,
			e.Response.StatusCode,
			e.Message)
	}
	return fmt.Sprintf("zotero: %s", e.Message)
}

// StatusCode returns the HTTP status code of the failed response, or 0
// when the response is unavailable.
func (e *Error) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// maxErrorBody bounds how much of an error body is read into the message.
const maxErrorBody = 4 << 10

// CheckResponse checks the API response for errors, and returns them if
// present. A response is considered an error if it has a status code
// outside the 200 range.
func CheckResponse(r *http.Response) error {
	if c := r.StatusCode; 200 <= c && c <= 299 {
		return nil
	}

	apiErr := &Error{Response: r}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
	if err == nil && len(data) > 0 {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(r.StatusCode)
	}
	return apiErr
}

// addOptions adds the parameters in opts as URL query parameters to s.
// opts must be a struct whose fields may contain "url" tags.
func addOptions(s string, opts any) (string, error) {
	v, err := query.Values(opts)
	if err != nil {
		return s, err
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	if q := v.Encode(); q != "" {
		if u.RawQuery != "" {
			u.RawQuery = u.RawQuery + "&" + q
		} else {
			u.RawQuery = q
		}
	}

	return u.String(), nil
}
