package amino

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/k-amino/amino-go/signer"
)

const clientTypeApp = 100

// APIClient talks to the Amino REST API. It shares Credentials with the
// realtime socket and needs no live connection.
type APIClient struct {
	base       string
	creds      *Credentials
	language   string
	userAgent  string
	httpClient *http.Client
	log        *slog.Logger
}

func newAPIClient(cfg Config, creds *Credentials, log *slog.Logger) *APIClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &APIClient{
		base:       strings.TrimRight(cfg.APIURL, "/"),
		creds:      creds,
		language:   cfg.Language,
		userAgent:  cfg.UserAgent,
		httpClient: hc,
		log:        log,
	}
}

// --------------------------------------------------------------------------
// Requests
// --------------------------------------------------------------------------

// newRequest builds a request carrying the device headers. body is signed
// exactly as it goes over the wire.
func (c *APIClient) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}

	lang, _, _ := strings.Cut(c.language, "-")

	// Set directly so the header names keep their case.
	h := req.Header
	h["NDCDEVICEID"] = []string{c.creds.DeviceID()}
	h["NDCLANG"] = []string{strings.ToLower(lang)}
	h["AUID"] = []string{uuid.NewString()}
	h["SMDEVICEID"] = []string{uuid.NewString()}
	h.Set("Accept-Language", c.language)
	h.Set("User-Agent", c.userAgent)
	h.Set("Accept-Encoding", "gzip")
	if auth := c.creds.Auth(); auth != "" {
		h["NDCAUTH"] = []string{auth}
	}
	if body != nil {
		h.Set("Content-Type", "application/json; charset=utf-8")
		h["NDC-MSG-SIG"] = []string{signer.Sign(body)}
	} else {
		h.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

// doJSON sends reqBody (nil for none) and decodes a successful response
// into dest (nil to discard).
func (c *APIClient) doJSON(ctx context.Context, method, path string, reqBody any, dest any) error {
	var body []byte
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = b
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("api: response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(data))

	if err := checkResponse(resp.StatusCode, data); err != nil {
		return err
	}
	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// readBody reads the response, inflating it when the server compressed it.
// Setting Accept-Encoding by hand turns off the transport's own inflation.
func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// checkResponse maps a failed response to an *APIError. A body with a
// non-zero api:statuscode fails even under HTTP 200.
func checkResponse(status int, data []byte) error {
	var st apiStatus
	_ = json.Unmarshal(data, &st)

	if st.Code != nil && *st.Code != 0 {
		e := NewAPIError(*st.Code, st.Message)
		e.HTTPStatus = status
		return e
	}
	if status != http.StatusOK {
		msg := st.Message
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return newHTTPError(status, msg)
	}
	return nil
}

func timestamp() int64 { return time.Now().UnixMilli() }

// --------------------------------------------------------------------------
// Auth
// --------------------------------------------------------------------------

// login posts a login with secret, which is either "0 <password>" or a
// secret returned by an earlier login.
func (c *APIClient) login(ctx context.Context, email, secret string) (*Login, error) {
	var resp Login
	if err := c.doJSON(ctx, http.MethodPost, "/g/s/auth/login", loginRequest{
		Email:      email,
		Secret:     secret,
		ClientType: clientTypeApp,
		Action:     "normal",
		DeviceID:   c.creds.DeviceID(),
		V:          2,
		Timestamp:  timestamp(),
	}, &resp); err != nil {
		return nil, err
	}
	if resp.SID == "" {
		return nil, fmt.Errorf("%w: login response carries no sid", ErrAuthentication)
	}
	return &resp, nil
}

func (c *APIClient) logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/g/s/auth/logout", logoutRequest{
		DeviceID:   c.creds.DeviceID(),
		ClientType: clientTypeApp,
		Timestamp:  timestamp(),
	}, nil)
}

// AccountInfo fetches the account of the logged-in user.
func (c *APIClient) AccountInfo(ctx context.Context) (*Account, error) {
	var resp accountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/g/s/account", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}
