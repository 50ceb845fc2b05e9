// Package portalapi talks to the InterNUShip API: token issuance and verification, signup and
// résumé parsing. Every exported call makes exactly one HTTP request and never retries.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"

	perrors "github.com/jrsteele09/go-intern-portal/internal/errors"
	"golang.org/x/oauth2"
)

const (
	pathVerifyToken  = "verify-token"
	pathToken        = "token"
	pathSignup       = "signup"
	pathUploadResume = "upload-resume"

	resumeFieldName = "resume"

	// maxResponseBytes bounds how much of any API response is read.
	maxResponseBytes = 4 << 20
)

var (
	ErrMalformedReply = perrors.ErrMalformedReply
	ErrInvalidToken   = perrors.ErrInvalidToken
)

type Client struct {
	httpClient *http.Client
	baseURL    url.URL
	oauth      *oauth2.Config
}

// NewClient builds a client for the API at baseURL. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[portalapi NewClient] invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[portalapi NewClient] base url %q must be absolute", baseURL)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    *u,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL: u.JoinPath(pathToken).String(),
				// Params only: auto-detect would send a second request after a failure.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges the user's credentials for an access token with the OAuth2 password grant
// (form fields username, password) at POST /token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return "", tokenError(err)
	}
	return tok.AccessToken, nil
}

func tokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &APIError{Status: status, Detail: parseDetail(retrieveErr.Body), Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &TransportError{Op: "login", Err: err}
	}
	return fmt.Errorf("login: %w: %v", ErrMalformedReply, err)
}

// VerifyToken asks GET /verify-token who the bearer token belongs to.
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (Identity, error) {
	if accessToken == "" {
		return Identity{}, ErrInvalidToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	bearer := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	bearer.Timeout = c.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath(pathVerifyToken).String(), nil)
	if err != nil {
		return Identity{}, fmt.Errorf("verify: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(bearer, req, "verify")
	if err != nil {
		return Identity{}, err
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return Identity{}, fmt.Errorf("verify: %w: %v", ErrMalformedReply, err)
	}
	if identity.Identifier() == "" {
		return Identity{}, fmt.Errorf("verify: %w: identity has no identifier", ErrMalformedReply)
	}
	return identity, nil
}

// Signup registers a new account with POST /signup. It does not log the user in.
func (c *Client) Signup(ctx context.Context, email, password string) (SignupResult, error) {
	payload, err := json.Marshal(signupRequest{Email: email, Password: password})
	if err != nil {
		return SignupResult{}, fmt.Errorf("signup: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(pathSignup).String(), bytes.NewReader(payload))
	if err != nil {
		return SignupResult{}, fmt.Errorf("signup: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(c.httpClient, req, "signup")
	if err != nil {
		return SignupResult{}, err
	}

	result := SignupResult{Raw: map[string]any{}}
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, &result.Raw); err != nil {
		return SignupResult{}, fmt.Errorf("signup: %w: %v", ErrMalformedReply, err)
	}
	if msg, ok := result.Raw["message"].(string); ok {
		result.Message = msg
	}
	return result, nil
}

// UploadResume sends the file as multipart field "resume" to POST /upload-resume and returns the
// parsed payload. Only a body that is not a JSON object is ErrMalformedReply; odd field shapes
// are left to the caller.
func (c *Client) UploadResume(ctx context.Context, filename string, file io.Reader) (*ParsedResume, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, resumeFieldName, filepath.Base(filename)))
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("upload: read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(pathUploadResume).String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	body, err := c.do(c.httpClient, req, "upload")
	if err != nil {
		return nil, err
	}

	parsed := &ParsedResume{}
	if err := json.Unmarshal(body, parsed); err != nil {
		return nil, fmt.Errorf("upload: %w: %v", ErrMalformedReply, err)
	}
	parsed.Raw = json.RawMessage(body)
	return parsed, nil
}

// do sends req and returns the body of a 2xx response. Anything else becomes an *APIError or
// a *TransportError.
func (c *Client) do(client *http.Client, req *http.Request, op string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Detail: parseDetail(body)}
	}
	return body, nil
}
