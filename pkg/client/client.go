package client

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
)

// Client talks to one board instance.
type Client struct {
	base        string
	httpClient  *http.Client
	bearerToken string
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithBearerToken attaches a session token to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) error {
		c.bearerToken = token
		return nil
	}
}

// New creates a Client for the board at base, e.g. "http://localhost:8080".
func New(base string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(base string, opts ...Option) *Client {
	c, err := New(base, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ── comments ─────────────────────────────────────────────────────────────────

// CreateComment starts a thread on postID.
func (c *Client) CreateComment(ctx context.Context, postID, body string) (*Comment, error) {
	var out struct {
		Comment *Comment `json:"comment"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/comments", nil,
		map[string]string{"post_id": postID, "body": body}, &out)
	return out.Comment, err
}

// Reply adds a child under parentID. errors.Is(err, ErrNestingLimit) reports
// that the parent is already at the maximum depth.
func (c *Client) Reply(ctx context.Context, parentID, body string) (*Comment, error) {
	var out struct {
		Comment *Comment `json:"comment"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/comments/"+url.PathEscape(parentID)+"/replies", nil,
		map[string]string{"body": body}, &out)
	return out.Comment, err
}

// GetComment fetches one comment.
func (c *Client) GetComment(ctx context.Context, id string) (*Comment, error) {
	var out struct {
		Comment *Comment `json:"comment"`
	}
	err := c.call(ctx, http.MethodGet, "/api/v1/comments/"+url.PathEscape(id), nil, nil, &out)
	return out.Comment, err
}

// EditComment replaces a comment body.
func (c *Client) EditComment(ctx context.Context, id, body string) (*Comment, error) {
	var out struct {
		Comment *Comment `json:"comment"`
	}
	err := c.call(ctx, http.MethodPut, "/api/v1/comments/"+url.PathEscape(id), nil,
		map[string]string{"body": body}, &out)
	return out.Comment, err
}

// DeleteComment soft-deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/comments/"+url.PathEscape(id), nil, nil, nil)
}

// ListComments returns one page of comments.
func (c *Client) ListComments(ctx context.Context, q CommentQuery) (*Page[Comment], error) {
	v := q.PageOptions.values()
	setIf(v, "post_id", q.PostID)
	setIf(v, "parent_id", q.ParentID)
	setIf(v, "author_id", q.AuthorID)
	if q.RootsOnly {
		v.Set("roots_only", "true")
	}
	if q.IncludeDeleted {
		v.Set("include_deleted", "true")
	}
	var out Page[Comment]
	if err := c.call(ctx, http.MethodGet, "/api/v1/comments", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReplies returns one page of the direct children of parentID.
func (c *Client) ListReplies(ctx context.Context, parentID string, p PageOptions) (*Page[Comment], error) {
	var out Page[Comment]
	if err := c.call(ctx, http.MethodGet, "/api/v1/comments/"+url.PathEscape(parentID)+"/replies", p.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── reports ──────────────────────────────────────────────────────────────────

// CreateReport files a report.
func (c *Client) CreateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	var out struct {
		Report *Report `json:"report"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/reports", nil, req, &out)
	return out.Report, err
}

// GetReport fetches one report. Staff only.
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	var out struct {
		Report *Report `json:"report"`
	}
	err := c.call(ctx, http.MethodGet, "/api/v1/reports/"+url.PathEscape(id), nil, nil, &out)
	return out.Report, err
}

// ListReports returns one page of reports. Staff only.
func (c *Client) ListReports(ctx context.Context, q ReportQuery) (*Page[Report], error) {
	v := q.PageOptions.values()
	setIf(v, "status", q.Status)
	setIf(v, "reporter_id", q.ReporterID)
	var out Page[Report]
	if err := c.call(ctx, http.MethodGet, "/api/v1/reports", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveReport closes a pending report. The returned action is nil unless
// req carried one. errors.Is(err, ErrConflict) reports that the report was
// already closed.
func (c *Client) ResolveReport(ctx context.Context, id string, req ResolveRequest) (*Report, *Action, error) {
	var out struct {
		Report *Report `json:"report"`
		Action *Action `json:"action"`
	}
	if err := c.call(ctx, http.MethodPut, "/api/v1/reports/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, nil, err
	}
	return out.Report, out.Action, nil
}

// ── moderation actions ───────────────────────────────────────────────────────

// CreateAction records a moderation action. Staff only.
func (c *Client) CreateAction(ctx context.Context, req ActionRequest) (*Action, error) {
	var out struct {
		Action *Action `json:"action"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/moderationActions", nil, req, &out)
	return out.Action, err
}

// GetAction fetches one action, retired or not. Staff only.
func (c *Client) GetAction(ctx context.Context, id string) (*Action, error) {
	var out struct {
		Action *Action `json:"action"`
	}
	err := c.call(ctx, http.MethodGet, "/api/v1/moderationActions/"+url.PathEscape(id), nil, nil, &out)
	return out.Action, err
}

// ListActions returns one page of actions. Staff only.
func (c *Client) ListActions(ctx context.Context, q ActionQuery) (*Page[Action], error) {
	v := q.PageOptions.values()
	setIf(v, "report_id", q.ReportID)
	setIf(v, "target_post_id", q.TargetPostID)
	setIf(v, "target_comment_id", q.TargetCommentID)
	setIf(v, "action_type", q.ActionType)
	if q.IncludeRetired {
		v.Set("include_retired", "true")
	}
	var out Page[Action]
	if err := c.call(ctx, http.MethodGet, "/api/v1/moderationActions", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetireAction marks an action retired. Admin only.
func (c *Client) RetireAction(ctx context.Context, id string) (*Action, error) {
	var out struct {
		Action *Action `json:"action"`
	}
	err := c.call(ctx, http.MethodDelete, "/api/v1/moderationActions/"+url.PathEscape(id), nil, nil, &out)
	return out.Action, err
}

// ── audit chain ──────────────────────────────────────────────────────────────

// AuditOverview returns the audit chain length and head hash. Staff only.
func (c *Client) AuditOverview(ctx context.Context) (*AuditOverview, error) {
	var out AuditOverview
	if err := c.call(ctx, http.MethodGet, "/api/v1/audit", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAudit asks the server to walk the audit chain. Staff only.
func (c *Client) VerifyAudit(ctx context.Context) (*AuditVerification, error) {
	var out AuditVerification
	if err := c.call(ctx, http.MethodGet, "/api/v1/audit/verify", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── transport ────────────────────────────────────────────────────────────────

func (p PageOptions) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	setIf(v, "sort", p.Sort)
	return v
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

// call sends reqBody as JSON and decodes a 2xx response into respBody.
// Either may be nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, reqBody, respBody any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rdr io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if respBody == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do executes an HTTP request, attaching the Bearer token if present.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
