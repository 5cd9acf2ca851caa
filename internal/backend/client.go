package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// IdempotencyHeader carries a fresh key on every mutating request.
const IdempotencyHeader = "Idempotency-Key"

type Client struct {
	baseURL string
	http    *http.Client
	newKey  func() string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		newKey:  uuid.NewString,
	}
}

// ---------------- MESSAGES ----------------

type sendMessageReq struct {
	ChannelID string `json:"channel_id,omitempty"`
	Type      string `json:"type"`
	Content   any    `json:"content"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, channelID, text, replyToID string) (models.Message, error) {
	return c.postMessage(ctx, sendMessageReq{ChannelID: channelID, Type: string(models.MessageText), Content: text, ReplyToID: replyToID})
}

func (c *Client) SendCode(ctx context.Context, channelID, code, language, description string) (models.Message, error) {
	content := map[string]string{"code": code, "language": language, "description": description}
	return c.postMessage(ctx, sendMessageReq{ChannelID: channelID, Type: string(models.MessageCode), Content: content})
}

func (c *Client) postMessage(ctx context.Context, req sendMessageReq) (models.Message, error) {
	var w wire.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages", nil, req, &w); err != nil {
		return models.Message{}, err
	}
	return w.Canonical(), nil
}

func (c *Client) PinMessage(ctx context.Context, messageID, reason string) error {
	return c.do(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(messageID)+"/pin", nil, map[string]string{"reason": reason}, nil)
}

func (c *Client) UnpinMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(messageID)+"/pin", nil, nil, nil)
}

func (c *Client) ListMessages(ctx context.Context, channelID string, limit, offset int) ([]models.Message, error) {
	var raw json.RawMessage
	path := "/api/channels/" + url.PathEscape(channelID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, page(limit, offset), nil, &raw); err != nil {
		return nil, err
	}
	return wire.Messages(raw)
}

type SearchResult struct {
	Messages []models.Message
	Total    int
}

func (c *Client) SearchMessages(ctx context.Context, query string, limit, offset int) (SearchResult, error) {
	q := page(limit, offset)
	q.Set("q", query)
	var resp struct {
		Messages json.RawMessage `json:"messages"`
		Total    int             `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/search", q, nil, &resp); err != nil {
		return SearchResult{}, err
	}
	list, err := wire.Messages(resp.Messages)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Messages: list, Total: resp.Total}, nil
}

// ---------------- CHALLENGES ----------------

func (c *Client) SubmitFlag(ctx context.Context, challengeID, flag string) (models.Submission, error) {
	var w wire.Submission
	path := "/api/challenges/" + url.PathEscape(challengeID) + "/submit"
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"flag": flag}, &w); err != nil {
		return models.Submission{}, err
	}
	s := w.Canonical()
	if s.ChallengeID == "" {
		s.ChallengeID = challengeID
	}
	return s, nil
}

func (c *Client) AssignChallenge(ctx context.Context, challengeID string, memberIDs []string) error {
	path := "/api/challenges/" + url.PathEscape(challengeID) + "/assign"
	return c.do(ctx, http.MethodPost, path, nil, map[string][]string{"member_ids": memberIDs}, nil)
}

func (c *Client) UpdateProgress(ctx context.Context, challengeID string, progress int) error {
	path := "/api/challenges/" + url.PathEscape(challengeID) + "/progress"
	return c.do(ctx, http.MethodPost, path, nil, map[string]int{"progress": progress}, nil)
}

func (c *Client) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/challenges", nil, nil, &raw); err != nil {
		return nil, err
	}
	return wire.Challenges(raw)
}

// ---------------- MEMBERS ----------------

func (c *Client) ListMembers(ctx context.Context) ([]models.Member, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/members", nil, nil, &raw); err != nil {
		return nil, err
	}
	return wire.Members(raw)
}

// ---------------- FILES ----------------

func (c *Client) ListFiles(ctx context.Context, limit, offset int) ([]models.File, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/files", page(limit, offset), nil, &raw); err != nil {
		return nil, err
	}
	return wire.Files(raw)
}

// UploadFile sends content as a multipart form.
func (c *Client) UploadFile(ctx context.Context, channelID, name string, content io.Reader) (models.File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if channelID != "" {
		if err := mw.WriteField("channel_id", channelID); err != nil {
			return models.File{}, err
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return models.File{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return models.File{}, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.File{}, err
	}

	req, err := c.request(ctx, http.MethodPost, "/api/files", nil, &buf)
	if err != nil {
		return models.File{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var w wire.File
	if err := c.send(req, &w); err != nil {
		return models.File{}, err
	}
	return w.Canonical(), nil
}

// DownloadFile streams the raw file content into dst. Only failures come
// back enveloped.
func (c *Client) DownloadFile(ctx context.Context, fileID string, dst io.Writer) (int64, error) {
	req, err := c.request(ctx, http.MethodGet, "/api/files/"+url.PathEscape(fileID)+"/content", nil, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return 0, statusError(resp.StatusCode, body)
	}
	return io.Copy(dst, resp.Body)
}

func (c *Client) CancelUpload(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(fileID)+"/upload", nil, nil, nil)
}

// ---------------- TRANSPORT ----------------

func page(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := c.request(ctx, method, path, query, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set(IdempotencyHeader, c.newKey())
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return statusError(resp.StatusCode, body)
	}
	data, err := Decode[json.RawMessage](body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.Status = resp.StatusCode
		}
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// statusError prefers the envelope's error and falls back to http_<status>.
func statusError(status int, body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return env.apiError(status)
	}
	return &APIError{Status: status, Code: fmt.Sprintf("http_%d", status), Message: http.StatusText(status)}
}
