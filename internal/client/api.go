package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/dto"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ErrNotLoggedIn 配置中没有 Token
var ErrNotLoggedIn = errors.New("not logged in, run `jot login` first")

// APIError 服务端返回的业务错误
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server error %d (http %d): %s", e.Code, e.HTTPStatus, e.Message)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return msg
}

// envelope 服务端统一响应结构
type envelope[T any] struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Details any    `json:"details"`
}

// API 同步服务的 HTTP 客户端
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPI 创建 API 客户端
func NewAPI(baseURL, token string, timeout time.Duration) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewAPIFromProfile 使用配置创建 API 客户端
func NewAPIFromProfile(p *Profile) *API {
	return NewAPI(p.Server, p.Token, p.RequestTimeout())
}

// Login 登录并返回 Token
func (a *API) Login(ctx context.Context, credentials, password string) (*dto.UserDTO, error) {
	out := &dto.UserDTO{}
	err := call(ctx, a, http.MethodPost, "/api/user/login", &dto.UserLoginRequest{
		Credentials: credentials,
		Password:    password,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sync 提交本地变更，返回服务端缺失的笔记
func (a *API) Sync(ctx context.Context, req *dto.SyncRequest) (*dto.SyncResponse, error) {
	if a.token == "" {
		return nil, ErrNotLoggedIn
	}
	out := &dto.SyncResponse{}
	if err := call(ctx, a, http.MethodPost, "/api/sync", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func call[T any](ctx context.Context, a *API, method, path string, body any, out *T) error {
	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	var res envelope[*T]
	res.Data = out
	if err := sonic.Unmarshal(raw, &res); err != nil {
		return &APIError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if !res.Status || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			HTTPStatus: resp.StatusCode,
			Code:       res.Code,
			Message:    res.Message,
			Details:    detailStrings(res.Details),
		}
	}
	return nil
}

func detailStrings(v any) []string {
	switch d := v.(type) {
	case nil:
		return nil
	case string:
		return []string{d}
	case []any:
		out := make([]string, 0, len(d))
		for _, x := range d {
			out = append(out, fmt.Sprint(x))
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}
