package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TokenSource 提供调用项目接口所需的 Token。
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource 返回固定 Token，适用于测试或简易场景。
type StaticTokenSource struct {
	Value string
}

// Token 返回固定值。
func (s *StaticTokenSource) Token(context.Context) (string, error) {
	return s.Value, nil
}

// PasswordTokenSource 通过用户名/密码换取 Token，并在过期前缓存。
type PasswordTokenSource struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// PasswordTokenConfig 配置基于用户名/密码的 TokenSource。
type PasswordTokenConfig struct {
	Endpoint   string
	Username   string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewPasswordTokenSource 创建一个 PasswordTokenSource。
func NewPasswordTokenSource(cfg PasswordTokenConfig) (*PasswordTokenSource, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("token endpoint 不能为空")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("用户名和密码不能为空")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &PasswordTokenSource{
		endpoint:   cfg.Endpoint,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: client,
	}, nil
}

// Token 实现 TokenSource，剩余有效期不足 30 秒时刷新。
func (s *PasswordTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && time.Until(s.expiry) > 30*time.Second {
		return s.token, nil
	}
	return s.refresh(ctx)
}

func (s *PasswordTokenSource) refresh(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": s.username,
		"password": s.password,
	})
	if err != nil {
		return "", fmt.Errorf("编码 token 请求失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("构建 token 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("获取 token 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token 接口返回状态码 %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("解析 token 响应失败: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token 响应中缺少 access_token")
	}
	expires := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if tokenResp.ExpiresIn == 0 {
		expires = time.Now().Add(30 * time.Minute)
	}
	s.token = tokenResp.AccessToken
	s.expiry = expires
	return s.token, nil
}
