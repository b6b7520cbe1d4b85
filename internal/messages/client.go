package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cmdbgroup/internal/domain"
)

// HTTPClient 通过项目 HTTP 接口拉取快照、保存快照和轮询消息。
type HTTPClient struct {
	baseURL     string
	projectID   string
	httpClient  *http.Client
	tokenSource TokenSource
	authHeader  string
}

// HTTPConfig 配置 HTTP 客户端。
type HTTPConfig struct {
	BaseURL        string
	ProjectID      string
	TokenSource    TokenSource
	Timeout        time.Duration
	CustomClient   *http.Client
	AuthHeaderName string
}

// NewHTTPClient 根据配置创建客户端。
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("project base url 不能为空")
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("project id 不能为空")
	}
	client := cfg.CustomClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	authHeader := cfg.AuthHeaderName
	if strings.TrimSpace(authHeader) == "" {
		authHeader = "Authorization"
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		projectID:   cfg.ProjectID,
		httpClient:  client,
		tokenSource: cfg.TokenSource,
		authHeader:  authHeader,
	}, nil
}

func (c *HTTPClient) inventoryPath() string {
	return "/api/v1/projects/" + url.PathEscape(c.projectID) + "/inventory"
}

// Fetch 拉取当前库存快照。
func (c *HTTPClient) Fetch(ctx context.Context) (domain.Model, error) {
	var m domain.Model
	status, body, err := c.do(ctx, http.MethodGet, c.inventoryPath(), nil)
	if err != nil {
		return m, err
	}
	if status != http.StatusOK {
		return m, fmt.Errorf("项目接口返回状态码 %d", status)
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return m, fmt.Errorf("解析库存快照失败: %w", err)
	}
	return m, nil
}

// Save 提交库存快照，服务端异步保存后通过 changed 消息回报。
func (c *HTTPClient) Save(ctx context.Context, m domain.Model) (SaveReceipt, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("编码库存快照失败: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPut, c.inventoryPath(), payload)
	if err != nil {
		return SaveReceipt{}, err
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		return SaveReceipt{}, saveError(status, body)
	}
	var receipt SaveReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return SaveReceipt{}, fmt.Errorf("解析保存响应失败: %w", err)
	}
	if receipt.EntityID == "" {
		receipt.EntityID = c.projectID
	}
	return receipt, nil
}

func saveError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return &SaveError{Status: status, Message: payload.Message}
		}
		if payload.Detail != "" {
			return &SaveError{Status: status, Message: payload.Detail}
		}
	}
	return &SaveError{Status: status, Message: fmt.Sprintf("save failed with status %d", status)}
}

// CreateChannel 创建消息通道。
func (c *HTTPClient) CreateChannel(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/v1/messages/channels", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("创建消息通道返回状态码 %d", status)
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("解析消息通道失败: %w", err)
	}
	if payload.ID == "" {
		return "", errors.New("消息通道响应中缺少 id")
	}
	return payload.ID, nil
}

// Poll 拉取通道中的消息。通道过期时返回 ErrChannelNotFound。
func (c *HTTPClient) Poll(ctx context.Context, channelID string) ([]Message, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/messages/channels/"+url.PathEscape(channelID), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrChannelNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("轮询消息返回状态码 %d", status)
	}
	var payload struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("解析消息失败: %w", err)
	}
	return payload.Messages, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("获取 token 失败: %w", err)
		}
		if token != "" {
			req.Header.Set(c.authHeader, "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("请求项目接口失败: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return 0, nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return resp.StatusCode, body, nil
}

// StartRun 触发项目计算。
func (c *HTTPClient) StartRun(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(c.projectID)+"/runs", []byte("{}"))
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusAccepted && status != http.StatusCreated {
		return saveError(status, body)
	}
	return nil
}
