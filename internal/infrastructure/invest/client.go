package invest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/config"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Invest API 客户端
// ============================================================================
//
// 玩家的真实余额由外部 Invest 平台托管，本服务只保存快照。
// 所有资金操作（查余额 / 加钱 / 扣钱）都必须经过这组接口，
// 本地 users.balance 只是展示用的同步副本。

var ErrInvestAPI = errors.New("Invest API 调用失败")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg *config.InvestConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiResponse Invest API 统一响应体
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type balanceData struct {
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

// GetBalance 查询玩家在 Invest 平台的实时余额
func (c *Client) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	data, err := c.post(ctx, "/api/account/balance", map[string]interface{}{
		"username": username,
	})
	if err != nil {
		return decimal.Zero, err
	}

	var bd balanceData
	if err := json.Unmarshal(data, &bd); err != nil {
		return decimal.Zero, fmt.Errorf("解析余额响应失败: %w", err)
	}
	return bd.Balance, nil
}

// Deposit 向玩家账户加款（充值审核通过后调用）
func (c *Client) Deposit(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	data, err := c.post(ctx, "/api/account/deposit", map[string]interface{}{
		"username": username,
		"amount":   amount,
	})
	if err != nil {
		return decimal.Zero, err
	}

	var bd balanceData
	if err := json.Unmarshal(data, &bd); err != nil {
		return decimal.Zero, fmt.Errorf("解析加款响应失败: %w", err)
	}
	return bd.Balance, nil
}

// Withdraw 从玩家账户扣款（提现审核通过后调用）
func (c *Client) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	data, err := c.post(ctx, "/api/account/withdraw", map[string]interface{}{
		"username": username,
		"amount":   amount,
	})
	if err != nil {
		return decimal.Zero, err
	}

	var bd balanceData
	if err := json.Unmarshal(data, &bd); err != nil {
		return decimal.Zero, fmt.Errorf("解析扣款响应失败: %w", err)
	}
	return bd.Balance, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvestAPI, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取响应失败: %v", ErrInvestAPI, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", ErrInvestAPI, resp.StatusCode)
	}

	var ar apiResponse
	if err := json.Unmarshal(respBody, &ar); err != nil {
		return nil, fmt.Errorf("%w: 解析响应失败: %v", ErrInvestAPI, err)
	}
	if ar.Code != 0 {
		return nil, fmt.Errorf("%w: code=%d message=%s", ErrInvestAPI, ar.Code, ar.Message)
	}

	return ar.Data, nil
}
