package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CalcStatus 计算结果状态
//
// 【设计说明】数据访问失败时引擎会降级为全零结果而不是报错，
// 保证批量报表不会因为单个伙伴的故障整体失败。
// 但"真的没有业绩"和"查询失败补零"必须可区分，
// 否则测试和调用方都无法观测到降级的发生。
type CalcStatus string

const (
	CalcStatusOK     CalcStatus = "OK"     // 正常计算
	CalcStatusFailed CalcStatus = "FAILED" // 数据访问失败，结果已补零
)

// Rates 伙伴的三类佣金比例（百分比数值，1.5 表示 1.5%）
type Rates struct {
	Rolling    decimal.Decimal `json:"rolling_rate"`    // 投注额佣金比例
	Losing     decimal.Decimal `json:"losing_rate"`     // 输额佣金比例
	Withdrawal decimal.Decimal `json:"withdrawal_rate"` // 出金手续费佣金比例
}

// BettingStats 时间窗口内的投注聚合
type BettingStats struct {
	TotalBet  decimal.Decimal `json:"total_bet_amount"`
	TotalLoss decimal.Decimal `json:"total_loss_amount"` // 逐条 max(bet-win, 0) 之和
}

// PartnerInfo 引擎遍历层级时需要的伙伴摘要
type PartnerInfo struct {
	ID       int64
	Nickname string
	Level    int
	Rates    Rates
}

// CommissionResult 单个伙伴在窗口内的佣金计算结果
// 派生数据，每次查询现算，不落库
type CommissionResult struct {
	PartnerID            int64           `json:"partner_id"`
	Nickname             string          `json:"nickname,omitempty"`
	Level                int             `json:"level,omitempty"`
	TotalBetAmount       decimal.Decimal `json:"total_bet_amount"`
	TotalLossAmount      decimal.Decimal `json:"total_loss_amount"`
	TotalWithdrawal      decimal.Decimal `json:"total_withdrawal_amount"`
	RollingCommission    decimal.Decimal `json:"rolling_commission"`
	LosingCommission     decimal.Decimal `json:"losing_commission"`
	WithdrawalCommission decimal.Decimal `json:"withdrawal_commission"`
	TotalCommission      decimal.Decimal `json:"total_commission"`
	Status               CalcStatus      `json:"status"`
}

// SettlementSummary 整合结算结果
//
// 分层差额结算模型：伙伴按自己的比例对整个下线收佣（收入），
// 再按每个直属下级自己的比例对该下级的子树付佣（支出），
// 两者之差即为净利。同一批流水被两种比例各算一次是有意为之，
// 不是重复计账。
type SettlementSummary struct {
	PartnerID int64 `json:"partner_id"`

	MyRollingIncome    decimal.Decimal `json:"my_rolling_income"`
	MyLosingIncome     decimal.Decimal `json:"my_losing_income"`
	MyWithdrawalIncome decimal.Decimal `json:"my_withdrawal_income"`
	MyTotalIncome      decimal.Decimal `json:"my_total_income"`

	PartnerRollingPayment    decimal.Decimal `json:"partner_rolling_payment"`
	PartnerLosingPayment     decimal.Decimal `json:"partner_losing_payment"`
	PartnerWithdrawalPayment decimal.Decimal `json:"partner_withdrawal_payment"`
	PartnerTotalPayment      decimal.Decimal `json:"partner_total_payment"`

	NetRollingProfit    decimal.Decimal `json:"net_rolling_profit"`
	NetLosingProfit     decimal.Decimal `json:"net_losing_profit"`
	NetWithdrawalProfit decimal.Decimal `json:"net_withdrawal_profit"`
	NetTotalProfit      decimal.Decimal `json:"net_total_profit"`

	ChildCommissions []*CommissionResult `json:"child_commissions,omitempty"`
	Status           CalcStatus          `json:"status"`
}

// Store 引擎依赖的数据访问接口
//
// 【设计说明】显式注入而不是引用全局 DB 句柄，
// 单元测试可以用内存假实现替换（见 engine_test.go）
type Store interface {
	// GetChildPartners 返回直属下级伙伴，按 level 升序、nickname 升序排列
	GetChildPartners(ctx context.Context, parentID int64) ([]PartnerInfo, error)
	// GetPartnerUserIDs 返回直接挂在该伙伴名下的玩家ID
	GetPartnerUserIDs(ctx context.Context, partnerID int64) ([]int64, error)
	// GetBettingStats 聚合投注额与逐条截断的输额，窗口为半开区间 [start, end)
	GetBettingStats(ctx context.Context, userIDs []int64, start, end time.Time) (BettingStats, error)
	// GetWithdrawalAmount 聚合出金总额，只统计 APPROVED/COMPLETED 状态
	GetWithdrawalAmount(ctx context.Context, userIDs []int64, start, end time.Time) (decimal.Decimal, error)
}
