package settlement

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 结算/佣金计算引擎
// ============================================================================
//
// 整个后台唯一带递归聚合逻辑的组件：
//   1. 把伙伴的整个下线展开成玩家集合
//   2. 对玩家集合在时间窗口内做投注/输额/出金聚合
//   3. 乘以各自的佣金比例得到三类佣金
//   4. 整合结算 = 自己的收入 - 付给直属下级的佣金
//
// 引擎只读，不写任何表，每次调用都基于新鲜数据重算，无缓存。
// 调用按顺序执行，不做并发扇出：报表规模是几十个伙伴，
// 简单性优先于吞吐。

var hundred = decimal.NewFromInt(100)

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// DescendantUserIDs 解析伙伴的全部下线玩家
//
// 【关键点】用显式队列 + visited 集合做迭代遍历，而不是递归：
// 父链成环本应被建档时的校验挡住，但万一数据被外部改坏，
// 这里也能保证终止，不会把整个报表拖死。
// 不存在的伙伴ID不报错，返回空集合。
func (e *Engine) DescendantUserIDs(ctx context.Context, partnerID int64) ([]int64, error) {
	userIDs := make([]int64, 0)
	visited := map[int64]bool{partnerID: true}
	queue := []int64{partnerID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		directUsers, err := e.store.GetPartnerUserIDs(ctx, current)
		if err != nil {
			return nil, err
		}
		userIDs = append(userIDs, directUsers...)

		children, err := e.store.GetChildPartners(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child.ID] {
				log.Printf("[Settlement] 检测到层级成环，已跳过: partnerID=%d", child.ID)
				continue
			}
			visited[child.ID] = true
			queue = append(queue, child.ID)
		}
	}

	return userIDs, nil
}

// BettingStats 投注聚合，空玩家集合或空窗口直接短路为零，不查库
func (e *Engine) BettingStats(ctx context.Context, userIDs []int64, start, end time.Time) (BettingStats, error) {
	if len(userIDs) == 0 || !end.After(start) {
		return zeroBettingStats(), nil
	}
	return e.store.GetBettingStats(ctx, userIDs, start, end)
}

// WithdrawalAmount 出金聚合，口径同上
func (e *Engine) WithdrawalAmount(ctx context.Context, userIDs []int64, start, end time.Time) (decimal.Decimal, error) {
	if len(userIDs) == 0 || !end.After(start) {
		return decimal.Zero, nil
	}
	return e.store.GetWithdrawalAmount(ctx, userIDs, start, end)
}

// CalculatePartnerCommission 计算单个伙伴在窗口内的佣金
//
// 比例用的是"佣金归属方自己谈定的比例"，即把下线全部业绩
// 都视为归属于该伙伴来计算——跨层级的重复归属在整合结算
// （CalculateIntegratedSettlement）那一层用差额相减解决，
// 本函数不做去重。
//
// 【错误策略】任何数据访问失败都记日志并降级为全零结果
// （Status=FAILED），绝不向上抛错：批量报表里单个伙伴的
// 故障不能让整批报表失败。
func (e *Engine) CalculatePartnerCommission(ctx context.Context, partnerID int64, rates Rates, start, end time.Time) *CommissionResult {
	userIDs, err := e.DescendantUserIDs(ctx, partnerID)
	if err != nil {
		log.Printf("[Settlement] 解析下线玩家失败: partnerID=%d, err=%v", partnerID, err)
		return zeroCommission(partnerID, CalcStatusFailed)
	}

	// 没有下线玩家，业绩必然全零，不必再查聚合
	if len(userIDs) == 0 {
		return zeroCommission(partnerID, CalcStatusOK)
	}

	stats, err := e.BettingStats(ctx, userIDs, start, end)
	if err != nil {
		log.Printf("[Settlement] 查询投注聚合失败: partnerID=%d, err=%v", partnerID, err)
		return zeroCommission(partnerID, CalcStatusFailed)
	}

	withdrawal, err := e.WithdrawalAmount(ctx, userIDs, start, end)
	if err != nil {
		log.Printf("[Settlement] 查询出金聚合失败: partnerID=%d, err=%v", partnerID, err)
		return zeroCommission(partnerID, CalcStatusFailed)
	}

	rollingCommission := stats.TotalBet.Mul(rates.Rolling).Div(hundred)
	losingCommission := stats.TotalLoss.Mul(rates.Losing).Div(hundred)
	withdrawalCommission := withdrawal.Mul(rates.Withdrawal).Div(hundred)

	return &CommissionResult{
		PartnerID:            partnerID,
		TotalBetAmount:       stats.TotalBet,
		TotalLossAmount:      stats.TotalLoss,
		TotalWithdrawal:      withdrawal,
		RollingCommission:    rollingCommission,
		LosingCommission:     losingCommission,
		WithdrawalCommission: withdrawalCommission,
		TotalCommission:      rollingCommission.Add(losingCommission).Add(withdrawalCommission),
		Status:               CalcStatusOK,
	}
}

// CalculateChildPartnersCommission 批量计算直属下级的佣金
// 只算直属一层，顺序执行，每个下级独立降级互不影响。
//
// 【区分两种失败】单个下级计算失败降级为该下级的全零结果；
// 但"下级名单本身查不出来"必须报错返回——空名单和查询失败
// 对上游（整合结算）的含义完全不同，不能混成同一个空切片。
func (e *Engine) CalculateChildPartnersCommission(ctx context.Context, parentID int64, start, end time.Time) ([]*CommissionResult, error) {
	children, err := e.store.GetChildPartners(ctx, parentID)
	if err != nil {
		log.Printf("[Settlement] 查询直属下级失败: parentID=%d, err=%v", parentID, err)
		return nil, err
	}

	results := make([]*CommissionResult, 0, len(children))
	for _, child := range children {
		result := e.CalculatePartnerCommission(ctx, child.ID, child.Rates, start, end)
		result.Nickname = child.Nickname
		result.Level = child.Level
		results = append(results, result)
	}
	return results, nil
}

// CalculateIntegratedSettlement 整合结算
//
// 收入：用自己的比例对"全部"下线（含孙辈以下）的业绩计佣；
// 支出：对每个"直属"下级，用该下级自己的比例对它的整个子树计佣，求和；
// 净利：两者同类目相减。
//
// 结算只向下看一层：孙辈的比例影响的是儿子自己跑报表时的净利，
// 不会在这里再链式扣一次。
//
// 【错误策略】任何一步失败则整份汇总补零（Status=FAILED），
// 宁可显示全零也不显示一半对一半错的数字。
func (e *Engine) CalculateIntegratedSettlement(ctx context.Context, partnerID int64, myRates Rates, start, end time.Time) *SettlementSummary {
	myResult := e.CalculatePartnerCommission(ctx, partnerID, myRates, start, end)
	if myResult.Status == CalcStatusFailed {
		return zeroSummary(partnerID, CalcStatusFailed)
	}

	childResults, err := e.CalculateChildPartnersCommission(ctx, partnerID, start, end)
	if err != nil {
		log.Printf("[Settlement] 批量计算下级佣金失败，整合结算整体补零: parentID=%d, err=%v", partnerID, err)
		return zeroSummary(partnerID, CalcStatusFailed)
	}

	payRolling := decimal.Zero
	payLosing := decimal.Zero
	payWithdrawal := decimal.Zero
	for _, child := range childResults {
		if child.Status == CalcStatusFailed {
			log.Printf("[Settlement] 下级佣金计算失败，整合结算整体补零: parentID=%d, childID=%d", partnerID, child.PartnerID)
			return zeroSummary(partnerID, CalcStatusFailed)
		}
		payRolling = payRolling.Add(child.RollingCommission)
		payLosing = payLosing.Add(child.LosingCommission)
		payWithdrawal = payWithdrawal.Add(child.WithdrawalCommission)
	}
	payTotal := payRolling.Add(payLosing).Add(payWithdrawal)

	return &SettlementSummary{
		PartnerID:                partnerID,
		MyRollingIncome:          myResult.RollingCommission,
		MyLosingIncome:           myResult.LosingCommission,
		MyWithdrawalIncome:       myResult.WithdrawalCommission,
		MyTotalIncome:            myResult.TotalCommission,
		PartnerRollingPayment:    payRolling,
		PartnerLosingPayment:     payLosing,
		PartnerWithdrawalPayment: payWithdrawal,
		PartnerTotalPayment:      payTotal,
		NetRollingProfit:         myResult.RollingCommission.Sub(payRolling),
		NetLosingProfit:          myResult.LosingCommission.Sub(payLosing),
		NetWithdrawalProfit:      myResult.WithdrawalCommission.Sub(payWithdrawal),
		NetTotalProfit:           myResult.TotalCommission.Sub(payTotal),
		ChildCommissions:         childResults,
		Status:                   CalcStatusOK,
	}
}

// CalculateMonthlyCommission 当月佣金便捷入口
// 窗口为本月1日 00:00:00 起、下月1日 00:00:00 止的半开区间，
// 月末最后一秒内的记录也不会漏掉，委托给单伙伴计算
func (e *Engine) CalculateMonthlyCommission(ctx context.Context, partnerID int64, rates Rates) decimal.Decimal {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	result := e.CalculatePartnerCommission(ctx, partnerID, rates, start, end)
	return result.TotalCommission
}

func zeroCommission(partnerID int64, status CalcStatus) *CommissionResult {
	return &CommissionResult{
		PartnerID:            partnerID,
		TotalBetAmount:       decimal.Zero,
		TotalLossAmount:      decimal.Zero,
		TotalWithdrawal:      decimal.Zero,
		RollingCommission:    decimal.Zero,
		LosingCommission:     decimal.Zero,
		WithdrawalCommission: decimal.Zero,
		TotalCommission:      decimal.Zero,
		Status:               status,
	}
}

func zeroBettingStats() BettingStats {
	return BettingStats{TotalBet: decimal.Zero, TotalLoss: decimal.Zero}
}

func zeroSummary(partnerID int64, status CalcStatus) *SettlementSummary {
	return &SettlementSummary{
		PartnerID:                partnerID,
		MyRollingIncome:          decimal.Zero,
		MyLosingIncome:           decimal.Zero,
		MyWithdrawalIncome:       decimal.Zero,
		MyTotalIncome:            decimal.Zero,
		PartnerRollingPayment:    decimal.Zero,
		PartnerLosingPayment:     decimal.Zero,
		PartnerWithdrawalPayment: decimal.Zero,
		PartnerTotalPayment:      decimal.Zero,
		NetRollingProfit:         decimal.Zero,
		NetLosingProfit:          decimal.Zero,
		NetWithdrawalProfit:      decimal.Zero,
		NetTotalProfit:           decimal.Zero,
		Status:                   status,
	}
}
