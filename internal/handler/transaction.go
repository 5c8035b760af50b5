package handler

import (
	"strconv"

	"github.com/lunatickworker/casino-sub002/internal/service"
	"github.com/lunatickworker/casino-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ============================================================
// 充提审核接口
// ============================================================

// TransactionRequest 充值/提现申请
type TransactionRequest struct {
	RequestID string          `json:"request_id" binding:"required"` // 幂等ID，客户端生成
	UserID    int64           `json:"user_id" binding:"required"`
	Type      string          `json:"type" binding:"required"` // DEPOSIT / WITHDRAWAL
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Memo      string          `json:"memo"`
}

// RequestTransaction 发起充提申请
// POST /api/v1/transaction/request
func (h *Handler) RequestTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	transaction, err := h.transactionService.Request(c.Request.Context(), &service.TransactionRequest{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		Type:      req.Type,
		Amount:    req.Amount,
		Memo:      req.Memo,
	})
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"transaction_no": transaction.TransactionNo,
		"status":         transaction.Status,
		"amount":         transaction.Amount,
	})
}

// ListPendingTransactions 审核队列
// GET /api/v1/transaction/pending?limit=50
func (h *Handler) ListPendingTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	transactions, err := h.transactionService.ListPending(c.Request.Context(), limit)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"list": transactions, "total": len(transactions)})
}

// ApproveTransactionRequest 审核请求
type ApproveTransactionRequest struct {
	TransactionNo string `json:"transaction_no" binding:"required"`
	Operator      string `json:"operator" binding:"required"`
	Reason        string `json:"reason"`
}

// ApproveTransaction 审核通过
// POST /api/v1/transaction/approve
//
// 【关键点】审核是整个后台唯一会动真钱的操作：
// 1. 幂等/并发：按玩家维度的分布式锁 + 状态机 CAS 更新
// 2. 原子性：状态迁移、Invest API 资金操作、余额快照、
//    通知事件要么全部成功要么全部回滚
func (h *Handler) ApproveTransaction(c *gin.Context) {
	var req ApproveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	transaction, err := h.transactionService.Approve(c.Request.Context(), req.TransactionNo, req.Operator)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, transaction)
}

// RejectTransaction 审核拒绝
// POST /api/v1/transaction/reject
func (h *Handler) RejectTransaction(c *gin.Context) {
	var req ApproveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	transaction, err := h.transactionService.Reject(c.Request.Context(), req.TransactionNo, req.Operator, req.Reason)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, transaction)
}

// GetTransaction 查询交易详情
// GET /api/v1/transaction/detail?transaction_no=xxx
func (h *Handler) GetTransaction(c *gin.Context) {
	transactionNo := c.Query("transaction_no")
	if transactionNo == "" {
		response.ParamError(c, "transaction_no 参数不能为空")
		return
	}

	transaction, err := h.transactionService.GetTransaction(c.Request.Context(), transactionNo)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, transaction)
}

// ListUserTransactions 查询玩家交易列表
// GET /api/v1/transaction/list?user_id=xxx&page=1&page_size=20
func (h *Handler) ListUserTransactions(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	page, pageSize := parsePage(c)
	transactions, total, err := h.transactionService.ListUserTransactions(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      transactions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
