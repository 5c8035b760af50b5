package handler

import (
	"errors"
	"strconv"

	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/repository"
	"github.com/lunatickworker/casino-sub002/internal/service"
	"github.com/lunatickworker/casino-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	partnerService      *service.PartnerService
	settlementService   *service.SettlementService
	transactionService  *service.TransactionService
	balanceService      *service.BalanceService
	announcementService *service.AnnouncementService
	messageService      *service.MessageService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config, investClient service.InvestClient) *Handler {
	return &Handler{
		partnerService:      service.NewPartnerService(db),
		settlementService:   service.NewSettlementService(db),
		transactionService:  service.NewTransactionService(db, rdb, cfg, investClient),
		balanceService:      service.NewBalanceService(db, investClient),
		announcementService: service.NewAnnouncementService(db, cfg),
		messageService:      service.NewMessageService(db, cfg),
	}
}

// businessError 把仓储层的哨兵错误映射为业务错误码
func businessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPartnerNotFound), errors.Is(err, repository.ErrParentNotFound):
		response.BusinessError(c, response.CodePartnerNotFound, err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		response.BusinessError(c, response.CodeUserNotFound, err.Error())
	case errors.Is(err, repository.ErrTransactionNotFound):
		response.BusinessError(c, response.CodeTransactionNotFound, err.Error())
	case errors.Is(err, repository.ErrStatusInvalid):
		response.BusinessError(c, response.CodeStatusInvalid, err.Error())
	case errors.Is(err, repository.ErrAnnouncementNotFound):
		response.BusinessError(c, response.CodeAnnouncementNotFound, err.Error())
	case errors.Is(err, repository.ErrMessageNotFound):
		response.BusinessError(c, response.CodeMessageNotFound, err.Error())
	case errors.Is(err, repository.ErrHierarchyInvalid):
		response.BusinessError(c, response.CodeHierarchyInvalid, err.Error())
	case errors.Is(err, service.ErrBalanceNotEnough):
		response.BusinessError(c, response.CodeBalanceNotEnough, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, name+" 参数错误")
		return 0, false
	}
	return id, true
}

func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// ============================================================
// 伙伴相关接口
// ============================================================

// CreatePartnerRequest 创建伙伴请求
type CreatePartnerRequest struct {
	Username       string          `json:"username" binding:"required"`
	Nickname       string          `json:"nickname" binding:"required"`
	ParentID       *int64          `json:"parent_id"`
	Level          int             `json:"level" binding:"required"`
	RollingRate    decimal.Decimal `json:"rolling_rate"`
	LosingRate     decimal.Decimal `json:"losing_rate"`
	WithdrawalRate decimal.Decimal `json:"withdrawal_rate"`
}

// CreatePartner 创建伙伴
// POST /api/v1/partner/create
func (h *Handler) CreatePartner(c *gin.Context) {
	var req CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	partner, err := h.partnerService.CreatePartner(c.Request.Context(), &service.CreatePartnerRequest{
		Username:       req.Username,
		Nickname:       req.Nickname,
		ParentID:       req.ParentID,
		Level:          req.Level,
		RollingRate:    req.RollingRate,
		LosingRate:     req.LosingRate,
		WithdrawalRate: req.WithdrawalRate,
	})
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, partner)
}

// GetPartner 查询伙伴详情
// GET /api/v1/partner/:id
func (h *Handler) GetPartner(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	partner, err := h.partnerService.GetPartner(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, partner)
}

// ListPartners 查询全部伙伴
// GET /api/v1/partner/list
func (h *Handler) ListPartners(c *gin.Context) {
	partners, err := h.partnerService.ListAll(c.Request.Context())
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"list": partners, "total": len(partners)})
}

// ListPartnerChildren 查询直属下级
// GET /api/v1/partner/:id/children
func (h *Handler) ListPartnerChildren(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	children, err := h.partnerService.ListChildren(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"list": children, "total": len(children)})
}

// UpdatePartnerRatesRequest 调整佣金比例请求
type UpdatePartnerRatesRequest struct {
	RollingRate    decimal.Decimal `json:"rolling_rate"`
	LosingRate     decimal.Decimal `json:"losing_rate"`
	WithdrawalRate decimal.Decimal `json:"withdrawal_rate"`
}

// UpdatePartnerRates 调整佣金比例
// POST /api/v1/partner/:id/rates
func (h *Handler) UpdatePartnerRates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdatePartnerRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.partnerService.UpdateRates(c.Request.Context(), id, req.RollingRate, req.LosingRate, req.WithdrawalRate)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "佣金比例已更新"})
}

// UpdatePartnerStatus 更新伙伴状态
// POST /api/v1/partner/:id/status
func (h *Handler) UpdatePartnerStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.partnerService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "状态已更新"})
}

// ============================================================
// 玩家相关接口
// ============================================================

// ListPartnerUsers 查询伙伴名下玩家
// GET /api/v1/user/list?partner_id=xxx&page=1&page_size=20
func (h *Handler) ListPartnerUsers(c *gin.Context) {
	partnerID, err := strconv.ParseInt(c.Query("partner_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "partner_id 参数错误")
		return
	}

	page, pageSize := parsePage(c)
	users, total, err := h.balanceService.ListPartnerUsers(c.Request.Context(), partnerID, page, pageSize)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetUserBalance 查询玩家余额快照
// GET /api/v1/user/:id/balance
func (h *Handler) GetUserBalance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.balanceService.GetBalance(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":       user.ID,
		"balance":       user.Balance,
		"api_synced_at": user.ApiSyncedAt,
	})
}

// SyncUserBalance 手动从 Invest API 刷新单个玩家余额
// POST /api/v1/user/:id/balance/sync
func (h *Handler) SyncUserBalance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	balance, err := h.balanceService.SyncUser(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id": id,
		"balance": balance,
	})
}

// ListUserGameRecords 玩家投注历史
// GET /api/v1/user/:id/games?page=1&page_size=20
func (h *Handler) ListUserGameRecords(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	page, pageSize := parsePage(c)
	records, total, err := h.balanceService.ListUserGameRecords(c.Request.Context(), id, page, pageSize)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
