package handler

import (
	"strconv"

	"github.com/lunatickworker/casino-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 客服咨询接口
// ============================================================

// OpenMessageRequest 发起咨询请求
type OpenMessageRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// OpenMessage 玩家发起咨询
// POST /api/v1/message/open
func (h *Handler) OpenMessage(c *gin.Context) {
	var req OpenMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	message, err := h.messageService.Open(c.Request.Context(), req.UserID, req.Title, req.Content)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, message)
}

// ReplyMessageRequest 客服回复请求
type ReplyMessageRequest struct {
	MessageNo string `json:"message_no" binding:"required"`
	Reply     string `json:"reply" binding:"required"`
	RepliedBy string `json:"replied_by" binding:"required"`
}

// ReplyMessage 客服回复
// POST /api/v1/message/reply
func (h *Handler) ReplyMessage(c *gin.Context) {
	var req ReplyMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	message, err := h.messageService.Reply(c.Request.Context(), req.MessageNo, req.Reply, req.RepliedBy)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, message)
}

// CloseMessage 关闭咨询
// POST /api/v1/message/close
func (h *Handler) CloseMessage(c *gin.Context) {
	var req struct {
		MessageNo string `json:"message_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.messageService.Close(c.Request.Context(), req.MessageNo); err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "咨询已关闭"})
}

// ListOpenMessages 待处理咨询队列
// GET /api/v1/message/open/list?page=1&page_size=20
func (h *Handler) ListOpenMessages(c *gin.Context) {
	page, pageSize := parsePage(c)

	messages, total, err := h.messageService.ListOpen(c.Request.Context(), page, pageSize)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListUserMessages 玩家咨询历史
// GET /api/v1/message/list?user_id=xxx&page=1&page_size=20
func (h *Handler) ListUserMessages(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	page, pageSize := parsePage(c)
	messages, total, err := h.messageService.ListUserMessages(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
