package handler

import (
	"github.com/lunatickworker/casino-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 公告接口
// ============================================================

// AnnouncementRequest 公告创建/修改请求
type AnnouncementRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Pinned    bool   `json:"pinned"`
	CreatedBy string `json:"created_by"`
}

// CreateAnnouncement 创建公告草稿
// POST /api/v1/announcement/create
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), req.Title, req.Content, req.CreatedBy, req.Pinned)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, announcement)
}

// PublishAnnouncement 发布公告
// POST /api/v1/announcement/:id/publish
func (h *Handler) PublishAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	announcement, err := h.announcementService.Publish(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, announcement)
}

// ArchiveAnnouncement 下架公告
// POST /api/v1/announcement/:id/archive
func (h *Handler) ArchiveAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.announcementService.Archive(c.Request.Context(), id); err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "公告已下架"})
}

// UpdateAnnouncement 修改公告
// POST /api/v1/announcement/:id/update
func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.announcementService.Update(c.Request.Context(), id, req.Title, req.Content, req.Pinned); err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "公告已更新"})
}

// GetAnnouncement 查询公告详情
// GET /api/v1/announcement/:id
func (h *Handler) GetAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	announcement, err := h.announcementService.Get(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, announcement)
}

// ListAnnouncements 查询已发布公告，置顶优先
// GET /api/v1/announcement/list?page=1&page_size=20
func (h *Handler) ListAnnouncements(c *gin.Context) {
	page, pageSize := parsePage(c)

	announcements, total, err := h.announcementService.ListPublished(c.Request.Context(), page, pageSize)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      announcements,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
