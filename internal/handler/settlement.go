package handler

import (
	"time"

	"github.com/lunatickworker/casino-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 结算报表接口
// ============================================================
//
// 【错误策略】引擎内部的数据故障不会以 HTTP 错误暴露：
// 返回的结果带 status 字段（OK / FAILED），FAILED 表示已补零，
// 前端默认照常渲染零值，是否提示异常由前端自行决定。
// 只有"伙伴不存在"这类档案问题才走业务错误码。

// parseWindow 解析结算时间窗口，窗口统一为半开区间 [start, end)
// 支持 RFC3339 和 2006-01-02 两种格式；只给日期时，
// end 自动推到次日 00:00:00，当天最后一秒内的记录也算在内
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		response.ParamError(c, "start/end 参数不能为空")
		return time.Time{}, time.Time{}, false
	}

	start, _, err := parseTimeParam(startStr)
	if err != nil {
		response.ParamError(c, "start 参数格式错误")
		return time.Time{}, time.Time{}, false
	}

	end, endDateOnly, err := parseTimeParam(endStr)
	if err != nil {
		response.ParamError(c, "end 参数格式错误")
		return time.Time{}, time.Time{}, false
	}
	if endDateOnly {
		end = end.Add(24 * time.Hour)
	}

	return start, end, true
}

func parseTimeParam(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// GetPartnerCommission 单伙伴佣金报表
// GET /api/v1/settlement/commission/:id?start=2026-01-01&end=2026-01-31
func (h *Handler) GetPartnerCommission(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	result, err := h.settlementService.PartnerCommission(c.Request.Context(), id, start, end)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, result)
}

// GetChildCommissions 直属下级佣金批量报表
// GET /api/v1/settlement/children/:id?start=...&end=...
func (h *Handler) GetChildCommissions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	results, err := h.settlementService.ChildCommissions(c.Request.Context(), id, start, end)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{"list": results, "total": len(results)})
}

// GetIntegratedSettlement 整合结算报表
// GET /api/v1/settlement/integrated/:id?start=...&end=...
func (h *Handler) GetIntegratedSettlement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	summary, err := h.settlementService.IntegratedSettlement(c.Request.Context(), id, start, end)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, summary)
}

// GetMonthlyCommission 当月佣金
// GET /api/v1/settlement/monthly/:id
func (h *Handler) GetMonthlyCommission(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	total, err := h.settlementService.MonthlyCommission(c.Request.Context(), id)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"partner_id":       id,
		"total_commission": total,
	})
}
