package handler

import (
	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, investClient service.InvestClient) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg, investClient)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 伙伴层级管理
		partner := api.Group("/partner")
		{
			partner.POST("/create", h.CreatePartner)
			partner.GET("/list", h.ListPartners)
			partner.GET("/:id", h.GetPartner)
			partner.GET("/:id/children", h.ListPartnerChildren)
			partner.POST("/:id/rates", h.UpdatePartnerRates)
			partner.POST("/:id/status", h.UpdatePartnerStatus)
		}

		// 结算报表
		settlement := api.Group("/settlement")
		{
			settlement.GET("/commission/:id", h.GetPartnerCommission)
			settlement.GET("/children/:id", h.GetChildCommissions)
			settlement.GET("/integrated/:id", h.GetIntegratedSettlement)
			settlement.GET("/monthly/:id", h.GetMonthlyCommission)
		}

		// 充提审核
		transaction := api.Group("/transaction")
		{
			transaction.POST("/request", h.RequestTransaction)
			transaction.GET("/pending", h.ListPendingTransactions)
			transaction.POST("/approve", h.ApproveTransaction)
			transaction.POST("/reject", h.RejectTransaction)
			transaction.GET("/detail", h.GetTransaction)
			transaction.GET("/list", h.ListUserTransactions)
		}

		// 玩家与余额
		user := api.Group("/user")
		{
			user.GET("/list", h.ListPartnerUsers)
			user.GET("/:id/balance", h.GetUserBalance)
			user.POST("/:id/balance/sync", h.SyncUserBalance)
			user.GET("/:id/games", h.ListUserGameRecords)
		}

		// 公告
		announcement := api.Group("/announcement")
		{
			announcement.POST("/create", h.CreateAnnouncement)
			announcement.GET("/list", h.ListAnnouncements)
			announcement.GET("/:id", h.GetAnnouncement)
			announcement.POST("/:id/publish", h.PublishAnnouncement)
			announcement.POST("/:id/archive", h.ArchiveAnnouncement)
			announcement.POST("/:id/update", h.UpdateAnnouncement)
		}

		// 客服咨询
		message := api.Group("/message")
		{
			message.POST("/open", h.OpenMessage)
			message.POST("/reply", h.ReplyMessage)
			message.POST("/close", h.CloseMessage)
			message.GET("/open/list", h.ListOpenMessages)
			message.GET("/list", h.ListUserMessages)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
