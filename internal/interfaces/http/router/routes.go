// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"neuroedge-api/internal/config"
	"neuroedge-api/internal/domain/repository"
	"neuroedge-api/internal/interfaces/http/handler"
	"neuroedge-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Chat     *handler.ChatHandler
	Search   *handler.SearchHandler
	Document *handler.DocumentHandler
	Property *handler.PropertyHandler
	Agent    *handler.AgentHandler

	TxManager repository.Transactor
}

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, cfg *config.Config, h *Handlers) {
	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Secret:  cfg.Security.JWT.Secret,
		Issuer:  cfg.Security.JWT.Issuer,
		Enabled: true,
	})

	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	// 话题与访客会话
	v1.GET("/topics", h.Chat.ListTopics)

	chat := v1.Group("/chat")
	{
		chat.POST("/:topic/messages", h.Chat.SendMessage)
		chat.GET("/:topic/history", h.Chat.History)
		chat.POST("/:topic/reset", h.Chat.Reset)
	}

	// 话题文档，上传要求登录
	topics := v1.Group("/topics")
	{
		topics.POST("/:topic/documents", authMiddleware, h.Document.Upload)
		topics.GET("/:topic/documents", h.Document.List)
	}

	// 后台管理，要求管理员身份，写操作包裹请求级事务
	admin := v1.Group("/admin")
	admin.Use(
		authMiddleware,
		middleware.RequireAdmin(),
		middleware.Audit(middleware.AuditConfig{Enabled: true}),
		middleware.DBTransaction(h.TxManager),
	)
	{
		properties := admin.Group("/properties")
		{
			properties.GET("", h.Property.List)
			properties.POST("", h.Property.Create)
			properties.GET("/:id", h.Property.Get)
			properties.PUT("/:id", h.Property.Update)
			properties.POST("/:id/archive", h.Property.Archive)
			properties.POST("/:id/restore", h.Property.Restore)
			properties.DELETE("/:id", h.Property.Delete)
		}

		// 回收站单独成组，避免与 :id 路由冲突
		trash := admin.Group("/trash")
		{
			trash.GET("", h.Property.ListTrash)
			trash.POST("/empty", h.Property.EmptyTrash)
		}

		users := admin.Group("/users")
		{
			users.POST("/password", h.Auth.ChangePassword)
		}

		agents := admin.Group("/agents")
		{
			agents.GET("", h.Agent.List)
			agents.POST("", h.Agent.Create)
			agents.GET("/:id", h.Agent.Get)
			agents.PUT("/:id", h.Agent.Update)
			agents.DELETE("/:id", h.Agent.Delete)
		}
	}
}
