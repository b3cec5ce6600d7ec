package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/controllers"
	"github.com/yigit/alumnet/internal/middleware"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

// Controllers groups every HTTP handler set mounted by SetupRouter
type Controllers struct {
	Post         *controllers.PostController
	Comment      *controllers.CommentController
	Moderation   *controllers.ModerationController
	Notification *controllers.NotificationController
	Connection   *controllers.ConnectionController
	Message      *controllers.MessageController
	Health       *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	// Operational endpoints
	router.GET("/health", ctrl.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	SetupSwagger(router)

	// API version group
	v1 := router.Group("/api/v1")

	// Users and admins share the content surface
	shared := v1.Group("")
	shared.Use(authMiddleware.RequireActor())
	{
		posts := shared.Group("/posts")
		{
			posts.GET("", ctrl.Post.ListPosts)
			posts.POST("", ctrl.Post.CreatePost)
			posts.GET("/saved", ctrl.Post.ListSavedPosts)
			posts.GET("/:id", ctrl.Post.GetPost)
			posts.PATCH("/:id", ctrl.Post.UpdatePost)
			posts.DELETE("/:id", ctrl.Post.DeletePost)
			posts.POST("/:id/upvote", ctrl.Post.UpvotePost)
			posts.POST("/:id/downvote", ctrl.Post.DownvotePost)
			posts.POST("/:id/save", ctrl.Post.ToggleSave)
			posts.PATCH("/:id/pin", ctrl.Post.TogglePin)
			posts.POST("/:id/report", ctrl.Moderation.ReportPost)

			// gin requires one wildcard name per segment, so comment listings use :id too
			posts.GET("/:id/comments", renameParam("id", "postId", ctrl.Comment.ListComments))
			posts.GET("/:id/comments/thread", renameParam("id", "postId", ctrl.Comment.GetThread))
		}

		comments := shared.Group("/comments")
		{
			comments.POST("", ctrl.Comment.CreateComment)
			comments.GET("/:id/replies", ctrl.Comment.ListReplies)
			comments.PATCH("/:id", ctrl.Comment.UpdateComment)
			comments.DELETE("/:id", ctrl.Comment.DeleteComment)
			comments.POST("/:id/upvote", ctrl.Comment.UpvoteComment)
			comments.POST("/:id/downvote", ctrl.Comment.DownvoteComment)
		}

		notifications := shared.Group("/notifications")
		{
			notifications.GET("", ctrl.Notification.ListNotifications)
			notifications.GET("/unread-count", ctrl.Notification.UnreadCount)
			notifications.PATCH("/read-all", ctrl.Notification.MarkAllRead)
			notifications.PATCH("/:id/read", ctrl.Notification.MarkRead)
			notifications.DELETE("/:id", ctrl.Notification.DeleteNotification)
		}

		messages := shared.Group("/messages")
		{
			messages.POST("/conversation", ctrl.Message.StartConversation)
			messages.GET("/conversations", ctrl.Message.ListConversations)
			messages.GET("/conversation/:id", ctrl.Message.GetMessages)
			messages.PATCH("/conversation/:id/read", ctrl.Message.MarkConversationRead)
			messages.POST("/send", ctrl.Message.SendMessage)
			messages.GET("/unread-count", ctrl.Message.UnreadCount)
			messages.DELETE("/:id", ctrl.Message.DeleteMessage)
		}
	}

	// Connections exist between members only
	connections := v1.Group("/connections")
	connections.Use(authMiddleware.RequireUser())
	{
		connections.GET("", ctrl.Connection.ListConnections)
		connections.GET("/requests", ctrl.Connection.ListIncomingRequests)
		connections.GET("/status/:userId", ctrl.Connection.GetStatus)
		connections.POST("/request", ctrl.Connection.RequestConnection)
		connections.PATCH("/:id/accept", ctrl.Connection.AcceptConnection)
		connections.PATCH("/:id/reject", ctrl.Connection.RejectConnection)
		connections.DELETE("/:id", ctrl.Connection.DeleteConnection)
	}

	admin := v1.Group("/admin")
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("/reports", ctrl.Moderation.ListReports)
		admin.PATCH("/reports/:id/dismiss", ctrl.Moderation.DismissReport)
		admin.GET("/reported-users", ctrl.Moderation.ListReportedUsers)
		admin.POST("/users/:id/ban", ctrl.Moderation.BanUser)
		admin.POST("/users/:id/unban", ctrl.Moderation.UnbanUser)
		admin.POST("/posts/:id/recount-comments", ctrl.Post.RecountComments)
	}

	router.NoRoute(middleware.NoRoute())
}

// renameParam republishes the path parameter named from under the name to
func renameParam(from, to string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for i, p := range c.Params {
			if p.Key == from {
				c.Params[i].Key = to
			}
		}
		next(c)
	}
}
