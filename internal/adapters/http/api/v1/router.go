package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/xirothedev/facebook-clone-backend/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	auth   *handlers.AuthHandler
	social *handlers.SocialHandler
	authMW echo.MiddlewareFunc
}

func NewRouter(auth *handlers.AuthHandler, social *handlers.SocialHandler, authMW echo.MiddlewareFunc) *Router {
	return &Router{auth: auth, social: social, authMW: authMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/register", r.auth.Register)
	auth.POST("/login", r.auth.Login)
	auth.POST("/logout", r.auth.Logout)
	auth.POST("/refresh", r.auth.Refresh)
	auth.POST("/recovery/start", r.auth.RecoveryStart)
	auth.POST("/recovery/confirm", r.auth.RecoveryConfirm)
	auth.POST("/forgot/start", r.auth.ForgotStart)
	auth.POST("/forgot/verify", r.auth.ForgotVerify)

	authProtected := auth.Group("", r.authMW)
	authProtected.POST("/password/change", r.auth.ChangePassword)
	authProtected.GET("/me", r.auth.GetMe)

	posts := g.Group("/posts", r.authMW)
	posts.POST("", r.social.CreatePost)
	posts.GET("/feed", r.social.ListFeed)
	posts.GET("/:id", r.social.GetPost)
	posts.PATCH("/:id", r.social.UpdatePost)
	posts.DELETE("/:id", r.social.DeletePost)
	posts.POST("/:id/comments", r.social.AddComment)
	posts.GET("/:id/comments", r.social.ListComments)
	posts.DELETE("/:id/comments/:commentId", r.social.DeleteComment)
	posts.PUT("/:id/reaction", r.social.React)
	posts.DELETE("/:id/reaction", r.social.Unreact)

	friends := g.Group("/friends", r.authMW)
	friends.POST("/requests", r.social.SendFriendRequest)
	friends.POST("/requests/respond", r.social.RespondFriendRequest)
	friends.POST("/block", r.social.BlockUser)
	friends.DELETE("/:id", r.social.Unfriend)

	media := g.Group("/media", r.authMW)
	media.POST("/presign-upload", r.social.PresignUpload)
	media.GET("/presign-download", r.social.PresignDownload)
}
