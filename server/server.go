package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/auth"
	"socialnet/cache"
	"socialnet/monitoring"
	"socialnet/storage/models"
)

// Store is the slice of the storage manager the HTTP layer depends on.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	CreatePost(ctx context.Context, creator primitive.ObjectID, title, description string) (models.Post, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	DeletePost(ctx context.Context, requester, id primitive.ObjectID) error
	LikePost(ctx context.Context, user, id primitive.ObjectID) (bool, error)
	UnlikePost(ctx context.Context, user, id primitive.ObjectID) (bool, error)
	CommentOnPost(ctx context.Context, author, id primitive.ObjectID, text string) (string, error)
	GetUserPosts(ctx context.Context, user primitive.ObjectID) ([]models.Post, error)

	Follow(ctx context.Context, follower, target primitive.ObjectID) (bool, error)
	Unfollow(ctx context.Context, follower, target primitive.ObjectID) (bool, error)
}

type Server struct {
	store   Store
	auth    *auth.Service
	limiter *cache.RateLimiter
}

func NewServer(store Store, authService *auth.Service, limiter *cache.RateLimiter) *Server {
	return &Server{
		store:   store,
		auth:    authService,
		limiter: limiter,
	}
}

// Echo builds the routing tree. Split from Run so tests can drive the
// handlers through httptest.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	e.Use(monitoring.Middleware)
	if s.limiter != nil {
		e.Use(s.rateLimit)
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/authenticate", s.authenticate)

	restricted := api.Group("", s.requireAuth)
	restricted.GET("/posts/:id", s.getPost)
	restricted.POST("/posts", s.createPost)
	restricted.DELETE("/posts/:id", s.deletePost)
	restricted.POST("/like/:id", s.likePost)
	restricted.POST("/unlike/:id", s.unlikePost)
	restricted.POST("/comment/:id", s.commentOnPost)
	restricted.GET("/all_posts", s.getOwnPosts)
	restricted.POST("/follow/:id", s.followUser)
	restricted.POST("/unfollow/:id", s.unfollowUser)
	restricted.GET("/user", s.getProfile)

	return e
}

func (s *Server) Run(port int) error {
	return s.Echo().Start(fmt.Sprintf(":%d", port))
}

// errorHandler shapes every error as {"message": ...}. Anything that is not
// an explicit HTTP error becomes a generic 500 so store internals never leak.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unknown error occurred"
	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"message": message})
}
