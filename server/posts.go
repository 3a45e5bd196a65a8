package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/storage"
)

type createPostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func postIDParam(c echo.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid post id")
	}
	return id, nil
}

func (s *Server) getPost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	post, err := s.store.GetPost(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Could not find any post with this id")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"_id":         post.ID.Hex(),
		"title":       post.Title,
		"description": post.Description,
		"likes":       len(post.Likes),
		"comments":    len(post.Comments),
	})
}

func (s *Server) createPost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and description are required")
	}

	post, err := s.store.CreatePost(c.Request().Context(), currentUser(c), req.Title, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"_id":          post.ID.Hex(),
		"title":        post.Title,
		"description":  post.Description,
		"created_time": post.CreatedAt,
	})
}

func (s *Server) deletePost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	err = s.store.DeletePost(c.Request().Context(), currentUser(c), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Could not find any post with this id")
	case errors.Is(err, storage.ErrForbidden):
		return echo.NewHTTPError(http.StatusUnauthorized, "You are not allowed to delete this post")
	case err != nil:
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post Deleted"})
}

func (s *Server) likePost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	fresh, err := s.store.LikePost(c.Request().Context(), currentUser(c), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post doesn't exist with this id")
		}
		return err
	}

	if !fresh {
		return c.JSON(http.StatusOK, echo.Map{"message": "You already liked this post"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post liked successfully"})
}

func (s *Server) unlikePost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	fresh, err := s.store.UnlikePost(c.Request().Context(), currentUser(c), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post doesn't exist with this id")
		}
		return err
	}

	if !fresh {
		return c.JSON(http.StatusOK, echo.Map{"message": "You have not liked this post"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post unliked successfully"})
}

func (s *Server) commentOnPost(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if req.Comment == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment text is required")
	}

	commentID, err := s.store.CommentOnPost(c.Request().Context(), currentUser(c), id, req.Comment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post doesn't exist with this id")
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"comment_id": commentID})
}

// getOwnPosts lists the requester's posts newest first. An empty list is a
// valid response, not an error.
func (s *Server) getOwnPosts(c echo.Context) error {
	posts, err := s.store.GetUserPosts(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}

	entries := make([]echo.Map, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, echo.Map{
			"id":          post.ID.Hex(),
			"title":       post.Title,
			"description": post.Description,
			"created_at":  post.CreatedAt,
			"likes":       len(post.Likes),
			"comments":    post.Comments,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": entries})
}
