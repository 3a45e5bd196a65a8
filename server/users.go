package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/auth"
	"socialnet/storage"
	"socialnet/storage/models"
)

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authenticate verifies credentials and issues a bearer token. An unknown
// email provisions a fresh account on the spot, with the username taken from
// the email's local part.
func (s *Server) authenticate(c echo.Context) error {
	var req authenticateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := auth.ValidateCredentials(req.Email, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password format")
	}

	ctx := c.Request().Context()
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user, err = s.provisionUser(c, req.Email, req.Password)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := s.auth.CheckPassword(user.Password, req.Password); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
	}

	token, err := s.auth.IssueToken(user.ID.Hex())
	if err != nil {
		log.Errorf("Error issuing token: %v", err)
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": user.ID.Hex(),
		"token":   token,
	})
}

func (s *Server) provisionUser(c echo.Context, email, password string) (models.User, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	username := strings.SplitN(email, "@", 2)[0]
	ctx := c.Request().Context()

	user, err := s.store.CreateUser(ctx, username, email, hash)
	if errors.Is(err, storage.ErrEmailExists) {
		// Lost a provisioning race; the account exists now.
		user, err = s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return models.User{}, err
		}
		if err := s.auth.CheckPassword(user.Password, password); err != nil {
			return models.User{}, echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return user, nil
	}
	return user, err
}

func (s *Server) followUser(c echo.Context) error {
	target, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}

	_, err = s.store.Follow(c.Request().Context(), currentUser(c), target)
	switch {
	case errors.Is(err, storage.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, "You can't follow yourself")
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case err != nil:
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User Followed"})
}

func (s *Server) unfollowUser(c echo.Context) error {
	target, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}

	_, err = s.store.Unfollow(c.Request().Context(), currentUser(c), target)
	switch {
	case errors.Is(err, storage.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, "You can't unfollow yourself")
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case err != nil:
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User UnFollowed"})
}

func (s *Server) getProfile(c echo.Context) error {
	user, err := s.store.GetUser(c.Request().Context(), currentUser(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Please login first")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username":  user.Username,
		"followers": len(user.Followers),
		"following": len(user.Following),
	})
}
