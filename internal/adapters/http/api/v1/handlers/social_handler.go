package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/usecase"
	res "github.com/xirothedev/facebook-clone-backend/pkg/http"
)

type SocialHandler struct {
	service usecase.SocialService
}

func NewSocialHandler(s usecase.SocialService) *SocialHandler { return &SocialHandler{service: s} }

type postRequest struct {
	Content  string  `json:"content"`
	MediaKey *string `json:"media_key"`
	Audience string  `json:"audience"`
}

type commentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

type reactRequest struct {
	Kind string `json:"kind"`
}

type friendRequest struct {
	UserID string `json:"user_id"`
}

type friendRespondRequest struct {
	RequesterID string `json:"requester_id"`
	Accept      bool   `json:"accept"`
}

func (h *SocialHandler) CreatePost(c echo.Context) error {
	req := new(postRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	post, err := h.service.CreatePost(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), usecase.CreatePostInput{
		Content:  req.Content,
		MediaKey: req.MediaKey,
		Audience: domain.PostAudience(req.Audience),
	})
	if err != nil {
		return mapError(c, err, "post_create_failed")
	}
	return res.JSON(c, http.StatusCreated, post)
}

func (h *SocialHandler) GetPost(c echo.Context) error {
	post, err := h.service.GetPost(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id"))
	if err != nil {
		return mapError(c, err, "post_fetch_failed")
	}
	return res.JSON(c, http.StatusOK, post)
}

func (h *SocialHandler) ListFeed(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	posts, err := h.service.ListFeed(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), limit, offset)
	if err != nil {
		return mapError(c, err, "feed_failed")
	}
	return res.JSON(c, http.StatusOK, posts)
}

func (h *SocialHandler) UpdatePost(c echo.Context) error {
	req := new(postRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	post, err := h.service.UpdatePost(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id"), usecase.CreatePostInput{
		Content:  req.Content,
		MediaKey: req.MediaKey,
		Audience: domain.PostAudience(req.Audience),
	})
	if err != nil {
		return mapError(c, err, "post_update_failed")
	}
	return res.JSON(c, http.StatusOK, post)
}

func (h *SocialHandler) DeletePost(c echo.Context) error {
	if err := h.service.DeletePost(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id")); err != nil {
		return mapError(c, err, "post_delete_failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SocialHandler) AddComment(c echo.Context) error {
	req := new(commentRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	comment, err := h.service.AddComment(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id"), req.Content, req.ParentID)
	if err != nil {
		return mapError(c, err, "comment_failed")
	}
	return res.JSON(c, http.StatusCreated, comment)
}

func (h *SocialHandler) ListComments(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	comments, err := h.service.ListComments(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id"), limit, offset)
	if err != nil {
		return mapError(c, err, "comments_failed")
	}
	return res.JSON(c, http.StatusOK, comments)
}

func (h *SocialHandler) DeleteComment(c echo.Context) error {
	if err := h.service.DeleteComment(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("commentId")); err != nil {
		return mapError(c, err, "comment_delete_failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SocialHandler) React(c echo.Context) error {
	req := new(reactRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	if err := h.service.React(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id"), domain.ReactionKind(req.Kind)); err != nil {
		return mapError(c, err, "reaction_failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SocialHandler) Unreact(c echo.Context) error {
	if err := h.service.Unreact(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id")); err != nil {
		return mapError(c, err, "reaction_failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SocialHandler) SendFriendRequest(c echo.Context) error {
	req := new(friendRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	friendship, err := h.service.SendFriendRequest(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), req.UserID)
	if err != nil {
		return mapError(c, err, "friend_request_failed")
	}
	return res.JSON(c, http.StatusCreated, friendship)
}

func (h *SocialHandler) RespondFriendRequest(c echo.Context) error {
	req := new(friendRespondRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	friendship, err := h.service.RespondFriendRequest(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), req.RequesterID, req.Accept)
	if err != nil {
		return mapError(c, err, "friend_respond_failed")
	}
	return res.JSON(c, http.StatusOK, friendship)
}

func (h *SocialHandler) BlockUser(c echo.Context) error {
	req := new(friendRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	friendship, err := h.service.BlockUser(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), req.UserID)
	if err != nil {
		return mapError(c, err, "block_failed")
	}
	return res.JSON(c, http.StatusOK, friendship)
}

func (h *SocialHandler) Unfriend(c echo.Context) error {
	if err := h.service.Unfriend(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string), c.Param("id")); err != nil {
		return mapError(c, err, "unfriend_failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SocialHandler) PresignUpload(c echo.Context) error {
	upload, err := h.service.PresignUpload(c.Request().Context(), requestIDFromCtx(c), c.Get("user_id").(string))
	if err != nil {
		return mapError(c, err, "presign_failed")
	}
	return res.JSON(c, http.StatusOK, upload)
}

func (h *SocialHandler) PresignDownload(c echo.Context) error {
	url, err := h.service.PresignDownload(c.Request().Context(), requestIDFromCtx(c), c.QueryParam("key"))
	if err != nil {
		return mapError(c, err, "presign_failed")
	}
	return res.JSON(c, http.StatusOK, map[string]string{"url": url})
}
