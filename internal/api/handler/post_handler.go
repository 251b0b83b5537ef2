package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/daily-journal/blog/internal/api/metrics"
	"github.com/daily-journal/blog/internal/api/view"
	"github.com/daily-journal/blog/internal/core/domain"
	"github.com/daily-journal/blog/internal/core/ports"
)

const homePath = "/"

type PostHandler struct {
	postService ports.PostService
	log         zerolog.Logger
}

func NewPostHandler(postService ports.PostService, log zerolog.Logger) *PostHandler {
	return &PostHandler{postService: postService, log: log}
}

type composeRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	ImageURL    string `form:"imageUrl"`
}

// List renders every post on the home page.
//
// @Summary      List posts
// @Tags         posts
// @Produce      html
// @Success      200
// @Success      302  {string}  string  "store failure, redirect to /"
// @Router       / [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.postService.ListPosts(c.Request().Context())
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list_posts").Inc()
		return c.Redirect(http.StatusFound, homePath)
	}
	return c.Render(http.StatusOK, view.PageIndex, map[string]any{"Posts": posts})
}

// View renders a single post.
//
// @Summary      View a post
// @Tags         posts
// @Produce      html
// @Param        id   path  string  true  "Post ID"
// @Success      200
// @Success      302  {string}  string  "unknown id or store failure, redirect to /"
// @Router       /post/{id} [get]
func (h *PostHandler) View(c echo.Context) error {
	post, err := h.postService.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, domain.ErrPostNotFound) {
			metrics.StoreErrorsTotal.WithLabelValues("get_post").Inc()
		}
		return c.Redirect(http.StatusFound, homePath)
	}
	return c.Render(http.StatusOK, view.PagePost, map[string]any{"Post": post})
}

// ComposeForm renders the compose page.
//
// @Summary      Compose form
// @Tags         posts
// @Produce      html
// @Success      200
// @Router       /compose [get]
func (h *PostHandler) ComposeForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageCompose, nil)
}

// Compose stores a new post and returns to the home page. An unreadable form
// or a failed insert is logged and the client is still redirected.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       x-www-form-urlencoded
// @Param        title        formData  string  false  "Post title"
// @Param        description  formData  string  false  "Post body (markdown)"
// @Param        imageUrl     formData  string  false  "Cover image URL"
// @Success      302  {string}  string  "redirect to /"
// @Router       /compose [post]
func (h *PostHandler) Compose(c echo.Context) error {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		h.log.Warn().Err(err).Msg("compose: unreadable form, redirecting home")
		return c.Redirect(http.StatusFound, homePath)
	}

	_, err := h.postService.ComposePost(c.Request().Context(), ports.ComposePostInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("compose_post").Inc()
		h.log.Warn().Err(err).Msg("compose: post not saved, redirecting home")
	} else {
		metrics.PostsCreatedTotal.Inc()
	}
	return c.Redirect(http.StatusFound, homePath)
}

// Delete removes one post.
//
// @Summary      Delete a post
// @Tags         posts
// @Produce      plain
// @Param        id   path  string  true  "Post ID"
// @Success      302  {string}  string  "redirect to /"
// @Failure      404  {string}  string  "Blog post not found"
// @Failure      500  {string}  string  "Internal Server Error"
// @Router       /post/delete/{id} [post]
// @Router       /post/delete/{id} [get]
func (h *PostHandler) Delete(c echo.Context) error {
	err := h.postService.DeletePost(c.Request().Context(), c.Param("id"))
	switch {
	case err == nil:
		metrics.PostsDeletedTotal.Inc()
		return c.Redirect(http.StatusFound, homePath)
	case errors.Is(err, domain.ErrPostNotFound):
		return c.String(http.StatusNotFound, "Blog post not found")
	default:
		metrics.StoreErrorsTotal.WithLabelValues("delete_post").Inc()
		return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
