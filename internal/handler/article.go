// Package handler exposes the HTTP API. Handlers stay thin: parse the
// request, call one service method, translate the result.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/httputil"
)

// ArticleHandler handles article HTTP requests
type ArticleHandler struct {
	articleService services.ArticleService
	logger         *slog.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService services.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		logger:         logger,
	}
}

// articleView is the public read shape: the article plus its content
// rendered to sanitized HTML.
type articleView struct {
	*models.Article
	HTML string `json:"html"`
}

// ListArticles lists articles matching the query filters
// GET /api/articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ArticleFilter{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		AuthorID:   q.Get("author"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sort"),
		Limit:      httputil.QueryInt(r, "limit", 20),
		Offset:     httputil.QueryInt(r, "offset", 0),
	}

	list, err := h.articleService.ListArticles(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// GetArticle retrieves an article by slug with rendered HTML; counts a view
// GET /api/articles/{slug}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, html, err := h.articleService.RenderArticle(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, articleView{Article: article, HTML: html})
}

// GetArticleForEdit returns the raw article for the owner's editor
// GET /api/articles/{slug}/edit
func (h *ArticleHandler) GetArticleForEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	article, err := h.articleService.GetArticleForEdit(r.Context(), r.PathValue("slug"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}

// CreateArticle creates a new article
// POST /api/articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	req, err := h.parseSaveRequest(w, r)
	if err != nil {
		handleError(w, err)
		return
	}

	article, err := h.articleService.CreateArticle(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, article)
}

// UpdateArticle updates an existing article
// PUT /api/articles/{slug}
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	req, err := h.parseSaveRequest(w, r)
	if err != nil {
		handleError(w, err)
		return
	}

	article, err := h.articleService.UpdateArticle(r.Context(), r.PathValue("slug"), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}

// DeleteArticle deletes an article
// DELETE /api/articles/{slug}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(r.Context(), r.PathValue("slug"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// View counts a read without returning the body
// POST /api/articles/{slug}/view
func (h *ArticleHandler) View(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.GetArticle(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"view_count": article.ViewCount})
}

// Vote records a reader's vote
// POST /api/articles/{slug}/vote
func (h *ArticleHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Kind models.VoteKind `json:"kind"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	up, down, err := h.articleService.Vote(r.Context(), r.PathValue("slug"), userID, req.Kind)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"upvotes": up, "downvotes": down})
}

// parseSaveRequest decodes a composer save: multipart with a metadata field
// plus an optional thumbnail part, or plain JSON when nothing was uploaded.
func (h *ArticleHandler) parseSaveRequest(w http.ResponseWriter, r *http.Request) (*services.SaveArticleRequest, error) {
	var req services.SaveArticleRequest
	if !isMultipart(r) {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return &req, nil
	}

	if err := parseMultipart(w, r, maxArticleFormBytes, &req); err != nil {
		return nil, err
	}
	thumb, err := formUpload(r, "thumbnail")
	if err != nil {
		return nil, err
	}
	req.Thumbnail = thumb
	return &req, nil
}
