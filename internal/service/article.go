// Package service implements the business logic behind the HTTP handlers.
// Services validate first, touch storage second: a request that fails
// validation never reaches the database or object storage.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"blenderforge/internal/composer"
	"blenderforge/internal/content"
	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/storage"
)

// articleService implements the ArticleService interface
type articleService struct {
	articleRepo repositories.ArticleRepository
	uploader    storage.Uploader
	renderer    *content.Renderer
	logger      *slog.Logger
}

// NewArticleService creates a new article service
func NewArticleService(
	articleRepo repositories.ArticleRepository,
	uploader storage.Uploader,
	renderer *content.Renderer,
	logger *slog.Logger,
) services.ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		uploader:    uploader,
		renderer:    renderer,
		logger:      logger,
	}
}

// CreateArticle validates, uploads the thumbnail, and creates the article.
// The thumbnail upload happens before the row insert; if the insert then
// fails the object is orphaned rather than the row pointing at nothing.
func (s *articleService) CreateArticle(ctx context.Context, authorID string, req *services.SaveArticleRequest) (*models.Article, error) {
	session, meta := articleSession(req)
	if err := session.Validate(meta); err != nil {
		return nil, err
	}
	if req.Thumbnail != nil {
		if err := storage.ValidateUpload(thumbnailInput(authorID, req.Thumbnail)); err != nil {
			return nil, err
		}
	}

	slug, err := uniqueSlug(ctx, meta.Title, s.articleRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	imageURL := req.ThumbnailURL
	if req.Thumbnail != nil {
		imageURL, err = s.uploader.Upload(ctx, thumbnailInput(authorID, req.Thumbnail))
		if err != nil {
			return nil, err
		}
	}

	serialized, err := session.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize content: %w", err)
	}

	article := &models.Article{
		AuthorID:   authorID,
		Title:      meta.Title,
		Slug:       slug,
		Excerpt:    meta.Description,
		Content:    serialized,
		Category:   meta.Category,
		Difficulty: meta.Difficulty,
		ReadTime:   meta.ReadTime,
		ImageURL:   imageURL,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		session.Fail(err)
		return nil, err
	}
	session.Complete()

	s.logger.Info("article created",
		"id", article.ID,
		"slug", article.Slug,
		"author_id", authorID,
	)

	return article, nil
}

// UpdateArticle validates and updates an existing article, looked up by
// slug. Ownership is checked before any media is uploaded.
func (s *articleService) UpdateArticle(ctx context.Context, slug, authorID string, req *services.SaveArticleRequest) (*models.Article, error) {
	session, meta := articleSession(req)
	if err := session.Validate(meta); err != nil {
		return nil, err
	}
	if req.Thumbnail != nil {
		if err := storage.ValidateUpload(thumbnailInput(authorID, req.Thumbnail)); err != nil {
			return nil, err
		}
	}

	existing, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != authorID {
		return nil, &domain.ForbiddenError{Message: "you do not own this article"}
	}

	imageURL := req.ThumbnailURL
	if req.Thumbnail != nil {
		uploaded, err := s.uploader.Upload(ctx, thumbnailInput(authorID, req.Thumbnail))
		if err != nil {
			return nil, err
		}
		imageURL = uploaded
	}

	serialized, err := session.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize content: %w", err)
	}

	update := &models.UpdateArticleRequest{
		Title:      &meta.Title,
		Excerpt:    &meta.Description,
		Content:    &serialized,
		Category:   &meta.Category,
		Difficulty: &meta.Difficulty,
		ReadTime:   &meta.ReadTime,
		ImageURL:   &imageURL,
	}
	article, err := s.articleRepo.Update(ctx, existing.ID, authorID, update)
	if err != nil {
		session.Fail(err)
		return nil, err
	}
	session.Complete()

	s.logger.Info("article updated",
		"id", article.ID,
		"slug", article.Slug,
		"author_id", authorID,
	)

	return article, nil
}

// GetArticle retrieves an article by slug and bumps its view counter
func (s *articleService) GetArticle(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	// View counting is best effort; a failed bump never fails the read.
	if err := s.articleRepo.IncrementViews(ctx, article.ID); err != nil {
		s.logger.Warn("failed to count article view", "id", article.ID, "error", err)
	} else {
		article.ViewCount++
	}

	return article, nil
}

// GetArticleForEdit retrieves an article by slug without counting a view.
// Only the owner may load an article for editing.
func (s *articleService) GetArticleForEdit(ctx context.Context, slug, authorID string) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != authorID {
		return nil, &domain.ForbiddenError{Message: "you do not own this article"}
	}
	return article, nil
}

// ListArticles lists articles matching the filter
func (s *articleService) ListArticles(ctx context.Context, filter models.ArticleFilter) (*services.ArticleList, error) {
	articles, err := s.articleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.articleRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &services.ArticleList{Articles: articles, Total: total}, nil
}

// DeleteArticle deletes an article looked up by slug
func (s *articleService) DeleteArticle(ctx context.Context, slug, authorID string) error {
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if article.AuthorID != authorID {
		return &domain.ForbiddenError{Message: "you do not own this article"}
	}
	if err := s.articleRepo.Delete(ctx, article.ID, authorID); err != nil {
		return err
	}
	s.logger.Info("article deleted", "id", article.ID, "author_id", authorID)
	return nil
}

// Vote records a reader's vote and returns updated tallies
func (s *articleService) Vote(ctx context.Context, slug, userID string, kind models.VoteKind) (int, int, error) {
	if kind != models.VoteUp && kind != models.VoteDown {
		return 0, 0, fmt.Errorf("%w: vote must be \"up\" or \"down\"", domain.ErrValidation)
	}
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return 0, 0, err
	}
	return s.articleRepo.Vote(ctx, article.ID, userID, kind)
}

// RenderArticle returns the article with its content rendered to sanitized HTML
func (s *articleService) RenderArticle(ctx context.Context, slug string) (*models.Article, string, error) {
	article, err := s.GetArticle(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	doc := content.ParseDocument(article.Content)
	return article, s.renderer.RenderHTML(doc), nil
}

// articleSession rebuilds the compose session and metadata from a save
// request so the same rule set applies on the server as in the editor.
func articleSession(req *services.SaveArticleRequest) (*composer.Session, *composer.Metadata) {
	session := composer.LoadSession(req.Content)
	meta := &composer.Metadata{
		Kind:            composer.KindArticle,
		Title:           req.Title,
		Description:     req.Excerpt,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		ReadTime:        req.ReadTime,
		ThumbnailURL:    req.ThumbnailURL,
		HasNewThumbnail: req.Thumbnail != nil,
	}
	meta.Normalize()
	return session, meta
}

func thumbnailInput(ownerID string, u *services.PendingUpload) storage.UploadInput {
	return storage.UploadInput{
		Bucket:      storage.BucketThumbnails,
		OwnerID:     ownerID,
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Data:        u.Data,
	}
}
