package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blenderforge/internal/content"
	"blenderforge/internal/domain"
	"blenderforge/internal/domain/services"
)

func validArticleRequest() *services.SaveArticleRequest {
	return &services.SaveArticleRequest{
		Title:      "Sculpting Basics",
		Excerpt:    "An introduction to sculpt mode",
		Content:    `[{"id":"block_1","type":"text","content":"<p>body text</p>"}]`,
		Category:   "Tutorials",
		Difficulty: "Beginner",
		ReadTime:   7,
		Thumbnail: &services.PendingUpload{
			Filename:    "thumb.png",
			ContentType: "image/png",
			Data:        []byte("\x89PNG\r\n\x1a\nfake"),
		},
	}
}

func newArticleService(repo *mockArticleRepo, up *mockUploader) services.ArticleService {
	return NewArticleService(repo, up, content.NewRenderer(), testLogger())
}

func TestCreateArticle(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	article, err := svc.CreateArticle(context.Background(), "user-1", validArticleRequest())
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if article.Slug != "sculpting-basics" {
		t.Errorf("slug = %q", article.Slug)
	}
	if article.ImageURL == "" {
		t.Error("thumbnail URL not stored")
	}
	if article.AuthorID != "user-1" {
		t.Errorf("author = %q", article.AuthorID)
	}
}

func TestCreateArticleValidationFailureTouchesNothing(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	req := validArticleRequest()
	req.Title = ""
	req.ReadTime = 0

	_, err := svc.CreateArticle(context.Background(), "user-1", req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var fields domain.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("error type = %T, want domain.FieldErrors", err)
	}
	if networkCalls(up, nil) != 0 {
		t.Errorf("uploader called on validation failure: %v", up.calls)
	}
	if len(repo.calls) != 0 {
		t.Errorf("repository called on validation failure: %v", repo.calls)
	}
}

func TestCreateArticleBadThumbnailRejectedBeforeUpload(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	req := validArticleRequest()
	req.Thumbnail.ContentType = "image/svg+xml"
	req.Thumbnail.Filename = "logo.svg"

	_, err := svc.CreateArticle(context.Background(), "user-1", req)
	if !errors.Is(err, domain.ErrUpload) {
		t.Fatalf("error = %v, want upload error", err)
	}
	if networkCalls(up, nil) != 0 {
		t.Errorf("uploader hit the network for an invalid file: %v", up.calls)
	}
}

func TestCreateArticleUploadsThumbnailBeforeInsert(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	if _, err := svc.CreateArticle(context.Background(), "user-1", validArticleRequest()); err != nil {
		t.Fatal(err)
	}

	if !hasCall(up.calls, "upload:thumbnails") {
		t.Fatalf("thumbnail never uploaded: %v", up.calls)
	}
	// With both recorded, the create must come after the upload.
	if len(repo.calls) == 0 || repo.calls[len(repo.calls)-1] != "create" {
		t.Errorf("repo calls = %v, want create last", repo.calls)
	}
}

func TestCreateArticleInsertFailureLeavesUpload(t *testing.T) {
	repo := newMockArticleRepo()
	repo.createErr = errors.New("connection reset")
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	_, err := svc.CreateArticle(context.Background(), "user-1", validArticleRequest())
	if err == nil {
		t.Fatal("expected insert failure")
	}
	// The uploaded thumbnail is orphaned, never deleted: storage cleanup is
	// out of band.
	if hasCall(up.calls, "delete:") {
		t.Errorf("insert failure triggered storage delete: %v", up.calls)
	}
}

func TestCreateArticleSlugCollision(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	first, err := svc.CreateArticle(context.Background(), "user-1", validArticleRequest())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateArticle(context.Background(), "user-2", validArticleRequest())
	if err != nil {
		t.Fatal(err)
	}

	if first.Slug != "sculpting-basics" || second.Slug != "sculpting-basics-2" {
		t.Errorf("slugs = %q, %q", first.Slug, second.Slug)
	}
}

func TestGetArticleCountsView(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	created, err := svc.CreateArticle(context.Background(), "user-1", validArticleRequest())
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetArticle(context.Background(), created.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != 1 {
		t.Errorf("view count = %d, want 1", got.ViewCount)
	}
}

func TestGetArticleForEditEnforcesOwnership(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	created, err := svc.CreateArticle(context.Background(), "user-1", validArticleRequest())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetArticleForEdit(context.Background(), created.Slug, "user-2"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("error = %v, want forbidden", err)
	}
	if _, err := svc.GetArticleForEdit(context.Background(), created.Slug, "user-1"); err != nil {
		t.Errorf("owner denied edit access: %v", err)
	}
}

func TestVoteRejectsUnknownKind(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newArticleService(repo, &mockUploader{})

	if _, _, err := svc.Vote(context.Background(), "article-1", "user-1", "sideways"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestRenderArticleSanitizes(t *testing.T) {
	repo := newMockArticleRepo()
	up := &mockUploader{}
	svc := newArticleService(repo, up)

	req := validArticleRequest()
	req.Content = `[{"id":"b1","type":"text","content":"<p>safe</p><script>alert(1)</script>"}]`
	created, err := svc.CreateArticle(context.Background(), "user-1", req)
	if err != nil {
		t.Fatal(err)
	}

	_, html, err := svc.RenderArticle(context.Background(), created.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if want := "<p>safe</p>"; !strings.Contains(html, want) {
		t.Errorf("rendered html missing %q: %s", want, html)
	}
	if strings.Contains(html, "<script") {
		t.Errorf("script survived sanitization: %s", html)
	}
}
