package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
	"blenderforge/internal/payment"
	"blenderforge/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockUploader records every storage call so tests can assert call order
// and the zero-network-on-validation-failure property.
type mockUploader struct {
	calls      []string
	uploadErr  error
	presignURL string
}

func (m *mockUploader) Upload(_ context.Context, in storage.UploadInput) (string, error) {
	if err := storage.ValidateUpload(in); err != nil {
		return "", err
	}
	m.calls = append(m.calls, "upload:"+string(in.Bucket))
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return "https://cdn.test/" + string(in.Bucket) + "/" + in.Filename, nil
}

func (m *mockUploader) Delete(_ context.Context, bucket storage.Bucket, key string) error {
	m.calls = append(m.calls, "delete:"+string(bucket))
	return nil
}

func (m *mockUploader) PresignDownload(_ context.Context, bucket storage.Bucket, key string) (string, error) {
	m.calls = append(m.calls, "presign:"+string(bucket))
	if m.presignURL != "" {
		return m.presignURL, nil
	}
	return "https://signed.test/" + key, nil
}

// mockArticleRepo is an in-memory ArticleRepository.
type mockArticleRepo struct {
	articles  map[string]*models.Article
	calls     []string
	createErr error
	nextID    int
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: map[string]*models.Article{}}
}

func (m *mockArticleRepo) Create(_ context.Context, a *models.Article) error {
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	a.ID = fmt.Sprintf("article-%d", m.nextID)
	m.articles[a.ID] = a
	return nil
}

func (m *mockArticleRepo) GetByID(_ context.Context, id string) (*models.Article, error) {
	if a, ok := m.articles[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
}

func (m *mockArticleRepo) GetBySlug(_ context.Context, slug string) (*models.Article, error) {
	for _, a := range m.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, fmt.Errorf("article %s: %w", slug, domain.ErrNotFound)
}

func (m *mockArticleRepo) Update(_ context.Context, id, authorID string, req *models.UpdateArticleRequest) (*models.Article, error) {
	m.calls = append(m.calls, "update")
	a, ok := m.articles[id]
	if !ok || a.AuthorID != authorID {
		return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.ImageURL != nil {
		a.ImageURL = *req.ImageURL
	}
	return a, nil
}

func (m *mockArticleRepo) Delete(_ context.Context, id, authorID string) error {
	a, ok := m.articles[id]
	if !ok || a.AuthorID != authorID {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	delete(m.articles, id)
	return nil
}

func (m *mockArticleRepo) List(_ context.Context, _ models.ArticleFilter) ([]models.Article, error) {
	out := []models.Article{}
	for _, a := range m.articles {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockArticleRepo) Count(_ context.Context, _ models.ArticleFilter) (int, error) {
	return len(m.articles), nil
}

func (m *mockArticleRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	m.calls = append(m.calls, "slug_exists")
	for _, a := range m.articles {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockArticleRepo) IncrementViews(_ context.Context, id string) error {
	if a, ok := m.articles[id]; ok {
		a.ViewCount++
		return nil
	}
	return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
}

func (m *mockArticleRepo) Vote(_ context.Context, id, userID string, kind models.VoteKind) (int, int, error) {
	a, ok := m.articles[id]
	if !ok {
		return 0, 0, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	if kind == models.VoteUp {
		a.Upvotes++
	} else {
		a.Downvotes++
	}
	return a.Upvotes, a.Downvotes, nil
}

// mockProductRepo is an in-memory ProductRepository.
type mockProductRepo struct {
	products map[string]*models.Product
	nextID   int
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: map[string]*models.Product{}}
}

func (m *mockProductRepo) Create(_ context.Context, p *models.Product) error {
	m.nextID++
	p.ID = fmt.Sprintf("product-%d", m.nextID)
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

func (m *mockProductRepo) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", slug, domain.ErrNotFound)
}

func (m *mockProductRepo) Update(_ context.Context, id, sellerID string, req *models.UpdateProductRequest) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok || p.SellerID != sellerID {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.FileKey != nil {
		p.FileKey = *req.FileKey
	}
	if req.FileName != nil {
		p.FileName = *req.FileName
	}
	if req.FileSize != nil {
		p.FileSize = *req.FileSize
	}
	if req.Published != nil {
		p.Published = *req.Published
	}
	return p, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id, sellerID string) error {
	p, ok := m.products[id]
	if !ok || p.SellerID != sellerID {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) List(_ context.Context, _ models.ProductFilter) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) Count(_ context.Context, _ models.ProductFilter) (int, error) {
	return len(m.products), nil
}

func (m *mockProductRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProductRepo) ApplyReviewAggregate(_ context.Context, id string, avg float64, count int) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	p.RatingAvg = avg
	p.RatingCount = count
	return nil
}

func (m *mockProductRepo) IncrementSales(_ context.Context, id string) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	p.SalesCount++
	return nil
}

// mockReviewRepo is an in-memory ReviewRepository.
type mockReviewRepo struct {
	reviews map[string]*models.Review
	nextID  int
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: map[string]*models.Review{}}
}

func (m *mockReviewRepo) Create(_ context.Context, r *models.Review) error {
	for _, existing := range m.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return &domain.ConflictError{Message: "you have already reviewed this product", ResourceType: "review"}
		}
	}
	m.nextID++
	r.ID = fmt.Sprintf("review-%d", m.nextID)
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id string) (*models.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (m *mockReviewRepo) GetByProductAndUser(_ context.Context, productID, userID string) (*models.Review, error) {
	for _, r := range m.reviews {
		if r.ProductID == productID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("review: %w", domain.ErrNotFound)
}

func (m *mockReviewRepo) Update(_ context.Context, id, userID string, req *models.UpdateReviewRequest) (*models.Review, error) {
	r, ok := m.reviews[id]
	if !ok || r.UserID != userID {
		return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	if req.Rating != nil {
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		r.Comment = *req.Comment
	}
	return r, nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id, userID string) error {
	r, ok := m.reviews[id]
	if !ok || r.UserID != userID {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockReviewRepo) ListByProduct(_ context.Context, productID string, _, _ int) ([]models.Review, error) {
	out := []models.Review{}
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) Aggregate(_ context.Context, productID string) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// mockPurchaseRepo is an in-memory PurchaseRepository.
type mockPurchaseRepo struct {
	purchases map[string]*models.Purchase
	nextID    int
}

func newMockPurchaseRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{purchases: map[string]*models.Purchase{}}
}

func (m *mockPurchaseRepo) Create(_ context.Context, p *models.Purchase) error {
	for _, existing := range m.purchases {
		if existing.SessionID == p.SessionID {
			return &domain.ConflictError{Message: "purchase already recorded", ResourceType: "purchase"}
		}
	}
	m.nextID++
	p.ID = fmt.Sprintf("purchase-%d", m.nextID)
	m.purchases[p.ID] = p
	return nil
}

func (m *mockPurchaseRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Purchase, error) {
	for _, p := range m.purchases {
		if p.SessionID == sessionID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("purchase: %w", domain.ErrNotFound)
}

func (m *mockPurchaseRepo) HasPurchased(_ context.Context, userID, productID string) (bool, error) {
	for _, p := range m.purchases {
		if p.UserID == userID && p.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPurchaseRepo) ListByUser(_ context.Context, userID string) ([]models.Purchase, error) {
	out := []models.Purchase{}
	for _, p := range m.purchases {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// mockSupporterRepo is an in-memory SupporterRepository.
type mockSupporterRepo struct {
	supporters map[string]*models.Supporter
	nextID     int
}

func newMockSupporterRepo() *mockSupporterRepo {
	return &mockSupporterRepo{supporters: map[string]*models.Supporter{}}
}

func (m *mockSupporterRepo) Create(_ context.Context, s *models.Supporter) error {
	for _, existing := range m.supporters {
		if existing.SessionID == s.SessionID {
			return &domain.ConflictError{Message: "donation already recorded", ResourceType: "supporter"}
		}
	}
	m.nextID++
	s.ID = fmt.Sprintf("supporter-%d", m.nextID)
	m.supporters[s.ID] = s
	return nil
}

func (m *mockSupporterRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Supporter, error) {
	for _, s := range m.supporters {
		if s.SessionID == sessionID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("donation: %w", domain.ErrNotFound)
}

func (m *mockSupporterRepo) ListPublic(_ context.Context, _, _ int) ([]models.Supporter, error) {
	out := []models.Supporter{}
	for _, s := range m.supporters {
		if s.Public {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSupporterRepo) ListByUser(_ context.Context, userID string) ([]models.Supporter, error) {
	out := []models.Supporter{}
	for _, s := range m.supporters {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// mockProfileRepo is an in-memory ProfileRepository.
type mockProfileRepo struct {
	profiles map[string]*models.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: map[string]*models.Profile{}}
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
}

func (m *mockProfileRepo) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile %s: %w", username, domain.ErrNotFound)
}

func (m *mockProfileRepo) Upsert(_ context.Context, p *models.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileRepo) Update(_ context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	if req.Username != nil {
		p.Username = *req.Username
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}
	if req.SocialLinks != nil {
		p.SocialLinks = *req.SocialLinks
	}
	return p, nil
}

func (m *mockProfileRepo) SetSupporter(_ context.Context, id string, isSupporter bool) error {
	p, ok := m.profiles[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	p.IsSupporter = isSupporter
	return nil
}

// mockTxManager runs the function directly; transactional behavior is the
// postgres layer's concern.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}

// mockPaymentProvider returns canned checkout sessions.
type mockPaymentProvider struct {
	sessions    map[string]*payment.SessionResult
	nextID      int
	calls       []string
	lastProduct payment.ProductParams
}

func newMockPaymentProvider() *mockPaymentProvider {
	return &mockPaymentProvider{sessions: map[string]*payment.SessionResult{}}
}

func (m *mockPaymentProvider) CreateDonationSession(_ context.Context, p payment.DonationParams) (*payment.CheckoutSession, error) {
	m.calls = append(m.calls, "donation")
	m.nextID++
	id := fmt.Sprintf("cs_don_%d", m.nextID)
	m.sessions[id] = &payment.SessionResult{
		ID: id, Paid: true, AmountCents: p.AmountCents,
		UserID: p.UserID, Message: p.Message,
	}
	return &payment.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (m *mockPaymentProvider) CreateProductSession(_ context.Context, p payment.ProductParams) (*payment.CheckoutSession, error) {
	m.calls = append(m.calls, "product")
	m.lastProduct = p
	m.nextID++
	id := fmt.Sprintf("cs_buy_%d", m.nextID)
	m.sessions[id] = &payment.SessionResult{
		ID: id, Paid: true, AmountCents: p.PriceCents,
		UserID: p.BuyerID, ProductID: p.ProductID,
	}
	return &payment.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (m *mockPaymentProvider) VerifySession(_ context.Context, sessionID string) (*payment.SessionResult, error) {
	m.calls = append(m.calls, "verify")
	if r, ok := m.sessions[sessionID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("checkout session %s: %w", sessionID, domain.ErrNotFound)
}

// networkCalls counts uploader and payment calls that would hit the wire.
func networkCalls(u *mockUploader, p *mockPaymentProvider) int {
	n := len(u.calls)
	if p != nil {
		n += len(p.calls)
	}
	return n
}

// hasCall reports whether a recorded call list contains a prefix.
func hasCall(calls []string, prefix string) bool {
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
