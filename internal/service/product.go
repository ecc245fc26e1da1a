package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/store"
)

const minDescriptionLength = 10

type ProductService struct {
	repo   store.Repository
	notify *notifier
}

// Publish lists a new product on sale. Whether seller may publish at all is
// checked by the caller.
func (s *ProductService) Publish(ctx context.Context, seller domain.User, draft domain.ProductDraft) (*domain.Product, error) {
	product, err := validateDraft(draft)
	if err != nil {
		return nil, err
	}
	product.SellerID = seller.ID

	created, err := s.repo.AddProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	s.notify.publish(ctx, events.SubjectProductPublished, events.ProductPublished{
		ProductID: created.ID,
		SellerID:  created.SellerID,
		Title:     created.Title,
		Category:  created.Category,
		Price:     created.Price,
		Stock:     created.Stock,
	})
	return created, nil
}

func validateDraft(draft domain.ProductDraft) (domain.Product, error) {
	if draft.ImageCount < 1 {
		return domain.Product{}, ErrNoImages
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return domain.Product{}, ErrEmptyTitle
	}
	description := strings.TrimSpace(draft.Description)
	if utf8.RuneCountInString(description) < minDescriptionLength {
		return domain.Product{}, ErrShortDescription
	}
	if draft.Price < 0 {
		return domain.Product{}, ErrNegativePrice
	}
	if draft.Stock < 0 {
		return domain.Product{}, ErrNegativeStock
	}

	condition := domain.ConditionNew
	if raw := strings.TrimSpace(draft.Condition); raw != "" {
		parsed, err := domain.ParseConditionLevel(raw)
		if err != nil {
			return domain.Product{}, ErrInvalidCondition
		}
		condition = parsed
	}
	category := strings.TrimSpace(draft.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	return domain.Product{
		Title:       title,
		ImageCount:  draft.ImageCount,
		Category:    category,
		Condition:   condition,
		Price:       draft.Price,
		Stock:       draft.Stock,
		Description: description,
		Contact:     strings.TrimSpace(draft.Contact),
	}, nil
}

func (s *ProductService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int) (*domain.Product, error) {
	return s.repo.FindProductByID(ctx, id)
}

// Search returns on-sale products matching every filter, in listing order.
// Filters apply keyword, category, condition, then price.
func (s *ProductService) Search(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	all, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))
	category := strings.TrimSpace(query.Category)
	result := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Status != domain.ProductStatusOnSale {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(p.Title), keyword) {
			continue
		}
		if !domain.IsFilterAll(category) && p.Category != category {
			continue
		}
		if !domain.MatchesCondition(query.Condition, p.Condition) {
			continue
		}
		if !domain.MatchesPrice(query.Price, p.Price) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *ProductService) Takedown(ctx context.Context, id int) error {
	return s.setStatus(ctx, id, domain.ProductStatusTakedown, "")
}

func (s *ProductService) OffShelf(ctx context.Context, id int) error {
	return s.setStatus(ctx, id, domain.ProductStatusOffShelf, "")
}

// setStatus accepts any transition, including to the current status.
func (s *ProductService) setStatus(ctx context.Context, id int, status domain.ProductStatus, reason string) error {
	if err := s.repo.UpdateProductStatus(ctx, id, status); err != nil {
		return err
	}
	s.notify.publish(ctx, events.SubjectProductStatusChanged, events.ProductStatusChanged{
		ProductID: id,
		Status:    string(status),
		Reason:    reason,
	})
	return nil
}
