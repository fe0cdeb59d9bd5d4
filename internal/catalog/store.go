package catalog

import (
	"context"
	"slices"
	"time"
)

// Product is a sellable catalog item. Price and SalePrice are decimal strings.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         string   `json:"price"`
	SalePrice     *string  `json:"salePrice"`
	Category      string   `json:"category"`
	ImageURL      string   `json:"imageUrl"`
	HoverImageURL *string  `json:"hoverImageUrl"`
	IsOnSale      bool     `json:"isOnSale"`
	IsFeatured    bool     `json:"isFeatured"`
	Tags          []string `json:"tags"`
}

// Review belongs to a product by ProductID. The reference is not enforced by stores.
type Review struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	CustomerName string    `json:"customerName"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Date         time.Time `json:"date"`
}

type BeforeAfter struct {
	ID             string `json:"id"`
	ProductID      string `json:"productId"`
	BeforeImageURL string `json:"beforeImageUrl"`
	AfterImageURL  string `json:"afterImageUrl"`
	BeforeLabel    string `json:"beforeLabel"`
	AfterLabel     string `json:"afterLabel"`
}

type NewProduct struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Price         string   `json:"price" validate:"required,money"`
	SalePrice     *string  `json:"salePrice" validate:"omitempty,money"`
	Category      string   `json:"category" validate:"required,max=50"`
	ImageURL      string   `json:"imageUrl" validate:"required,url"`
	HoverImageURL *string  `json:"hoverImageUrl" validate:"omitempty,url"`
	IsOnSale      bool     `json:"isOnSale"`
	IsFeatured    bool     `json:"isFeatured"`
	Tags          []string `json:"tags" validate:"dive,required"`
}

type NewReview struct {
	ProductID    string `json:"productId" validate:"required"`
	CustomerName string `json:"customerName" validate:"required"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Title        string `json:"title" validate:"required"`
	Content      string `json:"content" validate:"required"`
}

type NewBeforeAfter struct {
	ProductID      string `json:"productId" validate:"required"`
	BeforeImageURL string `json:"beforeImageUrl" validate:"required,url"`
	AfterImageURL  string `json:"afterImageUrl" validate:"required,url"`
	BeforeLabel    string `json:"beforeLabel" validate:"required"`
	AfterLabel     string `json:"afterLabel" validate:"required"`
}

// Store owns the three collections. Point lookups report absence through the
// bool result; errors are reserved for backend faults.
type Store interface {
	Ping(ctx context.Context) error

	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, bool, error)
	ListFeaturedProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]Product, error)
	CreateProduct(ctx context.Context, in NewProduct) (Product, error)

	ListReviews(ctx context.Context) ([]Review, error)
	ListReviewsForProduct(ctx context.Context, productID string) ([]Review, error)
	CreateReview(ctx context.Context, in NewReview) (Review, error)

	ListBeforeAfter(ctx context.Context) ([]BeforeAfter, error)
	ListBeforeAfterForProduct(ctx context.Context, productID string) ([]BeforeAfter, error)
	CreateBeforeAfter(ctx context.Context, in NewBeforeAfter) (BeforeAfter, error)
}

func (in NewProduct) withID(id string) Product {
	return Product{
		ID:            id,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		SalePrice:     cloneString(in.SalePrice),
		Category:      in.Category,
		ImageURL:      in.ImageURL,
		HoverImageURL: cloneString(in.HoverImageURL),
		IsOnSale:      in.IsOnSale,
		IsFeatured:    in.IsFeatured,
		Tags:          slices.Clone(in.Tags),
	}
}

func (in NewReview) withID(id string, date time.Time) Review {
	return Review{
		ID:           id,
		ProductID:    in.ProductID,
		CustomerName: in.CustomerName,
		Rating:       in.Rating,
		Title:        in.Title,
		Content:      in.Content,
		Date:         date,
	}
}

func (in NewBeforeAfter) withID(id string) BeforeAfter {
	return BeforeAfter{
		ID:             id,
		ProductID:      in.ProductID,
		BeforeImageURL: in.BeforeImageURL,
		AfterImageURL:  in.AfterImageURL,
		BeforeLabel:    in.BeforeLabel,
		AfterLabel:     in.AfterLabel,
	}
}

// clone returns a deep copy so callers cannot write through to stored state.
func (p Product) clone() Product {
	p.SalePrice = cloneString(p.SalePrice)
	p.HoverImageURL = cloneString(p.HoverImageURL)
	p.Tags = slices.Clone(p.Tags)
	return p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func sortReviewsNewestFirst(rs []Review) {
	slices.SortStableFunc(rs, func(a, b Review) int {
		return b.Date.Compare(a.Date)
	})
}
