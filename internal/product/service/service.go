// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/abgdnv/productcatalog/internal/platform/messaging"
	producterrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/abgdnv/productcatalog/internal/product/events"
	"github.com/abgdnv/productcatalog/internal/product/query"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// FindAll returns the filtered page of products described by params.
	// Returns an empty slice if nothing matches.
	FindAll(ctx context.Context, params query.Params) ([]ProductDto, error)

	// Create adds a new product to the system.
	// Returns a ValidationError if required fields are missing.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces every field of an existing product except its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error)

	// Patch overwrites only the supplied fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Patch(ctx context.Context, id string, patch ProductPatchDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) (*DeleteResult, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	validate   *validator.Validate
	newID      func() uuid.UUID
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the publisher for product lifecycle events.
func WithPublisher(p messaging.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets the logger used for failures that do not fail the operation.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l.With("component", "service")
	}
}

// WithIDGenerator overrides the product ID generator.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore, opts ...Option) *Service {
	s := &Service{
		repository: repo,
		publisher:  messaging.NoopPublisher{},
		validate:   newValidator(),
		newID:      uuid.New,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Stock is a pointer so that an explicit 0 passes the required rule.
type ProductCreateDto struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	HasDelivery bool   `json:"hasDelivery"`
	Stock       *int   `json:"stock"       validate:"required,min=0"`
}

// ProductUpdateDto represents a full replacement of a product. Omitted fields become zero values.
type ProductUpdateDto struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	HasDelivery bool   `json:"hasDelivery"`
	Stock       int    `json:"stock"       validate:"min=0"`
}

// ProductPatchDto represents a partial update. Nil fields are left untouched.
type ProductPatchDto struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	HasDelivery *bool   `json:"hasDelivery"`
	Stock       *int    `json:"stock"       validate:"omitempty,min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	HasDelivery bool   `json:"hasDelivery"`
	Stock       int    `json:"stock"`
}

// DeleteResult confirms a deletion. It is informational only.
type DeleteResult struct {
	Message string `json:"message"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.repository.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll filters and paginates the product list and returns the page as ProductDTOs.
func (s *Service) FindAll(ctx context.Context, params query.Params) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	page := query.Apply(products, params)

	productDTOs := make([]ProductDto, len(page))
	for i, item := range page {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create validates the input, assigns a fresh random ID and appends the product.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := s.validateStruct(product); err != nil {
		return nil, err
	}

	p, err := s.repository.Insert(ctx, store.Product{
		ID:          s.newID(),
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		HasDelivery: product.HasDelivery,
		Stock:       *product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	dto := toDto(p)
	s.publish(ctx, events.NewProductCreated(dto.ID, dto.Name, dto.Category, dto.HasDelivery, dto.Stock))
	return dto, nil
}

// Update rebuilds the product from the supplied fields, keeping only its ID.
func (s *Service) Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	// an unknown id is reported before any complaint about the body
	if _, err := s.repository.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	if err := s.validateStruct(product); err != nil {
		return nil, err
	}

	updated, err := s.repository.Replace(ctx, productID, store.Product{
		ID:          productID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		HasDelivery: product.HasDelivery,
		Stock:       product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	dto := toDto(updated)
	s.publish(ctx, events.NewProductUpdated(dto.ID, dto.Name, dto.Category, dto.HasDelivery, dto.Stock))
	return dto, nil
}

// Patch merges the supplied fields into the existing product.
func (s *Service) Patch(ctx context.Context, id string, patch ProductPatchDto) (*ProductDto, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	// an unknown id is reported before any complaint about the body
	if _, err := s.repository.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to patch product with ID %s: %w", id, err)
	}
	if err := s.validateStruct(patch); err != nil {
		return nil, err
	}

	patched, err := s.repository.Modify(ctx, productID, func(p *store.Product) {
		applyPatch(p, patch)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to patch product with ID %s: %w", id, err)
	}

	dto := toDto(patched)
	s.publish(ctx, events.NewProductUpdated(dto.ID, dto.Name, dto.Category, dto.HasDelivery, dto.Stock))
	return dto, nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id string) (*DeleteResult, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	// the name is captured before removal, the record is gone afterwards
	product, err := s.repository.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	if err := s.repository.DeleteByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.NewProductDeleted(productID.String()))
	return &DeleteResult{Message: fmt.Sprintf("Product %s deleted successfully", product.Name)}, nil
}

// applyPatch overwrites the fields present in patch. Unknown body fields never reach here.
func applyPatch(p *store.Product, patch ProductPatchDto) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.HasDelivery != nil {
		p.HasDelivery = *patch.HasDelivery
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
}

// publish sends an event; a failure is logged because the mutation has already happened.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		return &producterrors.ValidationError{Fields: fields}
	}
	return fmt.Errorf("%w: %v", producterrors.ErrValidation, err)
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseID converts a raw ID; anything that is not a UUID cannot match a product.
func parseID(id string) (uuid.UUID, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse product ID %q: %w", id, producterrors.ErrProductNotFound)
	}
	return productID, nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		HasDelivery: product.HasDelivery,
		Stock:       product.Stock,
	}
}
