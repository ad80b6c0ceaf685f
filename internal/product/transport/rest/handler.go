// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/productcatalog/internal/platform/web"
	producterrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/abgdnv/productcatalog/internal/product/query"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/go-chi/chi/v5"
)

const notFoundMessage = "404 not found"

// Counter reports how many products are stored.
type Counter interface {
	Len() int
}

type Handler struct {
	service      service.ProductService
	counter      Counter
	defaultLimit int
	started      time.Time
	logger       *slog.Logger
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Products int    `json:"products"`
}

// NewHandler creates a new Handler. defaultLimit is the page size used when a request sends none.
func NewHandler(service service.ProductService, counter Counter, defaultLimit int, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		counter:      counter,
		defaultLimit: defaultLimit,
		started:      time.Now(),
		logger:       logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Patch("/", h.Patch)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := r.PathValue("id")

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, "retrieve", err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves the filtered page of products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	params := query.ParseValues(r.URL.Query(), h.defaultLimit)

	mLogger.DebugContext(r.Context(), "Received request to find all products",
		"text", params.Text, "category", params.Category, "hasDelivery", params.HasDelivery,
		"limit", params.Limit, "offset", params.Offset)
	list, err := h.service.FindAll(r.Context(), params)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if err := web.DecodeJSON(r, &productCreateDto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		if respondValidationError(w, r, mLogger, err) {
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update replaces a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := r.PathValue("id")
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)

	var productUpdateDto service.ProductUpdateDto
	if err := web.DecodeJSON(r, &productUpdateDto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, productUpdateDto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, "update", err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Patch updates the supplied fields of a product.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := r.PathValue("id")
	mLogger.DebugContext(r.Context(), "Received request to patch product", "ID", id)

	var productPatchDto service.ProductPatchDto
	if err := web.DecodeJSON(r, &productPatchDto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	patched, err := h.service.Patch(r.Context(), id, productPatchDto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, "patch", err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product patched successfully", "ID", patched.ID, "Name", patched.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, patched)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := r.PathValue("id")

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	result, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, "delete", err)
		return
	}
	mLogger.InfoContext(r.Context(), result.Message, "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck reports liveness together with the uptime and the number of stored products.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, HealthResponse{
		Status:   "OK",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Products: h.counter.Len(),
	})
}

// NotFound answers every unmatched route and method.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "No route matched", "method", r.Method, "path", r.URL.Path)
	web.RespondError(w, mLogger, http.StatusNotFound, notFoundMessage)
}

// respondServiceError maps the errors of an operation on a single product.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id, action string, err error) {
	if errors.Is(err, producterrors.ErrProductNotFound) {
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id, "action", action)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		return
	}
	if respondValidationError(w, r, mLogger, err) {
		return
	}
	mLogger.ErrorContext(r.Context(), "Error processing product", "ID", id, "action", action, "error", err)
	web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product with ID %s", action, id))
}

// respondValidationError writes a 400 and reports true when err is a validation failure.
func respondValidationError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) bool {
	var validationErr *producterrors.ValidationError
	if errors.As(err, &validationErr) {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, web.ErrorResponse{
			Error:            "Validation failed",
			ValidationErrors: validationErr.Fields,
		})
		return true
	}
	if errors.Is(err, producterrors.ErrValidation) {
		mLogger.WarnContext(r.Context(), "Validation error", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Validation failed")
		return true
	}
	return false
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
