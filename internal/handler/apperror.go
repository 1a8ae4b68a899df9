package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidSignature = &AppError{http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed"}
	ErrMalformedEvent   = &AppError{http.StatusBadRequest, "MALFORMED_EVENT", "Event is missing required fulfillment metadata"}

	ErrCheckoutFailed = &AppError{http.StatusInternalServerError, "CHECKOUT_FAILED", "Failed to create checkout session"}
	ErrImageGenFailed = &AppError{http.StatusInternalServerError, "IMAGE_GENERATION_FAILED", "Failed to generate image"}
	ErrCatalogFailed  = &AppError{http.StatusInternalServerError, "CATALOG_UNAVAILABLE", "Failed to fetch products"}
)
