package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/printloom/printloom-backend/internal/logging"
)

type imageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ImageHandler struct {
	generator imageGenerator
}

func NewImageHandler(generator imageGenerator) *ImageHandler {
	return &ImageHandler{generator: generator}
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.Prompt == "" {
		RespondValidationError(w, []FieldError{{Field: "prompt", Message: "required"}})
		return
	}

	imageURL, err := h.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		log.Error("image generation failed", "error", err)
		RespondAppError(w, ErrImageGenFailed, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}
