package story

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"anonboard/internal/common"
)

// multipartOverhead leaves room for the text field and part headers.
const multipartOverhead = 1 << 20

type Handler struct {
	service       Service
	validate      *common.RequestValidator
	maxImageBytes int64
	logger        *zap.Logger
}

func NewHandler(service Service, validate *common.RequestValidator, maxImageBytes int64, logger *zap.Logger) *Handler {
	return &Handler{service: service, validate: validate, maxImageBytes: maxImageBytes, logger: logger}
}

type reactionRequest struct {
	StoryID      string `json:"storyId" validate:"required"`
	ReactionType string `json:"reactionType" validate:"required"`
}

type storyResponse struct {
	Message string `json:"message"`
	Data    *Story `json:"data,omitempty"`
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/stories/upload", h.upload).Methods(http.MethodPost)
	r.HandleFunc("/stories/all", h.list).Methods(http.MethodGet)
	r.HandleFunc("/stories/reaction", h.react).Methods(http.MethodPost)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(w, h.logger, common.NewError(common.ErrInvalidInput, "Image is too large"), "")
			return
		}
		common.RespondError(w, h.logger, common.NewError(common.ErrInvalidInput, "Invalid multipart form"), "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var image []byte
	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		common.RespondError(w, h.logger, common.NewError(common.ErrInvalidInput, "Invalid image upload"), "")
		return
	default:
		defer file.Close()
		image, err = io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
		if err != nil {
			common.RespondError(w, h.logger, err, "Error uploading story")
			return
		}
	}

	story, err := h.service.Upload(r.Context(), r.FormValue("text"), image)
	if err != nil {
		common.RespondError(w, h.logger, err, "Error uploading story")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, storyResponse{Message: "Story uploaded successfully!", Data: story})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	stories, err := h.service.List(r.Context())
	if err != nil {
		common.RespondError(w, h.logger, err, "Error fetching stories")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, stories)
}

func (h *Handler) react(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}
	if err := h.validate.ValidateStruct(&req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	story, err := h.service.React(r.Context(), req.StoryID, req.ReactionType)
	if err != nil {
		common.RespondError(w, h.logger, err, "Error adding reaction")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, storyResponse{Message: "Reaction added successfully!", Data: story})
}
