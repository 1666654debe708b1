package message

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"anonboard/internal/common"
)

// Submitter runs new text through moderation before it is stored.
type Submitter interface {
	SubmitMessage(ctx context.Context, text, category string) (*Message, error)
	SubmitReply(ctx context.Context, messageID, text string) (*Reply, error)
}

type Handler struct {
	service   Service
	submitter Submitter
	validate  *common.RequestValidator
	logger    *zap.Logger
}

func NewHandler(service Service, submitter Submitter, validate *common.RequestValidator, logger *zap.Logger) *Handler {
	return &Handler{service: service, submitter: submitter, validate: validate, logger: logger}
}

type postMessageRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type replyRequest struct {
	Text string `json:"text"`
}

type voteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=upvote downvote love"`
}

type dataResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// RegisterRoutes mounts the public message routes on r, which is expected to
// be the /api subrouter.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/messages", h.list).Methods(http.MethodGet)
	r.HandleFunc("/messages", h.post).Methods(http.MethodPost)
	r.HandleFunc("/messages/categories", h.categoriesInUse).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}/vote", h.vote).Methods(http.MethodPatch)
	r.HandleFunc("/messages/{id}/replies", h.addReply).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}/replies/{replyId}/vote", h.voteReply).Methods(http.MethodPatch)
	r.HandleFunc("/categories", h.allowedCategories).Methods(http.MethodGet)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		common.RespondError(w, h.logger, err, "Failed to fetch messages.")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, messages)
}

func (h *Handler) categoriesInUse(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		common.RespondError(w, h.logger, err, "Failed to fetch categories.")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, categories)
}

func (h *Handler) allowedCategories(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, h.logger, http.StatusOK, Categories)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	m, err := h.submitter.SubmitMessage(r.Context(), req.Text, req.Category)
	if err != nil {
		common.RespondError(w, h.logger, err, "Failed to post message. Please try again later.")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusCreated, dataResponse{Message: "Message posted successfully!", Data: m})
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := h.decodeVote(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	m, err := h.service.VoteMessage(r.Context(), mux.Vars(r)["id"], req.Vote)
	if err != nil {
		common.RespondError(w, h.logger, err, "Vote failed. Please try again later.")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, dataResponse{Message: "Vote recorded successfully!", Data: m})
}

func (h *Handler) addReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	reply, err := h.submitter.SubmitReply(r.Context(), mux.Vars(r)["id"], req.Text)
	if err != nil {
		common.RespondError(w, h.logger, err, "Failed to add reply. Please try again later.")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusCreated, reply)
}

func (h *Handler) voteReply(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := h.decodeVote(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	vars := mux.Vars(r)
	reply, err := h.service.VoteReply(r.Context(), vars["id"], vars["replyId"], req.Vote)
	if err != nil {
		common.RespondError(w, h.logger, err, "Failed to process vote. Please try again later.")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, reply)
}

func (h *Handler) decodeVote(w http.ResponseWriter, r *http.Request, req *voteRequest) error {
	if err := common.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if err := h.validate.ValidateStruct(req); err != nil {
		return common.NewError(common.ErrInvalidInput, "Invalid vote type. Use 'upvote', 'downvote' or 'love'.")
	}
	return nil
}
