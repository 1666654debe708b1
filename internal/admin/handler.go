package admin

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"anonboard/internal/common"
)

type Handler struct {
	service  Service
	validate *common.RequestValidator
	logger   *zap.Logger
}

func NewHandler(service Service, validate *common.RequestValidator, logger *zap.Logger) *Handler {
	return &Handler{service: service, validate: validate, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createAdminRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required"`
}

// Absent fields are left unchanged.
type updateAdminRequest struct {
	Username *string `json:"username" validate:"omitempty,username"`
	Password *string `json:"password"`
}

type loginResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Summary `json:"user"`
}

type accountResponse struct {
	Message string  `json:"message"`
	User    Summary `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RegisterRoutes mounts the console on r, expected to be the /api/admin
// subrouter. Everything except login sits behind Guard.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)

	guarded := r.NewRoute().Subrouter()
	guarded.Use(Guard(h.service, h.logger))
	guarded.HandleFunc("/verify", h.verify).Methods(http.MethodGet)
	guarded.HandleFunc("/dashboard", h.dashboard).Methods(http.MethodGet)
	guarded.HandleFunc("/messages", h.listMessages).Methods(http.MethodGet)
	guarded.HandleFunc("/message/{id}", h.deleteMessage).Methods(http.MethodDelete)
	guarded.HandleFunc("/admins", h.createAdmin).Methods(http.MethodPost)
	guarded.HandleFunc("/admins", h.listAdmins).Methods(http.MethodGet)
	guarded.HandleFunc("/admins/{id}", h.updateAdmin).Methods(http.MethodPut)
	guarded.HandleFunc("/admins/{id}", h.deleteAdmin).Methods(http.MethodDelete)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}
	if err := h.validate.ValidateStruct(&req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	token, account, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondError(w, h.logger, err, "Server error during login")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    account.Summary(),
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	admin, _ := common.AdminFromContext(r.Context())
	common.RespondJSON(w, h.logger, http.StatusOK, struct {
		Valid bool                 `json:"valid"`
		Admin common.AdminIdentity `json:"admin"`
	}{Valid: true, Admin: admin})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	admin, _ := common.AdminFromContext(r.Context())
	common.RespondJSON(w, h.logger, http.StatusOK, struct {
		Message string               `json:"message"`
		Admin   common.AdminIdentity `json:"admin"`
	}{Message: "Welcome to the Admin Dashboard", Admin: admin})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListMessages(r.Context())
	if err != nil {
		common.RespondError(w, h.logger, err, "Error fetching messages")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, messages)
}

func (h *Handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMessage(r.Context(), mux.Vars(r)["id"]); err != nil {
		common.RespondError(w, h.logger, err, "Error deleting message")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, messageResponse{Message: "Message deleted successfully"})
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}
	if req.Username == "" || req.Password == "" {
		common.RespondError(w, h.logger, common.NewError(common.ErrInvalidInput, "All fields are required"), "")
		return
	}
	if err := h.validate.ValidateStruct(&req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	account, err := h.service.CreateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondError(w, h.logger, err, "Error creating admin")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusCreated, accountResponse{
		Message: "Admin user created successfully",
		User:    account.Summary(),
	})
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		common.RespondError(w, h.logger, err, "Error fetching admins")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, admins)
}

func (h *Handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	var req updateAdminRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}
	req.Username = nonEmpty(req.Username)
	req.Password = nonEmpty(req.Password)
	if err := h.validate.ValidateStruct(&req); err != nil {
		common.RespondError(w, h.logger, err, "")
		return
	}

	account, err := h.service.UpdateAdmin(r.Context(), mux.Vars(r)["id"], req.Username, req.Password)
	if err != nil {
		common.RespondError(w, h.logger, err, "Error updating admin")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, accountResponse{
		Message: "Admin updated successfully",
		User:    account.Summary(),
	})
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	caller, _ := common.AdminFromContext(r.Context())
	if err := h.service.DeleteAdmin(r.Context(), caller.UserID, mux.Vars(r)["id"]); err != nil {
		common.RespondError(w, h.logger, err, "Error deleting admin")
		return
	}
	common.RespondJSON(w, h.logger, http.StatusOK, messageResponse{Message: "Admin deleted successfully"})
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
