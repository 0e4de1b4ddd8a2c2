package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"users-api/internal/httputil"
	"users-api/internal/logging"
)

// Store is the persistence surface the HTTP handlers depend on.
// *Repository implements it.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]UserView, error)
	GetByID(ctx context.Context, id int64) (*UserView, error)
	Update(ctx context.Context, id int64, req UpdateUserRequest) (*UserView, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]UserView, error)
}

// Handler contains HTTP handlers for the /users endpoints.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List handles listing users with optional filters and sorting
// @Summary      List users
// @Description  List all users, optionally filtered by username or activity and sorted by an allow-listed field
// @Tags         users
// @Produce      json
// @Param        filter_username query string false "Case-insensitive username equality filter"
// @Param        filter_active   query bool   false "Filter by is_active"
// @Param        sort_by         query string false "Sort field: username, email, is_active, is_superuser, is_verified"
// @Success      200 {array}  UserView
// @Failure      400 {object} httputil.ErrorResponse "Invalid sort field or filter_active value"
// @Failure      500 {object} httputil.ErrorResponse "Query error"
// @Router       /users/ [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filter := ListFilter{
		Username: r.URL.Query().Get("filter_username"),
		SortBy:   r.URL.Query().Get("sort_by"),
	}

	if raw := r.URL.Query().Get("filter_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondErrorWithCode(w, "filter_active must be a boolean", httputil.CodeInvalidQueryParam, http.StatusBadRequest)
			return
		}
		filter.Active = &active
	}

	users, err := h.store.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, ErrInvalidSortField) {
			logger.Warn("list users rejected", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidSortField, http.StatusBadRequest)
			return
		}
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}

// GetByID handles fetching a single user
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} UserView
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id}/ [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "id must be an integer", httputil.CodeInvalidQueryParam, http.StatusBadRequest)
		return
	}

	view, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Info("user not found", "user_id", id)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, view, http.StatusOK)
}

// Me handles fetching the authenticated user's own record
// @Summary      Get current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserView
// @Failure      404 {object} httputil.ErrorResponse "Requester row absent"
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	requesterID, ok := RequesterIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	view, err := h.store.GetByID(r.Context(), requesterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The authenticated identity may be stale: the row can have
			// been deleted after the token was issued.
			logger.Info("requester row absent", "user_id", requesterID)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get current user", "user_id", requesterID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, view, http.StatusOK)
}

// UpdateMe handles updating the authenticated user's profile
// @Summary      Update current user
// @Description  Update the requester's email, username, avatar, phone_number, is_active and is_verified. is_superuser and the password cannot be changed here.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateUserRequest true "Profile fields"
// @Success      200 {object} UserView
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Router       /users/me [put]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	requesterID, ok := RequesterIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		logger.Warn("profile update rejected", "user_id", requesterID, "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	view, err := h.store.Update(r.Context(), requesterID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update user", "user_id", requesterID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user profile updated", "user_id", requesterID)
	httputil.RespondJSON(w, view, http.StatusOK)
}

// DeleteMe handles deleting the authenticated user's own record
// @Summary      Delete current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.MessageResponse
// @Router       /users/me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	requesterID, ok := RequesterIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	// Deleting one's own record needs no authorization check and no
	// existence check: a missing row is indistinguishable from success.
	if err := h.store.Delete(r.Context(), requesterID); err != nil {
		logger.Error("failed to delete current user", "user_id", requesterID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user deleted own account", "user_id", requesterID)
	httputil.RespondJSON(w, httputil.MessageResponse{Message: "User deleted"}, http.StatusOK)
}

// DeleteByID handles deleting a user by ID, gated by the self-or-superuser check
// @Summary      Delete user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} httputil.MessageResponse
// @Failure      403 {object} httputil.ErrorResponse "Not allowed to delete this user"
// @Router       /users/{id} [delete]
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	requesterID, ok := RequesterIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "id must be an integer", httputil.CodeInvalidQueryParam, http.StatusBadRequest)
		return
	}

	requester, err := h.store.GetByID(r.Context(), requesterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "requester no longer exists", httputil.CodeInvalidTokenUserID, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to resolve requester", "user_id", requesterID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if !CanDelete(requester, targetID) {
		logger.Info("delete denied", "user_id", requesterID, "target_id", targetID)
		httputil.RespondErrorWithCode(w, "You don't have the rights to do this.", httputil.CodeForbidden, http.StatusForbidden)
		return
	}

	if err := h.store.Delete(r.Context(), targetID); err != nil {
		logger.Error("failed to delete user", "target_id", targetID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user deleted", "user_id", requesterID, "target_id", targetID)
	httputil.RespondJSON(w, httputil.MessageResponse{Message: "User deleted"}, http.StatusOK)
}

// Search handles username substring search
// @Summary      Search users by username
// @Description  Case-sensitive substring match on username. Unlike the listing endpoint, an empty result is a 404.
// @Tags         users
// @Produce      json
// @Param        search_query query string true "Search query"
// @Success      200 {array}  UserView
// @Failure      404 {object} httputil.ErrorResponse "No matching user"
// @Router       /users/search_user [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	query := r.URL.Query().Get("search_query")
	if query == "" {
		httputil.RespondErrorWithCode(w, "search_query is required", httputil.CodeInvalidQueryParam, http.StatusBadRequest)
		return
	}

	users, err := h.store.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Info("search found no users", "search_query", query)
			httputil.RespondErrorWithCode(w, "There is no user with this name in the database.", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to search users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}
