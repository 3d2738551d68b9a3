package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/response"
)

// Handler handles HTTP requests for user operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Register)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	return r
}

// Register handles POST /users
// @Summary      Register a user
// @Description  Creates the user row for a provider-issued identity and promotes pending invitations into memberships
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterUserRequest true "Registration payload"
// @Success      201 {object} response.APIResponse{data=RegisterResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, groupIDs, err := h.service.Register(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	joined := make([]string, len(groupIDs))
	for i, id := range groupIDs {
		joined[i] = id.String()
	}

	response.JSON(w, http.StatusCreated, &RegisterResponse{
		User:         u.ToResponse(),
		GroupsJoined: joined,
	})
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, u.ToResponse())
}

// List handles GET /users
// @Summary      List users
// @Description  Lists users, or resolves a single user when the email query parameter is set
// @Tags         users
// @Produce      json
// @Param        email query string false "Filter by email"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		u, err := h.service.GetByEmail(r.Context(), email)
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, []*UserResponse{u.ToResponse()})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	users, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*UserResponse, len(users))
	for i, u := range users {
		resp[i] = u.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	response.JSONWithMeta(w, http.StatusOK, resp, meta)
}
