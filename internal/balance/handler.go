package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/middleware"
	"github.com/whopaid/whopaid/pkg/response"
)

// Handler handles HTTP requests for balance queries.
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/group/{groupId}", h.NetBalances)
	r.Get("/group/{groupId}/participants/{participantId}/settlements", h.Settlements)

	return r
}

// NetBalances handles GET /balances/group/{groupId}
// @Summary      Group net balances
// @Description  Returns each participant's net balance (total paid minus total owed)
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]NetBalanceResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) NetBalances(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	nets, err := h.service.NetBalances(r.Context(), callerID, groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*NetBalanceResponse, len(nets))
	for i := range nets {
		resp[i] = nets[i].ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// Settlements handles GET /balances/group/{groupId}/participants/{participantId}/settlements
// @Summary      Who-owes-whom settlements
// @Description  Resolves which counterparties the participant owes or is owed by
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        participantId path string true "Participant ID"
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId}/participants/{participantId}/settlements [get]
func (h *Handler) Settlements(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantId"))
	if err != nil {
		response.BadRequest(w, "Invalid participant ID")
		return
	}

	settlements, err := h.service.Settlements(r.Context(), callerID, groupID, participantID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*SettlementResponse, len(settlements))
	for i := range settlements {
		resp[i] = settlements[i].ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}
