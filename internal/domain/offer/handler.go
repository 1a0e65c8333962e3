package offer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillswap/skillswap-api/internal/domain/settlement"
	"github.com/skillswap/skillswap-api/internal/domain/skill"
	"github.com/skillswap/skillswap-api/internal/domain/skillcoin"
	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
	"github.com/skillswap/skillswap-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /offers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateOfferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	o, err := h.svc.Propose(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, ToResponse(o))
}

// Get handles GET /offers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.Get(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(o))
}

// List handles GET /offers?role=sent|received|all&status=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = "all"
	}
	status := Status(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	offers, err := h.svc.List(r.Context(), userID, role, status, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"offers": ToResponseList(offers)})
}

// History handles GET /offers/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	offers, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"offers": ToResponseList(offers)})
}

// PendingConfirmations handles GET /offers/pending-confirmations
func (h *Handler) PendingConfirmations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	offers, err := h.svc.PendingConfirmation(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"offers": ToResponseList(offers)})
}

// Accept handles POST /offers/{id}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.Accept(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(o))
}

// Reject handles POST /offers/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	var req ReasonRequest
	response.DecodeJSON(r.Body, &req) // body is optional

	o, err := h.svc.Reject(r.Context(), offerID, userID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(o))
}

// Cancel handles POST /offers/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	var req ReasonRequest
	response.DecodeJSON(r.Body, &req)

	o, err := h.svc.Cancel(r.Context(), offerID, userID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(o))
}

// Begin handles POST /offers/{id}/begin
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.Begin(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(o))
}

// MarkComplete handles POST /offers/{id}/complete
func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	outcome, err := h.svc.MarkComplete(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, h.outcomeBody(outcome))
}

// Confirm handles POST /offers/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	var req ConfirmRequest
	response.DecodeJSON(r.Body, &req)

	outcome, err := h.svc.Confirm(r.Context(), offerID, userID, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, h.outcomeBody(outcome))
}

// Settle handles POST /offers/{id}/settle, retrying a deferred settlement
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.RetrySettlement(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"settlement": res})
}

// Confirmations handles GET /offers/{id}/confirmations
func (h *Handler) Confirmations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	records, err := h.svc.Confirmations(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"confirmations": records})
}

// Logs handles GET /offers/{id}/logs
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	logs, err := h.svc.Logs(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"logs": logs})
}

// UploadProof handles POST /offers/{id}/proof
func (h *Handler) UploadProof(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	var req ProofRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.svc.UploadProof(r.Context(), offerID, userID, req.Data, req.Kind); err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"uploaded": true})
}

// GetProof handles GET /offers/{id}/proof
func (h *Handler) GetProof(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	data, kind, err := h.svc.GetProof(r.Context(), offerID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"data": data, "kind": kind})
}

// Delete handles DELETE /offers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	offerID, ok := h.offerID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), offerID, userID); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) offerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid offer id")
		return 0, false
	}
	return id, true
}

func (h *Handler) outcomeBody(outcome *Outcome) map[string]interface{} {
	body := map[string]interface{}{
		"offer":          ToResponse(outcome.Offer),
		"both_confirmed": outcome.BothConfirmed,
	}
	if outcome.Settlement != nil {
		body["settlement"] = outcome.Settlement
	}
	if outcome.InsufficientBalance {
		body["insufficient_balance"] = true
	}
	return body
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOfferNotFound), errors.Is(err, settlement.ErrOfferNotFound):
		response.NotFound(w, "offer not found")
	case errors.Is(err, ErrNotAParticipant):
		response.Forbidden(w, "you are not a participant of this offer")
	case errors.Is(err, ErrNotCounterparty):
		response.Forbidden(w, "only the counterparty can perform this action")
	case errors.Is(err, ErrNotInitiator):
		response.Forbidden(w, "only the initiator can cancel a pending offer")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrSameParties):
		response.BadRequest(w, "cannot create an offer with yourself")
	case errors.Is(err, ErrCounterpartyNotFound):
		response.NotFound(w, "counterparty account not found")
	case errors.Is(err, ErrMissingOfferedSkill):
		response.BadRequest(w, "barter offers require an offered skill")
	case errors.Is(err, ErrInvalidProof):
		response.BadRequest(w, "proof payload is not valid base64")
	case errors.Is(err, ErrProofTooLarge):
		response.BadRequest(w, "proof file exceeds the 5MB limit")
	case errors.Is(err, ErrProofNotFound):
		response.NotFound(w, "no proof attached to this offer")
	case errors.Is(err, ErrNotDeletable):
		response.Conflict(w, "only rejected or cancelled offers can be deleted")
	case errors.Is(err, skill.ErrSkillNotFound):
		response.NotFound(w, "skill not found")
	case errors.Is(err, skillcoin.ErrInsufficientBalance):
		response.Conflict(w, "payer balance cannot cover the settlement")
	case errors.Is(err, settlement.ErrAlreadySettled):
		response.Conflict(w, "offer is already settled")
	case errors.Is(err, settlement.ErrNotConfirmed):
		response.Conflict(w, "both parties must confirm before settlement")
	case errors.Is(err, settlement.ErrNotSettleable):
		response.Conflict(w, "offer is not ready for settlement")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/history", h.History)
	r.Get("/pending-confirmations", h.PendingConfirmations)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/accept", h.Accept)
		r.Post("/reject", h.Reject)
		r.Post("/cancel", h.Cancel)
		r.Post("/begin", h.Begin)
		r.Post("/complete", h.MarkComplete)
		r.Post("/confirm", h.Confirm)
		r.Post("/settle", h.Settle)
		r.Get("/confirmations", h.Confirmations)
		r.Get("/logs", h.Logs)
		r.Post("/proof", h.UploadProof)
		r.Get("/proof", h.GetProof)
	})

	return r
}
