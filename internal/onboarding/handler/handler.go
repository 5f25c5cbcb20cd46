// Package handler exposes the onboarding workflow over HTTP. Every session
// route is scoped to the authenticated user; responses return the full
// session snapshot so clients render verification states and blocking
// reasons from one payload.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scoutpay/internal/onboarding/session"
	"scoutpay/internal/profile/store"
	dErrors "scoutpay/pkg/domain-errors"
	"scoutpay/pkg/platform/httputil"
	"scoutpay/pkg/requestcontext"
)

type Handler struct {
	sessions *session.Manager
	flags    store.Store
	logger   *slog.Logger
}

func New(sessions *session.Manager, flags store.Store, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, flags: flags, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/onboarding/sessions", h.HandleCreateSession)
	r.Route("/onboarding/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGetSession)
		r.Delete("/", h.HandleAbandonSession)
		r.Put("/fields/{kind}", h.HandleFieldInput)
		r.Put("/otp", h.HandleOTPCode)
		r.Post("/otp/resend", h.HandleResendOTP)
		r.Put("/bank", h.HandleSelectBank)
		r.Put("/selections/{field}", h.HandleSelection)
		r.Put("/name", h.HandleManualName)
		r.Put("/date-of-birth", h.HandleDateOfBirth)
		r.Put("/business", h.HandleBusinessDetails)
		r.Post("/documents/cac", h.HandleAttachCAC)
		r.Post("/submit", h.HandleSubmit)
	})

	r.Get("/onboarding/options/banks", h.HandleListBanks)
	r.Get("/onboarding/options/titles", listOptions(session.Titles))
	r.Get("/onboarding/options/genders", listOptions(session.Genders))
	r.Get("/onboarding/options/marital-statuses", listOptions(session.MaritalStatuses))
	r.Get("/onboarding/options/countries", listOptions(session.Countries))

	r.Get("/wallet/flag", h.HandleWalletFlag)
}

// HandleCreateSession starts a new onboarding session for the caller.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	s, err := h.sessions.Create(ctx, userID, session.Variant(req.Variant), req.PhoneNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "create session failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

// HandleGetSession returns the current session snapshot.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleAbandonSession removes a session at the user's request.
func (h *Handler) HandleAbandonSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.Abandon(chi.URLParam(r, "id"), requestcontext.UserID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFieldInput applies the latest raw text of one identity field.
func (h *Handler) HandleFieldInput(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	kind, err := parseFieldKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[FieldInputRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.ApplyFieldInput(kind, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleOTPCode applies the latest raw OTP entry; a complete code submits
// automatically.
func (h *Handler) HandleOTPCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[OTPCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.ApplyOTPCode(req.Code); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleResendOTP re-initiates the BVN challenge with a fresh session handle.
func (h *Handler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ResendOTP(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, s.Snapshot())
}

// HandleSelectBank records the bank choice; a complete account number
// resolves immediately.
func (h *Handler) HandleSelectBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[BankSelectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.SelectBank(req.BankCode); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleSelection records a profile dropdown pick.
func (h *Handler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	field, err := parseSelectionField(chi.URLParam(r, "field"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SelectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.SetSelection(field, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleManualName records the typed full name.
func (h *Handler) HandleManualName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[NameRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.SetManualName(req.FullName); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleDateOfBirth records a manually entered birth date.
func (h *Handler) HandleDateOfBirth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[DateOfBirthRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.SetDateOfBirth(req.DateOfBirth); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleBusinessDetails records the manually supplied business fields.
func (h *Handler) HandleBusinessDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[BusinessDetailsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.SetBusinessDetails(req.CompanyName, req.IncorporationDate, req.NatureOfBusiness); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleAttachCAC attaches the uploaded CAC certificate reference.
func (h *Handler) HandleAttachCAC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CACDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := s.AttachCACDocument(req.DocumentID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// HandleSubmit performs the one-shot profile submission.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Submit(ctx); err != nil {
		h.logger.WarnContext(ctx, "submission rejected", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

// HandleListBanks returns the supported-bank directory.
func (h *Handler) HandleListBanks(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"banks": session.Banks})
}

// HandleWalletFlag reports whether the caller already has a wallet profile.
func (h *Handler) HandleWalletFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	flag, err := h.flags.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"exists": false})
			return
		}
		h.logger.ErrorContext(ctx, "wallet flag lookup failed", "error", err, "user_id", userID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "wallet flag lookup failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"exists":      true,
		"profileType": flag.ProfileType,
		"createdAt":   flag.CreatedAt,
	})
}

// session resolves the {id} route param to the caller's session, writing the
// error response itself on failure.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return s, true
}

func listOptions(values []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"options": values})
	}
}

func parseFieldKind(raw string) (session.FieldKind, error) {
	switch session.FieldKind(raw) {
	case session.FieldBVN, session.FieldNIN, session.FieldBankAccount, session.FieldBusinessRC:
		return session.FieldKind(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown field kind")
	}
}

func parseSelectionField(raw string) (session.SelectionField, error) {
	switch session.SelectionField(raw) {
	case session.SelectionTitle, session.SelectionGender, session.SelectionMaritalStatus, session.SelectionCountry:
		return session.SelectionField(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown selection field")
	}
}
