// Package api exposes the transfer engine and the scheduler over JSON/HTTP.
// Authentication happens upstream; the gateway forwards the caller's user id
// in the X-User-ID header.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/utils"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderUserID         = "X-User-ID"

	maxBodyBytes = 1 << 20
)

type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewRouter wires the routes onto a chi router.
func NewRouter(svc *service.Service, logger *zap.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger.Named("api")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/transfers", h.createTransfer)
		r.Post("/sweeps", h.runSweep)
		r.Get("/accounts/{number}", h.getAccount)
		r.Post("/instructions/{instructionID}/{action}", h.changeInstruction)
	})

	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	if key == "" {
		badRequest(w, HeaderIdempotencyKey+" header is required")
		return
	}

	var req transferRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	rail, err := model.ParseRail(req.Rail)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.svc.Transfer.Execute(r.Context(), service.TransferRequest{
		SourceAccountID:  req.SourceAccountID,
		Amount:           req.Amount,
		Rail:             rail,
		Destination:      req.Destination,
		CounterpartyName: req.CounterpartyName,
		Note:             req.Note,
		IdempotencyKey:   key,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, newTransferResponse(res))
}

func (h *Handler) runSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	var asOf time.Time
	if req.AsOf != "" {
		d, err := utils.ParseDate(req.AsOf)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		asOf = d
	}

	report, err := h.svc.Scheduler.RunDueInstructionSweep(r.Context(), service.SweepRequest{
		AsOf:   asOf,
		UserID: req.UserID,
	})
	if report == nil {
		h.writeError(w, r, err)
		return
	}
	if err != nil {
		// interrupted sweeps still report what they managed
		h.logger.Warn("sweep interrupted", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, newSweepResponse(report))
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Account.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(acc))
}

func (h *Handler) changeInstruction(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Code:    "MISSING_USER",
			Title:   http.StatusText(http.StatusUnauthorized),
			Message: HeaderUserID + " header is required",
		})
		return
	}

	id := chi.URLParam(r, "instructionID")
	var si *model.StandingInstruction
	switch chi.URLParam(r, "action") {
	case "pause":
		si, err = h.svc.Instruction.Pause(r.Context(), userID, id)
	case "resume":
		si, err = h.svc.Instruction.Resume(r.Context(), userID, id)
	case "cancel":
		si, err = h.svc.Instruction.Cancel(r.Context(), userID, id)
	default:
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Code:    "UNKNOWN_ACTION",
			Title:   http.StatusText(http.StatusNotFound),
			Message: "action must be pause, resume or cancel",
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInstructionResponse(si))
}

// decode reads a JSON body. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}
