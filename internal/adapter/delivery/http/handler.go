package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/entity"
	"github.com/vadimbarashkov/expiring-url-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, response.RouteNotFoundResponse)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusMethodNotAllowed, response.MethodNotAllowedResponse)
}

// writeJSON renders resp with the request id attached to error envelopes.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp response.Response) {
	if resp.Status == response.StatusError {
		resp = resp.WithRequestID(middleware.GetReqID(r.Context()))
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, in entity.ShortenInput) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error)
	DeactivateURL(ctx context.Context, shortCode string) error
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// handleError logs the failure on the request log entry and writes the
// response mapped from its kind.
func (h *urlHandler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	httplog.LogEntrySetField(r.Context(), "op", slog.StringValue(op))
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	status, resp := errorResponseFor(err)
	writeJSON(w, r, status, resp)
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.shortenURL"

	var req urlRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSON(w, r, http.StatusBadRequest, response.EmptyRequestBodyResponse)
			return
		}

		writeJSON(w, r, http.StatusBadRequest, response.InvalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, response.ValidationErrorResponse(codeMissingURL, "URL is required.", err))
		return
	}

	in, ok := req.toShortenInput()
	if !ok {
		writeJSON(w, r, http.StatusBadRequest, invalidValidityResponse)
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), in)
	if err != nil {
		h.handleError(w, r, op, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, response.SuccessResponse(
		"Short URL created successfully.",
		toShortenResponse(url, h.baseURL),
	))
}

func (h *urlHandler) resolveShortCode(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.resolveShortCode"

	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		writeJSON(w, r, http.StatusBadRequest, missingShortCodeResponse)
		return
	}

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		h.handleError(w, r, op, err)
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.getURLStats"

	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		writeJSON(w, r, http.StatusBadRequest, missingShortCodeResponse)
		return
	}

	url, err := h.useCase.GetURLStats(r.Context(), shortCode)
	if err != nil {
		h.handleError(w, r, op, err)
		return
	}

	writeJSON(w, r, http.StatusOK, response.SuccessResponse(
		"Statistics retrieved successfully.",
		toURLStatsResponse(url),
	))
}

func (h *urlHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.deactivateURL"

	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		writeJSON(w, r, http.StatusBadRequest, missingShortCodeResponse)
		return
	}

	if err := h.useCase.DeactivateURL(r.Context(), shortCode); err != nil {
		h.handleError(w, r, op, err)
		return
	}

	writeJSON(w, r, http.StatusOK, response.SuccessResponse(
		fmt.Sprintf("Short URL %q deleted successfully.", shortCode),
	))
}
