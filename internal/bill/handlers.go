package bill

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-splitbill/internal/common"
	"github.com/noah-isme/backend-splitbill/internal/events"
	"github.com/noah-isme/backend-splitbill/internal/export"
)

// Handler exposes the session-scoped bill endpoints.
type Handler struct {
	service  *Service
	renderer *export.Renderer
	bus      *events.Bus
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Renderer *export.Renderer
	Bus      *events.Bus
	Validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	validate := cfg.Validate
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{service: cfg.Service, renderer: cfg.Renderer, bus: cfg.Bus, validate: validate}
}

type updateItemRequest struct {
	Field string `json:"field" validate:"required,oneof=name price discount"`
	Value string `json:"value"`
}

type finalPriceRequest struct {
	Value string `json:"value" validate:"required"`
}

// CreateSession handles POST /api/v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": sess})
}

// GetSession handles GET /api/v1/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// AddItem handles POST /api/v1/sessions/{sessionID}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.AddItem(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// UpdateItem handles PATCH /api/v1/sessions/{sessionID}/items/{itemID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_FIELD", "field must be one of name, price, discount", nil)
		return
	}
	sess, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"), req.Field, req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// RemoveItem handles DELETE /api/v1/sessions/{sessionID}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// SetFinalPrice handles PUT /api/v1/sessions/{sessionID}/final-price.
func (h *Handler) SetFinalPrice(w http.ResponseWriter, r *http.Request) {
	var req finalPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_VALUE", "value is required", nil)
		return
	}
	sess, err := h.service.SetFinalPrice(r.Context(), chi.URLParam(r, "sessionID"), req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// Allocate handles POST /api/v1/sessions/{sessionID}/allocate.
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Allocate(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// ExportHTML handles GET /api/v1/sessions/{sessionID}/export.
func (h *Handler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	page, err := export.HTML(snapshotOf(sess))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.emitExport(r, sess.ID, "html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// ExportPNG handles GET /api/v1/sessions/{sessionID}/export.png.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "image export is not configured", nil)
		return
	}
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	img, err := h.renderer.PNG(r.Context(), snapshotOf(sess))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "EXPORT_FAILED", "failed to render bill image", nil)
		return
	}
	h.emitExport(r, sess.ID, "png")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="bill-details.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// ExportPDF handles GET /api/v1/sessions/{sessionID}/export.pdf.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "document export is not configured", nil)
		return
	}
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	doc, err := h.renderer.PDF(r.Context(), snapshotOf(sess))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "EXPORT_FAILED", "failed to render bill document", nil)
		return
	}
	h.emitExport(r, sess.ID, "pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bill-details.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (h *Handler) emitExport(r *http.Request, sessionID, format string) {
	if h.bus == nil {
		return
	}
	_ = h.bus.Emit(r.Context(), events.Event{Topic: events.TopicExportRendered, SessionID: sessionID, Detail: format})
}

func snapshotOf(sess *Session) export.Snapshot {
	lines := make([]export.Line, len(sess.Ledger.Items))
	for i, item := range sess.Ledger.Items {
		lines[i] = export.Line{
			Name:            item.Name,
			Price:           common.ParseFloatDefault(item.Price, 0),
			Discount:        common.ParseFloatDefault(item.Discount, 0),
			DiscountedPrice: item.DiscountedPrice,
			RoundedPrice:    item.RoundedPrice,
		}
	}
	return export.Snapshot{
		SessionID:          sess.ID,
		Lines:              lines,
		TotalPrice:         sess.Ledger.TotalPrice,
		FinalPrice:         common.ParseFloatDefault(sess.Ledger.FinalPrice, 0),
		DiscountPercentage: sess.Ledger.DiscountPercentage,
		GeneratedAt:        time.Now().UTC(),
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", nil)
	case errors.Is(err, ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "item not found", nil)
	case errors.Is(err, ErrUnknownField):
		common.JSONError(w, http.StatusBadRequest, "INVALID_FIELD", "field must be one of name, price, discount", nil)
	case errors.Is(err, ErrNoItems):
		common.JSONError(w, http.StatusUnprocessableEntity, "NO_ITEMS", "please add at least one item to calculate", nil)
	case errors.Is(err, ErrItemIncomplete):
		common.JSONError(w, http.StatusUnprocessableEntity, "ITEM_INCOMPLETE", "please fill in all item names and prices", nil)
	case errors.Is(err, ErrFinalPriceRequired):
		common.JSONError(w, http.StatusUnprocessableEntity, "FINAL_PRICE_REQUIRED", "please enter the final amount paid", nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			status := appErr.HTTPStatus
			if status == 0 {
				status = http.StatusInternalServerError
			}
			common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
