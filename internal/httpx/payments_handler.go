package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-subscription-payments/internal/payments"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

type PaymentsHandler struct {
	Service        *payments.Service
	Log            *zap.Logger
	WebhookEnabled bool
}

// subscriptionID accepts 7 as well as "7"; the web client posts FormData
// converted to JSON, which turns every value into a string.
type subscriptionID int64

func (id *subscriptionID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("subscription_id %s: not an integer", b)
	}
	*id = subscriptionID(n)
	return nil
}

type StartPaymentReq struct {
	SubscriptionID *subscriptionID `json:"subscription_id"`
}

type PaymentSuccessReq struct {
	Response string `json:"response"`
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Route("/razorpay", func(r chi.Router) {
		r.Get("/subscriptions", h.listSubscriptions)
		r.Post("/pay", h.startPayment)
		r.Post("/payment/success", h.paymentSuccess)
		r.Get("/orders/{orderPaymentID}", h.orderStatus)
		if h.WebhookEnabled {
			r.Post("/webhook", h.webhook)
		}
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the payments error taxonomy to status codes.
func (h *PaymentsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, payments.ErrInvalidSignature):
		code, msg = http.StatusBadRequest, "Something went wrong"
	case errors.Is(err, payments.ErrInvalidPayload):
		code, msg = http.StatusBadRequest, "invalid payload"
	case errors.Is(err, payments.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, payments.ErrAlreadyExists):
		code, msg = http.StatusConflict, "order already exists"
	case errors.Is(err, payments.ErrRemoteFailure):
		code, msg = http.StatusBadGateway, "payment gateway unavailable"
	}

	fields := []zap.Field{zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err)}
	if payments.IsClientError(err) {
		h.Log.Info("request rejected", fields...)
	} else {
		h.Log.Error("request failed", fields...)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

// isForm reports whether the body was sent as form fields instead of JSON.
func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "multipart/form-data" || mt == "application/x-www-form-urlencoded"
}

func formValue(w http.ResponseWriter, r *http.Request, key string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", err
	}
	return r.FormValue(key), nil
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst)
}

func (h *PaymentsHandler) startPayment(w http.ResponseWriter, r *http.Request) {
	var req StartPaymentReq
	if isForm(r) {
		v, err := formValue(w, r, "subscription_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
			return
		}
		if v != "" {
			var id subscriptionID
			if err := id.UnmarshalJSON([]byte(v)); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			req.SubscriptionID = &id
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.SubscriptionID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	// gateway call termasuk di sini, kasih waktu lebih panjang
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.Initiate(ctx, int64(*req.SubscriptionID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PaymentsHandler) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req PaymentSuccessReq
	if isForm(r) {
		v, err := formValue(w, r, "response")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
			return
		}
		req.Response = v
	} else if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Response == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Confirm(ctx, req.Response); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": payments.SuccessMessage})
}

func (h *PaymentsHandler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	subs, err := h.Service.ListSubscriptions(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PaymentsHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderPaymentID")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Service.Status(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// webhook acks anything it verified, including events for unknown orders,
// so Razorpay does not keep redelivering them.
func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	handled, err := h.Service.HandleWebhook(ctx, body, r.Header.Get("X-Razorpay-Signature"))
	switch {
	case errors.Is(err, payments.ErrNotFound):
		h.Log.Warn("webhook for unknown order", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	case err != nil:
		h.writeError(w, r, err)
	case !handled:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
