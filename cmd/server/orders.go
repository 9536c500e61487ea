package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/luxsign/luxsign/internal/pricing"
)

const (
	statusPending   = "pending"
	statusCompleted = "completed"
	statusShipped   = "shipped"
	statusCancelled = "cancelled"
)

// accessCodeBytes is the entropy of the customer lookup token. 16 random
// bytes encode to a 22-character base64url string without padding.
const accessCodeBytes = 16

func newAccessCode() (string, error) {
	buf := make([]byte, accessCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// orderConfig is the configuration snapshot frozen into the order row. The
// access code lives inside the snapshot, matching how the configurator
// payload is persisted verbatim.
type orderConfig struct {
	WidthCm      float64 `json:"width_cm"`
	HeightCm     float64 `json:"height_cm"`
	ProfileID    int64   `json:"profile_id"`
	BackingCode  string  `json:"backing_code"`
	LedType      string  `json:"led_type"`
	DoubleSided  bool    `json:"double_sided"`
	DiscountCode string  `json:"discount_code,omitempty"`
	AccessCode   string  `json:"access_code"`
}

type orderCreateRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerPhone string  `json:"customer_phone" validate:"required"`
	WidthCm       float64 `json:"width_cm" validate:"gt=0"`
	HeightCm      float64 `json:"height_cm" validate:"gt=0"`
	ProfileID     int64   `json:"profile_id" validate:"required"`
	BackingCode   string  `json:"backing_code" validate:"required"`
	LedType       string  `json:"led_type" validate:"required,oneof=indoor outdoor"`
	DoubleSided   bool    `json:"double_sided"`
	DiscountCode  string  `json:"discount_code"`
}

type orderCreateResponse struct {
	ID         int64   `json:"id"`
	AccessCode string  `json:"access_code"`
	Price      float64 `json:"price"`
}

func (s *server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	var req orderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The price is always recomputed server side; the client never supplies it.
	breakdown, err := s.priceConfiguration(calcRequest{
		WidthCm:     req.WidthCm,
		HeightCm:    req.HeightCm,
		ProfileID:   req.ProfileID,
		BackingCode: req.BackingCode,
		LedType:     req.LedType,
		DoubleSided: req.DoubleSided,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to price order")
		return
	}

	accessCode, err := newAccessCode()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	price := breakdown.FinalPrice

	tx, err := s.db.Begin()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	defer tx.Rollback()

	if req.DiscountCode != "" {
		percentage, redeemErr := redeemDiscountCode(tx, req.DiscountCode)
		if redeemErr != nil {
			switch {
			case errors.Is(redeemErr, errDiscountUnknown):
				respondError(w, http.StatusUnprocessableEntity, "unknown discount code")
			case errors.Is(redeemErr, errDiscountUsed):
				respondError(w, http.StatusConflict, "discount code already used")
			default:
				respondError(w, http.StatusInternalServerError, "failed to redeem discount code")
			}
			return
		}
		price = price * (1 - percentage/100.0)
	}

	configJSON, err := json.Marshal(orderConfig{
		WidthCm:      req.WidthCm,
		HeightCm:     req.HeightCm,
		ProfileID:    req.ProfileID,
		BackingCode:  req.BackingCode,
		LedType:      req.LedType,
		DoubleSided:  req.DoubleSided,
		DiscountCode: req.DiscountCode,
		AccessCode:   accessCode,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	dimensions := fmt.Sprintf("%gx%g cm", req.WidthCm, req.HeightCm)

	result, err := tx.Exec(`
		INSERT INTO orders (customer_name, customer_phone, dimensions, price, config_json, breakdown_json, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.CustomerName, req.CustomerPhone, dimensions, price, string(configJSON), string(breakdownJSON), statusPending)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	id, _ := result.LastInsertId()
	respondJSON(w, http.StatusCreated, orderCreateResponse{
		ID:         id,
		AccessCode: accessCode,
		Price:      price,
	})
}

type orderDetail struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	Dimensions string          `json:"dimensions"`
	Price      float64         `json:"price"`
	CreatedAt  string          `json:"created_at"`
	Breakdown  json.RawMessage `json:"breakdown"`
}

// handleOrderLookup serves unauthenticated customers. The supplied code is
// compared ordinally against the one embedded in the stored snapshot; any
// mismatch is a plain 404 so the endpoint leaks nothing about order ids.
func (s *server) handleOrderLookup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	var detail orderDetail
	var configJSON, breakdownJSON string
	err = s.db.QueryRow(`
		SELECT id, status, dimensions, price, created_at, config_json, breakdown_json
		FROM orders
		WHERE id = ?
	`, id).Scan(&detail.ID, &detail.Status, &detail.Dimensions, &detail.Price, &detail.CreatedAt, &configJSON, &breakdownJSON)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	var cfg orderConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if cfg.AccessCode == "" || cfg.AccessCode != code {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	detail.Breakdown = json.RawMessage(breakdownJSON)
	respondJSON(w, http.StatusOK, detail)
}

type orderListItem struct {
	ID            int64   `json:"id"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Dimensions    string  `json:"dimensions"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, customer_name, customer_phone, dimensions, price, status, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC, id DESC
	`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	defer rows.Close()

	orders := make([]orderListItem, 0)
	for rows.Next() {
		var o orderListItem
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.Dimensions, &o.Price, &o.Status, &o.CreatedAt); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load orders")
			return
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed shipped cancelled"`
}

func (s *server) handleOrderStatusUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var current string
	err = s.db.QueryRow(`SELECT status FROM orders WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	// Cancelled is terminal.
	if current == statusCancelled && req.Status != statusCancelled {
		respondError(w, http.StatusConflict, "cancelled orders cannot change status")
		return
	}

	if _, err := s.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, req.Status, id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
