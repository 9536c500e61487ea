package main

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/luxsign/luxsign/internal/promo"
)

var (
	errDiscountUnknown = errors.New("unknown discount code")
	errDiscountUsed    = errors.New("discount code already used")
)

// redeemDiscountCode marks a code used and returns its percentage. The
// conditional UPDATE is the atomic check-then-write: two concurrent
// redemptions can both read "unused" but only one update will stick.
func redeemDiscountCode(tx *sql.Tx, code string) (float64, error) {
	var percentage float64
	var used bool
	err := tx.QueryRow(`SELECT percentage, used FROM discount_codes WHERE code = ?`, code).Scan(&percentage, &used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errDiscountUnknown
	}
	if err != nil {
		return 0, fmt.Errorf("query discount code: %w", err)
	}
	if used {
		return 0, errDiscountUsed
	}

	result, err := tx.Exec(`
		UPDATE discount_codes
		SET used = TRUE, used_at = CURRENT_TIMESTAMP
		WHERE code = ? AND used = FALSE
	`, code)
	if err != nil {
		return 0, fmt.Errorf("redeem discount code: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return 0, errDiscountUsed
	}

	return percentage, nil
}

type spinRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type spinResponse struct {
	Label        string  `json:"label"`
	Percentage   float64 `json:"percentage"`
	IsLoss       bool    `json:"is_loss"`
	DiscountCode string  `json:"discount_code,omitempty"`
}

func (s *server) handleWheelSpin(w http.ResponseWriter, r *http.Request) {
	var req spinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	slices, err := s.listActiveWheelSlices()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load wheel")
		return
	}

	slice, err := promo.Spin(slices, rand.Float64())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "wheel is not configured")
		return
	}

	code := ""
	if !slice.IsLoss {
		code = promo.NewCode()
	}

	tx, err := s.db.Begin()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record spin")
		return
	}
	defer tx.Rollback()

	// The UNIQUE constraint on phone is the one-spin-per-phone rule.
	if _, err := tx.Exec(`
		INSERT INTO wheel_spins (phone, slice_label, discount_code)
		VALUES (?, ?, ?)
	`, req.Phone, slice.Label, code); err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "this phone number has already spun the wheel")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to record spin")
		return
	}

	if code != "" {
		if _, err := tx.Exec(`
			INSERT INTO discount_codes (code, percentage, phone)
			VALUES (?, ?, ?)
		`, code, slice.Percentage, req.Phone); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to record spin")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record spin")
		return
	}

	respondJSON(w, http.StatusOK, spinResponse{
		Label:        slice.Label,
		Percentage:   slice.Percentage,
		IsLoss:       slice.IsLoss,
		DiscountCode: code,
	})
}

func (s *server) listActiveWheelSlices() ([]promo.Slice, error) {
	rows, err := s.db.Query(`
		SELECT id, label, percentage, weight, is_loss
		FROM wheel_slices
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query wheel slices: %w", err)
	}
	defer rows.Close()

	slices := make([]promo.Slice, 0)
	for rows.Next() {
		var sl promo.Slice
		if err := rows.Scan(&sl.ID, &sl.Label, &sl.Percentage, &sl.Weight, &sl.IsLoss); err != nil {
			return nil, fmt.Errorf("scan wheel slice: %w", err)
		}
		slices = append(slices, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wheel slices: %w", err)
	}

	return slices, nil
}

type discountValidateRequest struct {
	Code string `json:"code" validate:"required"`
}

type discountValidateResponse struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
	Valid      bool    `json:"valid"`
}

func (s *server) handleDiscountValidate(w http.ResponseWriter, r *http.Request) {
	var req discountValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var percentage float64
	var used bool
	err := s.db.QueryRow(`SELECT percentage, used FROM discount_codes WHERE code = ?`, req.Code).Scan(&percentage, &used)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "unknown discount code")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to validate discount code")
		return
	}
	if used {
		respondError(w, http.StatusConflict, "discount code already used")
		return
	}

	respondJSON(w, http.StatusOK, discountValidateResponse{
		Code:       req.Code,
		Percentage: percentage,
		Valid:      true,
	})
}

type wheelSlicePayload struct {
	Label      string  `json:"label" validate:"required"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
	Weight     float64 `json:"weight" validate:"gt=0"`
	IsLoss     bool    `json:"is_loss"`
}

func (s *server) handleWheelSlicesList(w http.ResponseWriter, r *http.Request) {
	slices, err := s.listActiveWheelSlices()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load wheel slices")
		return
	}
	respondJSON(w, http.StatusOK, slices)
}

func (s *server) handleWheelSliceCreate(w http.ResponseWriter, r *http.Request) {
	var req wheelSlicePayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO wheel_slices (label, percentage, weight, is_loss, active)
		VALUES (?, ?, ?, ?, TRUE)
	`, req.Label, req.Percentage, req.Weight, req.IsLoss)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create wheel slice")
		return
	}

	id, _ := result.LastInsertId()
	respondJSON(w, http.StatusCreated, promo.Slice{
		ID:         id,
		Label:      req.Label,
		Percentage: req.Percentage,
		Weight:     req.Weight,
		IsLoss:     req.IsLoss,
	})
}

type discountListItem struct {
	ID         int64   `json:"id"`
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
	Phone      string  `json:"phone"`
	Used       bool    `json:"used"`
	CreatedAt  string  `json:"created_at"`
}

func (s *server) handleDiscountsList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, code, percentage, COALESCE(phone, ''), used, created_at
		FROM discount_codes
		ORDER BY id DESC
	`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load discount codes")
		return
	}
	defer rows.Close()

	codes := make([]discountListItem, 0)
	for rows.Next() {
		var d discountListItem
		if err := rows.Scan(&d.ID, &d.Code, &d.Percentage, &d.Phone, &d.Used, &d.CreatedAt); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load discount codes")
			return
		}
		codes = append(codes, d)
	}
	if err := rows.Err(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load discount codes")
		return
	}

	respondJSON(w, http.StatusOK, codes)
}
