package main

import (
	"encoding/json"
	"net/http"
	"testing"
)

func seedWheel(t *testing.T, srv *server) {
	t.Helper()

	_, err := srv.db.Exec(`
		INSERT INTO wheel_slices (label, percentage, weight, is_loss, active) VALUES
		('10% discount', 10, 100, FALSE, TRUE)
	`)
	if err != nil {
		t.Fatalf("seed wheel slices: %v", err)
	}
}

func TestHandleWheelSpin_OneSpinPerPhone(t *testing.T) {
	srv := newTestServer(t)
	seedWheel(t, srv)

	rr := postJSON(t, srv.handleWheelSpin, "/api/wheel/spin", `{"phone":"+10005551234"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp spinResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode spin response: %v", err)
	}
	// Single-slice wheel: the outcome is deterministic.
	if resp.Label != "10% discount" || resp.IsLoss {
		t.Fatalf("unexpected spin outcome: %+v", resp)
	}
	if resp.DiscountCode == "" {
		t.Fatalf("expected a minted discount code for a winning spin")
	}

	var count int
	if err := srv.db.QueryRow(`SELECT COUNT(*) FROM discount_codes WHERE code = ?`, resp.DiscountCode).Scan(&count); err != nil {
		t.Fatalf("count discount codes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected minted code persisted once, got %d", count)
	}

	// Same phone again: rejected by the unique constraint.
	rr = postJSON(t, srv.handleWheelSpin, "/api/wheel/spin", `{"phone":"+10005551234"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for second spin, got %d: %s", rr.Code, rr.Body.String())
	}

	// A different phone may still spin.
	rr = postJSON(t, srv.handleWheelSpin, "/api/wheel/spin", `{"phone":"+10005550000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 for different phone, got %d", rr.Code)
	}
}

func TestHandleWheelSpin_LosingSliceMintsNoCode(t *testing.T) {
	srv := newTestServer(t)
	if _, err := srv.db.Exec(`
		INSERT INTO wheel_slices (label, percentage, weight, is_loss, active) VALUES
		('Better luck next time', 0, 100, TRUE, TRUE)
	`); err != nil {
		t.Fatalf("seed wheel slices: %v", err)
	}

	rr := postJSON(t, srv.handleWheelSpin, "/api/wheel/spin", `{"phone":"+10005551234"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp spinResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode spin response: %v", err)
	}
	if !resp.IsLoss || resp.DiscountCode != "" {
		t.Fatalf("losing spin should mint no code: %+v", resp)
	}

	var count int
	if err := srv.db.QueryRow(`SELECT COUNT(*) FROM discount_codes`).Scan(&count); err != nil {
		t.Fatalf("count discount codes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no discount codes, got %d", count)
	}
}

func TestHandleWheelSpin_UnconfiguredWheel(t *testing.T) {
	srv := newTestServer(t)

	rr := postJSON(t, srv.handleWheelSpin, "/api/wheel/spin", `{"phone":"+10005551234"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 for empty wheel, got %d", rr.Code)
	}
}

func TestHandleDiscountValidate_Outcomes(t *testing.T) {
	srv := newTestServer(t)

	if _, err := srv.db.Exec(`
		INSERT INTO discount_codes (code, percentage, phone, used) VALUES
		('SPIN-FRESH001', 15, '+1000555', FALSE),
		('SPIN-SPENT001', 10, '+1000556', TRUE)
	`); err != nil {
		t.Fatalf("seed discount codes: %v", err)
	}

	rr := postJSON(t, srv.handleDiscountValidate, "/api/discounts/validate", `{"code":"SPIN-FRESH001"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 for fresh code, got %d", rr.Code)
	}
	var resp discountValidateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode validate response: %v", err)
	}
	if !resp.Valid || resp.Percentage != 15 {
		t.Fatalf("unexpected validate response: %+v", resp)
	}

	// A used code is a distinct conflict outcome, whatever phone asks.
	rr = postJSON(t, srv.handleDiscountValidate, "/api/discounts/validate", `{"code":"SPIN-SPENT001"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for used code, got %d", rr.Code)
	}

	rr = postJSON(t, srv.handleDiscountValidate, "/api/discounts/validate", `{"code":"SPIN-NOPE0001"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown code, got %d", rr.Code)
	}
}
