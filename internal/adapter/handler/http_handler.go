package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
	"github.com/dgarcia9/blood-bank/internal/core/service"
)

// roleHeader carries the caller's role, forwarded by the authentication
// gate in front of this service. The gate owns login/session mechanics;
// the services own the allow/deny decision.
const roleHeader = "X-Staff-Role"

const dateLayout = "2006-01-02"

type HTTPHandler struct {
	inventory *service.InventoryService
	alerts    *service.AlertService
	donors    *service.DonorService
}

func NewHTTPHandler(inventory *service.InventoryService, alerts *service.AlertService, donors *service.DonorService) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, alerts: alerts, donors: donors}
}

// Register wires all routes onto mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/inventory", h.Inventory)
	mux.HandleFunc("/api/alerts", h.Alerts)
	mux.HandleFunc("/api/donations", h.RecordDonation)
	mux.HandleFunc("/api/dispatch", h.Dispatch)
	mux.HandleFunc("/api/disposals", h.Dispose)
	mux.HandleFunc("/api/donors", h.Donors)
	mux.HandleFunc("/api/donors/", h.DonorByID)
}

type errorResponse struct {
	Error string `json:"error"`
}

type donationRequest struct {
	RequestID  string `json:"request_id"`
	DonorID    int64  `json:"donor_id"`
	VolumeML   int    `json:"volume_ml"`
	ExpiryDate string `json:"expiry_date"`
}

type donationResponse struct {
	DonationID string `json:"donation_id"`
	BloodType  string `json:"blood_type"`
	ExpiryDate string `json:"expiry_date"`
}

type dispatchRequest struct {
	RequestID string `json:"request_id"`
	BloodType string `json:"blood_type"`
}

type disposalRequest struct {
	DonationID string `json:"donation_id"`
	BloodType  string `json:"blood_type"`
}

type stockLevelResponse struct {
	BloodType string `json:"blood_type"`
	Units     int    `json:"units"`
}

type scarcityAlertResponse struct {
	BloodType string `json:"blood_type"`
	Units     int    `json:"units"`
	Threshold int    `json:"threshold"`
}

type expiryAlertResponse struct {
	DonationID string `json:"donation_id"`
	BloodType  string `json:"blood_type"`
	DonorName  string `json:"donor_name"`
	ExpiryDate string `json:"expiry_date"`
	Severity   string `json:"severity"`
}

type alertsResponse struct {
	Scarcity []scarcityAlertResponse `json:"scarcity"`
	Expiring []expiryAlertResponse   `json:"expiring"`
}

type donorRequest struct {
	FullName    string  `json:"full_name"`
	Age         int     `json:"age"`
	WeightKg    float64 `json:"weight_kg"`
	BloodType   string  `json:"blood_type"`
	Phone       string  `json:"phone"`
	IDDocument  string  `json:"id_document,omitempty"`
	ClinicalDoc string  `json:"clinical_document,omitempty"`
}

type donorResponse struct {
	ID          int64   `json:"id"`
	FullName    string  `json:"full_name"`
	Age         int     `json:"age"`
	WeightKg    float64 `json:"weight_kg"`
	BloodType   string  `json:"blood_type"`
	Phone       string  `json:"phone"`
	IDDocument  string  `json:"id_document,omitempty"`
	ClinicalDoc string  `json:"clinical_document,omitempty"`
}

func (h *HTTPHandler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, ok := h.callerRole(w, r)
	if !ok {
		return
	}

	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RequestID == "" || req.DonorID == 0 || req.ExpiryDate == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}
	expiry, err := time.ParseInLocation(dateLayout, req.ExpiryDate, time.Local)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid expiry_date, want YYYY-MM-DD"})
		return
	}

	rec, err := h.inventory.RecordDonation(r.Context(), role, req.RequestID, req.DonorID, req.VolumeML, expiry)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, donationResponse{
		DonationID: rec.ID,
		BloodType:  string(rec.BloodType),
		ExpiryDate: rec.ExpiryDate.Format(dateLayout),
	})
}

func (h *HTTPHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, ok := h.callerRole(w, r)
	if !ok {
		return
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RequestID == "" || req.BloodType == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	if err := h.inventory.DispatchUnit(r.Context(), role, req.RequestID, domain.BloodType(req.BloodType)); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "dispatched"})
}

func (h *HTTPHandler) Dispose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, ok := h.callerRole(w, r)
	if !ok {
		return
	}

	var req disposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.DonationID == "" || req.BloodType == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	if err := h.inventory.DisposeExpiredUnit(r.Context(), role, req.DonationID, domain.BloodType(req.BloodType)); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disposed"})
}

func (h *HTTPHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	levels, err := h.inventory.StockLevels(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]stockLevelResponse, 0, len(levels))
	for _, lvl := range levels {
		resp = append(resp, stockLevelResponse{BloodType: string(lvl.BloodType), Units: lvl.Units})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scarcity, err := h.alerts.ScarcityScan(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	expiring, err := h.alerts.ExpiryScan(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := alertsResponse{
		Scarcity: make([]scarcityAlertResponse, 0, len(scarcity)),
		Expiring: make([]expiryAlertResponse, 0, len(expiring)),
	}
	for _, a := range scarcity {
		resp.Scarcity = append(resp.Scarcity, scarcityAlertResponse{
			BloodType: string(a.BloodType),
			Units:     a.Units,
			Threshold: a.Threshold,
		})
	}
	for _, a := range expiring {
		resp.Expiring = append(resp.Expiring, expiryAlertResponse{
			DonationID: a.DonationID,
			BloodType:  string(a.BloodType),
			DonorName:  a.DonorName,
			ExpiryDate: a.ExpiryDate.Format(dateLayout),
			Severity:   string(a.Severity),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Donors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		donors, err := h.donors.ListDonors(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp := make([]donorResponse, 0, len(donors))
		for _, d := range donors {
			resp = append(resp, toDonorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		if _, ok := h.callerRole(w, r); !ok {
			return
		}
		var req donorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		id, err := h.donors.CreateDonor(r.Context(), domain.Donor{
			FullName:    req.FullName,
			Age:         req.Age,
			WeightKg:    req.WeightKg,
			BloodType:   domain.BloodType(req.BloodType),
			Phone:       req.Phone,
			IDDocument:  req.IDDocument,
			ClinicalDoc: req.ClinicalDoc,
		})
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HTTPHandler) DonorByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/donors/"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid donor id"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.donors.GetDonor(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDonorResponse(*d))

	case http.MethodPut:
		if _, ok := h.callerRole(w, r); !ok {
			return
		}
		var req donorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		err := h.donors.UpdateDonor(r.Context(), domain.Donor{
			ID:        id,
			FullName:  req.FullName,
			Age:       req.Age,
			WeightKg:  req.WeightKg,
			BloodType: domain.BloodType(req.BloodType),
			Phone:     req.Phone,
		})
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})

	case http.MethodDelete:
		role, ok := h.callerRole(w, r)
		if !ok {
			return
		}
		if err := h.donors.DeleteDonor(r.Context(), role, id); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) callerRole(w http.ResponseWriter, r *http.Request) (domain.Role, bool) {
	role, err := domain.ParseRole(r.Header.Get(roleHeader))
	if err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "unknown caller role"})
		return "", false
	}
	return role, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
		message = "operation not permitted"
	case errors.Is(err, domain.ErrDonorNotFound), errors.Is(err, domain.ErrDonationNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrDuplicateRequest):
		status = http.StatusConflict
		message = "duplicate request"
	case errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusGone
		message = "no stock available"
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func toDonorResponse(d domain.Donor) donorResponse {
	return donorResponse{
		ID:          d.ID,
		FullName:    d.FullName,
		Age:         d.Age,
		WeightKg:    d.WeightKg,
		BloodType:   string(d.BloodType),
		Phone:       d.Phone,
		IDDocument:  d.IDDocument,
		ClinicalDoc: d.ClinicalDoc,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
