package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"aspataal/internal/apperr"
	middlewarex "aspataal/internal/http/middleware"
	"aspataal/internal/services/records"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func decodePayload(w http.ResponseWriter, r *http.Request) (records.Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var p records.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body: %v", apperr.ErrInvalidParameter, err)
	}
	return p, nil
}

func ViewRecord(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middlewarex.Entity(r.Context())
		if !ok {
			writeError(w, r, errNoEntity)
			return
		}
		rec, err := svc.View(r.Context(), d, chi.URLParam(r, "recid"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func EditForm(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middlewarex.Entity(r.Context())
		if !ok {
			writeError(w, r, errNoEntity)
			return
		}
		rec, err := svc.EditForm(r.Context(), d, chi.URLParam(r, "recid"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func AddRecord(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middlewarex.Entity(r.Context())
		if !ok {
			writeError(w, r, errNoEntity)
			return
		}
		p, err := decodePayload(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rec, err := svc.Add(r.Context(), d, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func UpdateRecord(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middlewarex.Entity(r.Context())
		if !ok {
			writeError(w, r, errNoEntity)
			return
		}
		p, err := decodePayload(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		applied, err := svc.Update(r.Context(), d, chi.URLParam(r, "recid"), p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, applied)
	}
}

// DeleteRecord removes one or more comma separated ids and echoes them.
func DeleteRecord(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middlewarex.Entity(r.Context())
		if !ok {
			writeError(w, r, errNoEntity)
			return
		}
		ids, err := svc.Delete(r.Context(), d, chi.URLParam(r, "recid"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ids)
	}
}
