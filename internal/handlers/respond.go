// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handler groups of the API: admin auth,
// admin data, and the visitor-facing endpoints (chat, video, lead capture,
// contact, newsletter). Handlers translate errors into the JSON taxonomy:
// 400 bad request, 401 unauthorized, 409 conflict, relayed upstream status,
// 500 otherwise. Raw upstream bodies never reach the caller.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"totisite/internal/avatar"
	"totisite/internal/gateway"
	"totisite/internal/postgrest"
)

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError writes a JSON {error} body.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON parses the request body into dst. Returns false after writing
// a 400 when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// respondUpstreamError maps gateway and provider failures onto the error
// taxonomy. Upstream statuses are relayed; upstream bodies are not.
func respondUpstreamError(w http.ResponseWriter, err error, fallbackMsg string) {
	var pe *postgrest.UpstreamError
	if errors.As(err, &pe) {
		slog.Error("upstream error", "status", pe.Status, "body", pe.Body)
		respondError(w, pe.Status, fallbackMsg)
		return
	}
	var ae *avatar.UpstreamError
	if errors.As(err, &ae) {
		slog.Error("upstream error", "status", ae.Status, "body", ae.Body)
		respondError(w, ae.Status, fallbackMsg)
		return
	}
	if errors.Is(err, avatar.ErrNotConfigured) {
		slog.Error("service not configured")
		respondError(w, http.StatusInternalServerError, "Service not configured")
		return
	}
	slog.Error("request failed", "error", err)
	respondError(w, http.StatusInternalServerError, fallbackMsg)
}

// badRequestErr reports whether err is a caller mistake rather than a
// server-side failure.
func badRequestErr(err error) bool {
	return errors.Is(err, gateway.ErrInvalidKind) ||
		errors.Is(err, gateway.ErrSessionIDRequired) ||
		errors.Is(err, gateway.ErrInvalidTable)
}
