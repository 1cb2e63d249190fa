// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"totisite/internal/gateway"
	"totisite/internal/models"
)

// Admin groups the authenticated dashboard data handlers. All routes sit
// behind the bearer token middleware.
type Admin struct {
	gw *gateway.Gateway
}

// NewAdmin creates the Admin handler group.
func NewAdmin(gw *gateway.Gateway) *Admin {
	return &Admin{gw: gw}
}

// Data serves GET /api/admin/data: one page of the requested kind, or the
// aggregated stats.
func (a *Admin) Data(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := gateway.Kind(q.Get("type"))

	if kind == gateway.KindStats {
		stats, err := a.gw.Stats(r.Context())
		if err != nil {
			respondUpstreamError(w, err, "Failed to fetch stats")
			return
		}
		respondJSON(w, http.StatusOK, stats)
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	result, err := a.gw.List(r.Context(), kind, limit, offset, q.Get("sessionId"))
	if err != nil {
		if badRequestErr(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondUpstreamError(w, err, "Failed to fetch data")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type createRequest struct {
	Type string           `json:"type"`
	Post *models.BlogPost `json:"post"`
}

// Create serves POST /api/admin/data. Only blog posts are created through
// this surface.
func (a *Admin) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type != "blog" || req.Post == nil {
		respondError(w, http.StatusBadRequest, "Invalid type")
		return
	}
	if req.Post.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	created, err := a.gw.CreateBlogPost(r.Context(), req.Post)
	if err != nil {
		respondUpstreamError(w, err, "Failed to create post")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": created})
}

type updateRequest struct {
	Type     string            `json:"type"`
	Post     *models.BlogPost  `json:"post"`
	Settings map[string]string `json:"settings"`
}

// Update serves PUT /api/admin/data: blog post updates and the SEO settings
// upsert.
func (a *Admin) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch req.Type {
	case "blog":
		if req.Post == nil || req.Post.ID == "" {
			respondError(w, http.StatusBadRequest, "Post with ID is required")
			return
		}
		updated, err := a.gw.UpdateBlogPost(r.Context(), req.Post)
		if err != nil {
			respondUpstreamError(w, err, "Failed to update post")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})

	case "seo-settings":
		if req.Settings == nil {
			respondError(w, http.StatusBadRequest, "Settings are required")
			return
		}
		if err := a.gw.UpsertSettings(r.Context(), req.Settings); err != nil {
			respondUpstreamError(w, err, "Failed to save settings")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		respondError(w, http.StatusBadRequest, "Invalid type")
	}
}

type patchRequest struct {
	Table   string         `json:"table"`
	ID      string         `json:"id"`
	Updates map[string]any `json:"updates"`
}

// Patch serves PATCH /api/admin/data: a field patch against one row of an
// allowed table.
func (a *Admin) Patch(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Table == "" || req.ID == "" {
		respondError(w, http.StatusBadRequest, "Table and ID are required")
		return
	}

	rows, err := a.gw.Update(r.Context(), req.Table, req.ID, req.Updates)
	if err != nil {
		if badRequestErr(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondUpstreamError(w, err, "Failed to update")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows})
}

type deleteRequest struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

// Delete serves DELETE /api/admin/data.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Table == "" || req.ID == "" {
		respondError(w, http.StatusBadRequest, "Table and ID are required")
		return
	}

	if err := a.gw.Delete(r.Context(), req.Table, req.ID); err != nil {
		if badRequestErr(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondUpstreamError(w, err, "Failed to delete")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
