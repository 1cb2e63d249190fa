// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"totisite/internal/token"
)

// Auth groups the admin authentication handlers.
type Auth struct {
	tokens *token.Service

	// totpSecret enables the second factor when non-empty. The secret is
	// shared across the single admin operator.
	totpSecret  string
	totpAccount string
}

// NewAuth creates the Auth handler group. totpSecret may be empty, in which
// case login is password-only.
func NewAuth(tokens *token.Service, totpSecret, totpAccount string) *Auth {
	if totpAccount == "" {
		totpAccount = "admin"
	}
	return &Auth{tokens: tokens, totpSecret: totpSecret, totpAccount: totpAccount}
}

type loginRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"` // TOTP, required only when configured
}

// Login exchanges the admin password (plus TOTP code when configured) for a
// bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	tok, err := a.tokens.Issue(req.Password)
	if err != nil {
		if errors.Is(err, token.ErrNotConfigured) {
			respondError(w, http.StatusInternalServerError, "Service not configured")
			return
		}
		respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	if a.totpSecret != "" && !totp.Validate(req.Code, a.totpSecret) {
		respondError(w, http.StatusUnauthorized, "Invalid authentication code")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "token": tok})
}

// Verify confirms that the presented bearer token is still valid. The route
// sits behind the token middleware, so reaching it means the check passed.
func (a *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// TOTPQRCode serves the provisioning QR code for the configured TOTP secret
// as a PNG, for enrolling an authenticator app. 404 when TOTP is off.
func (a *Auth) TOTPQRCode(w http.ResponseWriter, r *http.Request) {
	if a.totpSecret == "" {
		respondError(w, http.StatusNotFound, "TOTP not configured")
		return
	}

	uri := fmt.Sprintf("otpauth://totp/Totisite:%s?secret=%s&issuer=Totisite",
		url.PathEscape(a.totpAccount), url.QueryEscape(a.totpSecret))

	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
