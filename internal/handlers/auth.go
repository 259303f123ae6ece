// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"

	"smartblog/internal/auth"
	"smartblog/internal/middleware"
	"smartblog/internal/models"
	"smartblog/internal/store"
)

// AuthHandler serves registration, login, and two-factor endpoints.
type AuthHandler struct {
	users  *store.UserStore
	tokens *auth.Tokens
	issuer string
}

// NewAuthHandler creates the auth endpoints. issuer names the service in
// authenticator apps during 2FA enrollment.
func NewAuthHandler(users *store.UserStore, tokens *auth.Tokens, issuer string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, issuer: issuer}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /api/auth/register. New accounts always get the
// user role; authors and admins are promoted out of band.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v := &validator{}
	v.required("username", req.Username)
	v.maxLen("username", req.Username, 30)
	v.required("email", req.Email)
	if req.Email != "" {
		v.email("email", req.Email)
	}
	v.minLen("password", req.Password, 6)
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	user, err := h.users.Create(req.Username, strings.ToLower(req.Email), req.Password, req.Name, models.RoleUser)
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "Username or email already in use")
			return
		}
		respondServerError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"` // TOTP code, required when 2FA is enabled
}

// Login handles POST /api/auth/login. Accounts with 2FA enabled must also
// supply a valid TOTP code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v := &validator{}
	v.required("email", req.Email)
	v.required("password", req.Password)
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	user, err := h.users.FindByEmail(strings.ToLower(req.Email))
	if err != nil {
		respondServerError(w, err)
		return
	}
	// Same message for unknown email and wrong password.
	if user == nil || !h.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !totp.Validate(req.Code, *user.TOTPSecret) {
			respondError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	token, err := h.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/auth/me, returning the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	respondData(w, http.StatusOK, user)
}

type profileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// UpdateMe handles PUT /api/auth/me. Absent fields keep their values;
// the password is re-hashed only when a new one is supplied.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v := &validator{}
	if req.Bio != nil {
		v.maxLen("bio", *req.Bio, 500)
	}
	if req.Password != nil {
		v.minLen("password", *req.Password, 6)
	}
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	name, bio, avatar := user.Name, user.Bio, user.Avatar
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		bio = *req.Bio
	}
	if req.Avatar != nil {
		avatar = *req.Avatar
	}

	if err := h.users.UpdateProfile(user.ID, name, bio, avatar); err != nil {
		respondServerError(w, err)
		return
	}
	if req.Password != nil {
		if err := h.users.ChangePassword(user.ID, *req.Password); err != nil {
			respondServerError(w, err)
			return
		}
	}

	fresh, err := h.users.FindByID(user.ID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, fresh)
}

// DeleteMe handles DELETE /api/auth/me. The account, its posts, and its
// media records are removed permanently; the user's comments on other
// posts remain with their author expanding to null.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	if err := h.users.Delete(user.ID); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{})
}

// TOTPSetup handles POST /api/auth/2fa/setup. It generates a fresh secret
// and returns it with an otpauth URL and a QR code PNG (base64) for
// authenticator apps. 2FA stays disabled until the code is verified.
func (h *AuthHandler) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      h.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		respondServerError(w, err)
		return
	}

	if err := h.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		respondServerError(w, err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"secret":  key.Secret(),
		"url":     key.URL(),
		"qr_code": base64.StdEncoding.EncodeToString(png),
	})
}

type totpVerifyRequest struct {
	Code string `json:"code"`
}

// TOTPVerify handles POST /api/auth/2fa/verify, activating 2FA once the
// user proves they can produce codes from the enrolled secret.
func (h *AuthHandler) TOTPVerify(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req totpVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusBadRequest, "Invalid two-factor code")
		return
	}

	if err := h.users.EnableTOTP(user.ID); err != nil {
		respondServerError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"totp_enabled": true})
}
