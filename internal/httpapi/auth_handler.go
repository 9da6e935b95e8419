package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/j1vetr/EscapeTable/internal/auth"
	"github.com/j1vetr/EscapeTable/internal/user"
)

type AuthHandler struct {
	users    user.Repository
	sessions *auth.Manager
	logger   *log.Logger
}

func NewAuthHandler(users user.Repository, sessions *auth.Manager, logger *log.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if !decodeValid(w, r, &in) {
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		h.logger.Printf("hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Kayıt işlemi başarısız oldu")
		return
	}

	u, err := h.users.Create(r.Context(), user.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			writeError(w, http.StatusBadRequest, "Bu e-posta adresi zaten kayıtlı")
			return
		}
		h.logger.Printf("create user: %v", err)
		writeError(w, http.StatusInternalServerError, "Kayıt işlemi başarısız oldu")
		return
	}

	if _, err := h.sessions.Issue(r.Context(), w, u); err != nil {
		h.logger.Printf("issue session: %v", err)
		writeError(w, http.StatusInternalServerError, "Oturum açılamadı")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeValid(w, r, &in) {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "E-posta veya şifre hatalı")
			return
		}
		h.logger.Printf("load user: %v", err)
		writeError(w, http.StatusInternalServerError, "Giriş işlemi başarısız oldu")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		writeError(w, http.StatusUnauthorized, "E-posta veya şifre hatalı")
		return
	}

	if _, err := h.sessions.Issue(r.Context(), w, u); err != nil {
		h.logger.Printf("issue session: %v", err)
		writeError(w, http.StatusInternalServerError, "Oturum açılamadı")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Çıkış yapıldı"})
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	u, err := h.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.logger.Printf("load user: %v", err)
		writeError(w, http.StatusInternalServerError, "Kullanıcı yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())

	var p user.ProfilePatch
	if !decodeValid(w, r, &p) {
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), sess.UserID, p)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Kullanıcı bulunamadı")
			return
		}
		h.logger.Printf("update profile: %v", err)
		writeError(w, http.StatusInternalServerError, "Profil güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
