package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/korimako/wildlife/pkg/auth"
	"github.com/korimako/wildlife/pkg/httputil"
	"github.com/korimako/wildlife/pkg/store"
)

type authFormData struct {
	pageData
	Email string
	Error string
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", authFormData{pageData: s.basePage(r, "Register")})
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", authFormData{pageData: s.basePage(r, "Log In")})
}

// handleRegister creates an account from the registration form and redirects
// to the login page. Validation failures re-render the form with a message.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(httputil.FormValue(r, "email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	renderError := func(msg string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "register.html", authFormData{
			pageData: s.basePage(r, "Register"),
			Email:    email,
			Error:    msg,
		})
	}

	if err := auth.ValidateEmail(email); err != nil {
		renderError(err.Error())
		return
	}
	if err := auth.ValidatePassword(password, confirm); err != nil {
		renderError(err.Error())
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		httputil.WriteInternalError(w, errors.New("internal server error"))
		return
	}

	if _, err := s.store.CreateUser(r.Context(), email, hash); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			renderError("an account with that email already exists")
			return
		}
		s.logger.WithError(err).Error("failed to create user")
		httputil.WriteInternalError(w, errors.New("internal server error"))
		return
	}

	s.logger.WithField("user", email).Info("account registered")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLogin verifies credentials and issues a session cookie
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(httputil.FormValue(r, "email"))
	password := r.FormValue("password")

	renderError := func() {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login.html", authFormData{
			pageData: s.basePage(r, "Log In"),
			Email:    email,
			Error:    "invalid email or password",
		})
	}

	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WithError(err).Error("failed to look up user")
		}
		renderError()
		return
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		renderError()
		return
	}

	if _, err := s.sessions.Issue(r.Context(), w, user.Email); err != nil {
		s.logger.WithError(err).Error("failed to issue session")
		httputil.WriteInternalError(w, errors.New("internal server error"))
		return
	}

	s.logger.WithField("user", user.Email).Info("user logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout clears the session and returns to the home page
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context(), w, r); err != nil {
		s.logger.WithError(err).Warn("failed to clear session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
