package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"github.com/dmitrijs2005/scribblenest/internal/server/services"
	"github.com/gorilla/mux"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

// uploadOverhead leaves room for multipart boundaries and headers on top of
// the configured image size.
const uploadOverhead = 64 << 10

type profileView struct {
	page
	*services.Profile
	UserID string
}

type editView struct {
	page
	Post *models.Post
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", page{Title: "Register", Flashes: s.popFlashes(w, r)})
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", page{Title: "Log in", Flashes: s.popFlashes(w, r)})
}

func (s *Server) uploadForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "profileupload.html", page{Title: "Profile picture", Flashes: s.popFlashes(w, r)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	age := 0
	if v := strings.TrimSpace(r.PostFormValue("age")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "age must be a whole number", http.StatusBadRequest)
			return
		}
		age = n
	}

	res, err := s.users.Register(r.Context(), services.RegisterInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Username: r.PostFormValue("username"),
		Name:     r.PostFormValue("name"),
		Age:      age,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Registered"))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := s.users.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.addFlash(w, r, "Invalid email or password")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	p, err := s.users.Profile(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.render(w, r, "profile.html", profileView{
		page:    page{Title: p.User.Username, Flashes: s.popFlashes(w, r)},
		Profile: p,
		UserID:  id.UserID,
	})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+uploadOverhead)
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		s.writeError(w, r, common.ErrNoFileProvided)
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	_, err = s.uploads.UploadProfileImage(r.Context(), id.UserID, &services.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if _, err := s.posts.Create(r.Context(), id.UserID, r.PostFormValue("content")); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if _, err := s.posts.ToggleLike(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	post, err := s.posts.Get(r.Context(), id.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.render(w, r, "edit.html", editView{
		page: page{Title: "Edit post", Flashes: s.popFlashes(w, r)},
		Post: post,
	})
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := s.posts.Edit(r.Context(), id.UserID, mux.Vars(r)["id"], r.PostFormValue("content")); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := s.posts.Delete(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context(), s.storeTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn(r.Context(), "health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
