package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FlatAPI/pkg/kit"
)

const (
	msgNotFound    = "사용자를 찾을 수 없습니다."
	msgEmailExists = "이미 존재하는 이메일입니다."
	msgDeleted     = "사용자가 삭제되었습니다."
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

// Routes serves the users collection; the caller mounts it and applies auth.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Get("/{id}", s.get)
	r.Put("/{id}", s.update)
	r.Delete("/{id}", s.delete)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	users, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list users failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, users)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IDParam(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	u, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "get user failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		notFound(w, r)
		return
	}
	kit.WriteJSON(w, http.StatusOK, u)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !kit.Bind(w, r, &in) {
		return
	}

	u, err := s.Store.Create(r.Context(), in)
	switch {
	case errors.Is(err, ErrEmailExists):
		kit.WriteError(w, r, http.StatusBadRequest, msgEmailExists, nil)
		return
	case err != nil:
		s.serverError(w, r, "create user failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, u)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IDParam(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	_, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "get user failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		notFound(w, r)
		return
	}

	var in Input
	if !kit.Bind(w, r, &in) {
		return
	}

	u, err := s.Store.Update(r.Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		notFound(w, r)
		return
	case errors.Is(err, ErrEmailExists):
		kit.WriteError(w, r, http.StatusBadRequest, msgEmailExists, nil)
		return
	case err != nil:
		s.serverError(w, r, "update user failed", err, zap.Int64("id", id))
		return
	}

	kit.WriteJSON(w, http.StatusOK, u)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IDParam(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	err := s.Store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		notFound(w, r)
		return
	case err != nil:
		s.serverError(w, r, "delete user failed", err, zap.Int64("id", id))
		return
	}

	kit.WriteMessage(w, http.StatusOK, msgDeleted)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	kit.WriteError(w, r, http.StatusNotFound, msgNotFound, nil)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Error(msg, append(fields, zap.Error(err))...)
	}
	kit.WriteError(w, r, http.StatusInternalServerError, kit.MsgServerError, nil)
}
