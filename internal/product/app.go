package product

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FlatAPI/pkg/kit"
)

const (
	msgNotFound   = "상품을 찾을 수 없습니다."
	msgNameExists = "이미 존재하는 상품 이름입니다."
	msgDeleted    = "상품이 삭제되었습니다."
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Get("/search", s.search)
	r.Get("/{id}", s.get)
	r.Put("/{id}", s.update)
	r.Delete("/{id}", s.delete)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query())

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "search products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, Search(products, q))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IDParam(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	p, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "get product failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		notFound(w, r)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !kit.Bind(w, r, &in) {
		return
	}

	p, err := s.Store.Create(r.Context(), in)
	if errors.Is(err, ErrNameExists) {
		kit.WriteError(w, r, http.StatusBadRequest, msgNameExists, nil)
		return
	}
	if err != nil {
		s.serverError(w, r, "create product failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IDParam(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	if _, found, err := s.Store.Get(r.Context(), id); err != nil {
		s.serverError(w, r, "get product failed", err, zap.Int64("id", id))
		return
	} else if !found {
		notFound(w, r)
		return
	}

	var in Input
	if !kit.Bind(w, r, &in) {
		return
	}

	p, err := s.Store.Update(r.Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		notFound(w, r)
	case errors.Is(err, ErrNameExists):
		kit.WriteError(w, r, http.StatusBadRequest, msgNameExists, nil)
	case err != nil:
		s.serverError(w, r, "update product failed", err, zap.Int64("id", id))
	default:
		kit.WriteJSON(w, http.StatusOK, p)
	}
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IDParam(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			notFound(w, r)
			return
		}
		s.serverError(w, r, "delete product failed", err, zap.Int64("id", id))
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
