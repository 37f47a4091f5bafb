package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FlatAPI/internal/user"
)

type env struct {
	ts   *httptest.Server
	path string
}

func newEnv(t *testing.T) env {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.json")
	s := &user.Server{Store: user.NewFileStore(path), Log: zap.NewNop()}

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return env{ts: ts, path: path}
}

func (e env) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e env) create(t *testing.T, name, email string) user.User {
	t.Helper()

	status, raw := e.do(t, http.MethodPost, "/", map[string]any{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var u user.User
	require.NoError(t, json.Unmarshal(raw, &u))
	return u
}

func (e env) snapshot(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(e.path)
	require.NoError(t, err)
	return string(raw)
}

func errorOf(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Error
}

func TestUsers_CreateThenGet(t *testing.T) {
	e := newEnv(t)

	created := e.create(t, "Kim", "kim@example.com")
	require.NotZero(t, created.ID)
	require.Equal(t, "Kim", created.Name)
	require.Equal(t, "kim@example.com", created.Email)

	status, raw := e.do(t, http.MethodGet, "/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, status)

	var got user.User
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, created, got)
}

func TestUsers_ListEmptyIsArray(t *testing.T) {
	e := newEnv(t)

	status, raw := e.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, string(raw))
}

func TestUsers_IDsAreUnique(t *testing.T) {
	e := newEnv(t)

	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		u := e.create(t, "u", "u"+strconv.Itoa(i)+"@example.com")
		require.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}

	status, raw := e.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	var all []user.User
	require.NoError(t, json.Unmarshal(raw, &all))
	require.Len(t, all, 20)
}

func TestUsers_DuplicateEmailRejected(t *testing.T) {
	e := newEnv(t)
	e.create(t, "Kim", "kim@example.com")
	before := e.snapshot(t)

	status, raw := e.do(t, http.MethodPost, "/", map[string]any{"name": "Other", "email": "kim@example.com"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "이미 존재하는 이메일입니다.", errorOf(t, raw))
	require.Equal(t, before, e.snapshot(t))
}

func TestUsers_MissingFields(t *testing.T) {
	e := newEnv(t)

	for _, body := range []map[string]any{
		{"name": "Kim"},
		{"email": "kim@example.com"},
		{"name": "", "email": "kim@example.com"},
		{},
	} {
		status, _ := e.do(t, http.MethodPost, "/", body)
		require.Equal(t, http.StatusBadRequest, status, "body %v", body)
	}

	status, raw := e.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, string(raw))
}

func TestUsers_UpdateIsIdempotent(t *testing.T) {
	e := newEnv(t)
	u := e.create(t, "Kim", "kim@example.com")
	path := "/" + strconv.FormatInt(u.ID, 10)
	body := map[string]any{"name": "Lee", "email": "lee@example.com"}

	status, first := e.do(t, http.MethodPut, path, body)
	require.Equal(t, http.StatusOK, status)
	afterFirst := e.snapshot(t)

	status, second := e.do(t, http.MethodPut, path, body)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, string(first), string(second))
	require.Equal(t, afterFirst, e.snapshot(t))

	var got user.User
	require.NoError(t, json.Unmarshal(second, &got))
	require.Equal(t, user.User{ID: u.ID, Name: "Lee", Email: "lee@example.com"}, got)
}

func TestUsers_UpdateKeepsOwnEmail(t *testing.T) {
	e := newEnv(t)
	u := e.create(t, "Kim", "kim@example.com")

	status, _ := e.do(t, http.MethodPut, "/"+strconv.FormatInt(u.ID, 10),
		map[string]any{"name": "Kim Jr", "email": "kim@example.com"})
	require.Equal(t, http.StatusOK, status)
}

func TestUsers_UpdateToTakenEmail(t *testing.T) {
	e := newEnv(t)
	e.create(t, "Kim", "kim@example.com")
	lee := e.create(t, "Lee", "lee@example.com")
	before := e.snapshot(t)

	status, raw := e.do(t, http.MethodPut, "/"+strconv.FormatInt(lee.ID, 10),
		map[string]any{"name": "Lee", "email": "kim@example.com"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "이미 존재하는 이메일입니다.", errorOf(t, raw))
	require.Equal(t, before, e.snapshot(t))
}

func TestUsers_Delete(t *testing.T) {
	e := newEnv(t)
	u := e.create(t, "Kim", "kim@example.com")
	path := "/" + strconv.FormatInt(u.ID, 10)

	status, raw := e.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"message":"사용자가 삭제되었습니다."}`, string(raw))

	status, _ = e.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestUsers_UnknownIDIsNotFound(t *testing.T) {
	e := newEnv(t)
	e.create(t, "Kim", "kim@example.com")
	before := e.snapshot(t)

	valid := map[string]any{"name": "X", "email": "x@example.com"}
	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/1", nil},
		{http.MethodPut, "/1", valid},
		{http.MethodPut, "/1", map[string]any{}},
		{http.MethodDelete, "/1", nil},
		{http.MethodGet, "/not-a-number", nil},
		{http.MethodPut, "/not-a-number", valid},
		{http.MethodDelete, "/not-a-number", nil},
	} {
		status, raw := e.do(t, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusNotFound, status, "%s %s", tc.method, tc.path)
		require.Equal(t, "사용자를 찾을 수 없습니다.", errorOf(t, raw))
	}

	require.Equal(t, before, e.snapshot(t))
}

type failingStore struct{ user.Store }

func (failingStore) List(context.Context) ([]user.User, error) {
	return nil, errors.New("disk on fire")
}

func TestUsers_StoreFailureIsGeneric500(t *testing.T) {
	s := &user.Server{Store: failingStore{}, Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"server error"}`, rec.Body.String())
}
