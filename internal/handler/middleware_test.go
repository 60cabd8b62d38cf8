package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/repo"
	"github.com/BuzzLyutic/task-manager-api/internal/service"
)

type fakeAuth struct {
	tokens map[string]model.PublicUser
	err    error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (model.PublicUser, error) {
	if f.err != nil {
		return model.PublicUser{}, f.err
	}
	u, ok := f.tokens[token]
	if !ok {
		return model.PublicUser{}, service.ErrUnauthorized
	}
	return u, nil
}

func TestRequireUser(t *testing.T) {
	alice := model.PublicUser{ID: 1, Name: "alice", Email: "a@x.io"}
	auth := fakeAuth{tokens: map[string]model.PublicUser{"good": alice}}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, alice, u)
		w.WriteHeader(http.StatusTeapot)
	})
	h := RequireUser(auth, zap.NewNop())(next)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid token", "Bearer good", http.StatusTeapot},
		{"lowercase scheme", "bearer good", http.StatusTeapot},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "could not validate credentials", body["error"])
			}
		})
	}
}

func TestRequireUser_StoreFailure(t *testing.T) {
	auth := fakeAuth{err: errors.New("connection reset")}
	h := RequireUser(auth, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", invalid("title is required"), http.StatusUnprocessableEntity, "validation error: title is required"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, "could not validate credentials"},
		{"not found", errors.Wrap(repo.ErrorNotFound, "get task"), http.StatusNotFound, "not found"},
		{"conflict", repo.ErrorConflict, http.StatusConflict, "conflict"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			handleErrors(w, req, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestParseFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		f, err := parseFilter(req)
		require.NoError(t, err)
		assert.Equal(t, model.DefaultTaskFilter(), f)
	})

	t.Run("all params", func(t *testing.T) {
		q := url.Values{}
		q.Set("status", "completed")
		q.Set("search", "milk")
		q.Set("page", "3")
		q.Set("limit", "25")
		q.Set("sort_by", "title")
		q.Set("sort_order", "asc")
		req := httptest.NewRequest(http.MethodGet, "/tasks?"+q.Encode(), nil)

		f, err := parseFilter(req)
		require.NoError(t, err)
		require.NotNil(t, f.Status)
		assert.Equal(t, model.StatusCompleted, *f.Status)
		require.NotNil(t, f.Search)
		assert.Equal(t, "milk", *f.Search)
		assert.Equal(t, 3, f.Page)
		assert.Equal(t, 25, f.Limit)
		assert.Equal(t, model.SortTitle, f.SortBy)
		assert.Equal(t, model.SortAsc, f.SortOrder)
	})

	t.Run("non-integer page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks?page=two", nil)
		_, err := parseFilter(req)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("non-integer limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks?limit=1.5", nil)
		_, err := parseFilter(req)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst map[string]any

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, decodeJSON(httptest.NewRecorder(), req, &dst), service.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	assert.ErrorIs(t, decodeJSON(httptest.NewRecorder(), req, &dst), service.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &dst))
	assert.EqualValues(t, 1, dst["a"])
}
