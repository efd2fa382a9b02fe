package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/session"
)

const pikachuJSON = `{
	"id": "base1-58",
	"name": "Pikachu",
	"number": "58",
	"rarity": "Common",
	"set": {"name": "Base", "releaseDate": "1999/01/09"},
	"language": "EN",
	"tcgplayer": {"prices": {"normal": {"market": 2.5}}}
}`

type collectionClient struct {
	t       *testing.T
	router  *gin.Engine
	session string
}

func newCollectionClient(t *testing.T) *collectionClient {
	h := NewCollectionHandler(session.NewStore(100, time.Hour, nil), time.Hour, nil)
	h.now = func() time.Time { return time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC) }

	router := gin.New()
	col := router.Group("/api/collection")
	col.GET("", h.GetCollection)
	col.POST("", h.AddToCollection)
	col.GET("/export", h.ExportCollection)
	col.PUT("/:id", h.UpdateCollectionItem)
	col.DELETE("/:id", h.DeleteCollectionItem)
	col.POST("/:id/increment", h.IncrementItem)
	col.POST("/:id/decrement", h.DecrementItem)

	return &collectionClient{t: t, router: router}
}

func (cc *collectionClient) do(method, target, body string) *httptest.ResponseRecorder {
	cc.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cc.session != "" {
		req.Header.Set(SessionHeader, cc.session)
	}
	w := httptest.NewRecorder()
	cc.router.ServeHTTP(w, req)
	cc.session = w.Header().Get(SessionHeader)
	return w
}

func decodeUpdate(t *testing.T, w *httptest.ResponseRecorder) models.CollectionUpdateResponse {
	t.Helper()
	var resp models.CollectionUpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCollection_AddThenIncrement(t *testing.T) {
	cc := newCollectionClient(t)

	w := cc.do(http.MethodPost, "/api/collection", pikachuJSON)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, cc.session)
	resp := decodeUpdate(t, w)
	assert.Equal(t, "added", resp.Operation)
	assert.Equal(t, 1, resp.Item.Quantity)

	w = cc.do(http.MethodPost, "/api/collection", pikachuJSON)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeUpdate(t, w)
	assert.Equal(t, "incremented", resp.Operation)
	assert.Equal(t, 2, resp.Item.Quantity)

	w = cc.do(http.MethodGet, "/api/collection", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.CollectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.UniqueCards)
	assert.Equal(t, 2, got.TotalCards)
	assert.InDelta(t, 5.0, got.TotalValue, 0.0001)
}

func TestCollection_EmptyCollection(t *testing.T) {
	cc := newCollectionClient(t)

	w := cc.do(http.MethodGet, "/api/collection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"unique_cards":0,"total_cards":0,"total_value":0}`, w.Body.String())
}

func TestCollection_AddValidation(t *testing.T) {
	cc := newCollectionClient(t)

	w := cc.do(http.MethodPost, "/api/collection", `{"name":"No id"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "card id is required", decodeError(t, w))

	w = cc.do(http.MethodPost, "/api/collection", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollection_DecrementFloorsAtOne(t *testing.T) {
	cc := newCollectionClient(t)
	cc.do(http.MethodPost, "/api/collection", pikachuJSON)
	cc.do(http.MethodPost, "/api/collection/base1-58/increment", "")

	w := cc.do(http.MethodPost, "/api/collection/base1-58/decrement", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeUpdate(t, w)
	assert.Equal(t, "decremented", resp.Operation)
	assert.Equal(t, 1, resp.Item.Quantity)

	w = cc.do(http.MethodPost, "/api/collection/base1-58/decrement", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeUpdate(t, w)
	assert.Equal(t, "unchanged", resp.Operation)
	assert.Equal(t, 1, resp.Item.Quantity)
}

func TestCollection_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantOp     string
		wantQty    int
	}{
		{"Set quantity", `{"quantity": 5}`, http.StatusOK, "updated", 5},
		{"Zero is a no-op", `{"quantity": 0}`, http.StatusOK, "unchanged", 1},
		{"Negative is a no-op", `{"quantity": -3}`, http.StatusOK, "unchanged", 1},
		{"Same value", `{"quantity": 1}`, http.StatusOK, "unchanged", 1},
		{"Too large", `{"quantity": 10000}`, http.StatusBadRequest, "", 0},
		{"Missing quantity", `{}`, http.StatusBadRequest, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := newCollectionClient(t)
			cc.do(http.MethodPost, "/api/collection", pikachuJSON)

			w := cc.do(http.MethodPut, "/api/collection/base1-58", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decodeUpdate(t, w)
			assert.Equal(t, tt.wantOp, resp.Operation)
			assert.Equal(t, tt.wantQty, resp.Item.Quantity)
		})
	}
}

func TestCollection_UnknownItem(t *testing.T) {
	cc := newCollectionClient(t)

	for _, req := range []struct{ method, target, body string }{
		{http.MethodPost, "/api/collection/nope/increment", ""},
		{http.MethodPost, "/api/collection/nope/decrement", ""},
		{http.MethodPut, "/api/collection/nope", `{"quantity": 2}`},
		{http.MethodDelete, "/api/collection/nope", ""},
	} {
		w := cc.do(req.method, req.target, req.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", req.method, req.target)
		assert.Equal(t, "item not found", decodeError(t, w))
	}
}

func TestCollection_Delete(t *testing.T) {
	cc := newCollectionClient(t)
	cc.do(http.MethodPost, "/api/collection", pikachuJSON)

	w := cc.do(http.MethodDelete, "/api/collection/base1-58", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = cc.do(http.MethodGet, "/api/collection", "")
	var got models.CollectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Items)
}

func TestCollection_Export(t *testing.T) {
	cc := newCollectionClient(t)
	cc.do(http.MethodPost, "/api/collection", pikachuJSON)
	cc.do(http.MethodPost, "/api/collection", pikachuJSON)

	w := cc.do(http.MethodGet, "/api/collection/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pokemon-cards-2024-06-01.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Qty,Name,Number,Set,Rarity,Language\n2,Pikachu,58,Base,Common,English\n", w.Body.String())
}

func TestCollection_SessionsAreIsolated(t *testing.T) {
	alice := newCollectionClient(t)
	alice.do(http.MethodPost, "/api/collection", pikachuJSON)

	// a second client on the same router with no session id
	bob := &collectionClient{t: t, router: alice.router}
	w := bob.do(http.MethodGet, "/api/collection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, alice.session, bob.session)

	var got models.CollectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Items)
}

func TestCollection_SessionFromCookie(t *testing.T) {
	cc := newCollectionClient(t)
	w := cc.do(http.MethodPost, "/api/collection", pikachuJSON)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/collection", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	cc.router.ServeHTTP(rec, req)

	var got models.CollectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Items, 1)
}
