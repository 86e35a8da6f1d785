package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infield/user-service/internal/core/domain"
)

type fakeDirectoryService struct {
	users map[string]*domain.User
	found []domain.UserName
	query string
	err   error
}

func (f *fakeDirectoryService) GetUser(_ context.Context, id string) (domain.UserView, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.UserView{}, domain.ErrNotFound
	}
	return u.ClientView(), nil
}

func (f *fakeDirectoryService) SearchUsers(_ context.Context, name string) ([]domain.UserName, error) {
	f.query = name
	return f.found, f.err
}

func TestDirectoryHandler_Get(t *testing.T) {
	svc := &fakeDirectoryService{users: map[string]*domain.User{"u1": testUser()}}
	h := NewDirectoryHandler(svc)

	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Jane"`)
	assert.NotContains(t, rec.Body.String(), "pepper")
}

func TestDirectoryHandler_Get_NotFound(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectoryService{})

	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")

	assert.ErrorIs(t, h.Get(c), domain.ErrNotFound)
}

func TestDirectoryHandler_Search(t *testing.T) {
	svc := &fakeDirectoryService{found: []domain.UserName{{ID: "u1", FirstName: "Jane", LastName: "Doe"}}}
	h := NewDirectoryHandler(svc)

	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/users/search?name=Jane+Doe", nil), rec)

	require.NoError(t, h.Search(c))
	assert.Equal(t, "Jane Doe", svc.query)
	assert.JSONEq(t, `[{"id":"u1","firstName":"Jane","lastName":"Doe"}]`, rec.Body.String())
}

func TestDirectoryHandler_Search_NoMatchesIsEmptyArray(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectoryService{})

	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/users/search?name=Zed", nil), rec)

	require.NoError(t, h.Search(c))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDirectoryHandler_Search_NoData(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectoryService{err: domain.ErrNoData})

	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/users/search", nil), httptest.NewRecorder())

	err := h.Search(c)
	assert.ErrorIs(t, err, domain.ErrNoData)
}
