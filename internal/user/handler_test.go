package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// stubStore is an in-memory Store used by the handler tests.
type stubStore struct {
	users      map[int64]UserView
	lastFilter ListFilter
	lastUpdate *UpdateUserRequest
	deleted    []int64
}

func newStubStore(users ...UserView) *stubStore {
	s := &stubStore{users: make(map[int64]UserView)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubStore) List(_ context.Context, filter ListFilter) ([]UserView, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	s.lastFilter = filter

	views := make([]UserView, 0, len(s.users))
	for _, u := range s.users {
		if filter.Username != "" && !strings.EqualFold(u.Username, filter.Username) {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		views = append(views, u)
	}
	return views, nil
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*UserView, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *stubStore) Update(_ context.Context, id int64, req UpdateUserRequest) (*UserView, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.lastUpdate = &req

	u.Email = req.Email
	u.Username = req.Username
	u.Avatar = req.Avatar
	u.PhoneNumber = req.PhoneNumber
	u.IsActive = req.IsActive
	u.IsVerified = req.IsVerified
	s.users[id] = u
	return &u, nil
}

func (s *stubStore) Delete(_ context.Context, id int64) error {
	delete(s.users, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubStore) Search(_ context.Context, query string) ([]UserView, error) {
	views := make([]UserView, 0)
	for _, u := range s.users {
		if strings.Contains(u.Username, query) {
			views = append(views, u)
		}
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return views, nil
}

func newTestRouter(store Store) *chi.Mux {
	h := NewHandler(store)
	r := chi.NewRouter()
	r.Get("/users/", h.List)
	r.Get("/users/search_user", h.Search)
	r.Get("/users/{id}/", h.GetByID)
	r.Get("/users/me", h.Me)
	r.Put("/users/me", h.UpdateMe)
	r.Delete("/users/me", h.DeleteMe)
	r.Delete("/users/{id}", h.DeleteByID)
	return r
}

func doRequest(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func asRequester(req *http.Request, id int64) *http.Request {
	return req.WithContext(ContextWithRequesterID(req.Context(), id))
}

func decodeViews(t *testing.T, rec *httptest.ResponseRecorder) []UserView {
	t.Helper()
	var views []UserView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return views
}

func TestHandler_List(t *testing.T) {
	router := newTestRouter(newStubStore(
		UserView{ID: 1, Username: "Anna", Email: "anna@example.com", IsActive: true},
		UserView{ID: 2, Username: "Bob", Email: "bob@example.com", IsActive: false},
	))

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := len(decodeViews(t, rec)); got != 2 {
		t.Errorf("got %d users, want 2", got)
	}
}

func TestHandler_List_EmptyIsOK(t *testing.T) {
	router := newTestRouter(newStubStore())

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := len(decodeViews(t, rec)); got != 0 {
		t.Errorf("got %d users, want empty list", got)
	}
}

func TestHandler_List_Filters(t *testing.T) {
	store := newStubStore(
		UserView{ID: 1, Username: "Anna", IsActive: true},
		UserView{ID: 2, Username: "anna", IsActive: false},
		UserView{ID: 3, Username: "Bob", IsActive: true},
	)
	router := newTestRouter(store)

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/?filter_username=Anna&filter_active=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	views := decodeViews(t, rec)
	if len(views) != 1 || views[0].ID != 1 {
		t.Errorf("expected only the active Anna, got %+v", views)
	}
	if store.lastFilter.Username != "Anna" || store.lastFilter.Active == nil || !*store.lastFilter.Active {
		t.Errorf("filter not forwarded: %+v", store.lastFilter)
	}
}

func TestHandler_List_InvalidSortField(t *testing.T) {
	router := newTestRouter(newStubStore())

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/?sort_by=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_List_InvalidActiveFilter(t *testing.T) {
	router := newTestRouter(newStubStore())

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/?filter_active=maybe", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_GetByID(t *testing.T) {
	router := newTestRouter(newStubStore(
		UserView{ID: 7, Username: "Anna", Email: "anna@example.com"},
	))

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/7/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hashed_password") {
		t.Errorf("response leaks hashed_password: %s", rec.Body.String())
	}

	rec = doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/99/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown id = %d, want 404", rec.Code)
	}
}

func TestHandler_Me(t *testing.T) {
	router := newTestRouter(newStubStore(
		UserView{ID: 5, Username: "Anna"},
	))

	req := asRequester(httptest.NewRequest(http.MethodGet, "/users/me", nil), 5)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Requester row deleted after the token was issued
	req = asRequester(httptest.NewRequest(http.MethodGet, "/users/me", nil), 404)
	rec = doRequest(t, router, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for stale identity = %d, want 404", rec.Code)
	}

	// No authenticated identity at all
	rec = doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without identity = %d, want 401", rec.Code)
	}
}

func TestHandler_UpdateMe(t *testing.T) {
	store := newStubStore(
		UserView{ID: 5, Username: "Anna", Email: "anna@example.com"},
	)
	router := newTestRouter(store)

	body := `{
		"email": "anna.new@example.com",
		"username": "AnnaNew",
		"avatar": "https://cdn.example.com/new.png",
		"phone_number": "+71234567890",
		"is_active": true,
		"is_verified": true
	}`
	req := asRequester(httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(body)), 5)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var view UserView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Email != "anna.new@example.com" || view.Username != "AnnaNew" || !view.IsVerified {
		t.Errorf("update not reflected in response: %+v", view)
	}
	if store.lastUpdate == nil || store.lastUpdate.PhoneNumber == nil || *store.lastUpdate.PhoneNumber != "+71234567890" {
		t.Errorf("payload not forwarded to store: %+v", store.lastUpdate)
	}
}

func TestHandler_UpdateMe_RejectsBadPhone(t *testing.T) {
	store := newStubStore(
		UserView{ID: 5, Username: "Anna", Email: "anna@example.com"},
	)
	router := newTestRouter(store)

	body := `{"email": "anna@example.com", "username": "Anna", "phone_number": "12345"}`
	req := asRequester(httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(body)), 5)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.lastUpdate != nil {
		t.Error("invalid payload must not reach the store")
	}
}

func TestHandler_DeleteMe(t *testing.T) {
	store := newStubStore(
		UserView{ID: 5, Username: "Anna"},
	)
	router := newTestRouter(store)

	req := asRequester(httptest.NewRequest(http.MethodDelete, "/users/me", nil), 5)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 5 {
		t.Errorf("expected own row deleted, got %v", store.deleted)
	}

	// Deleting again is still a success: the operation is idempotent
	rec = doRequest(t, router, asRequester(httptest.NewRequest(http.MethodDelete, "/users/me", nil), 5))
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d, want 200", rec.Code)
	}
}

func TestHandler_DeleteByID_Forbidden(t *testing.T) {
	store := newStubStore(
		UserView{ID: 1, Username: "Anna", IsSuperuser: false},
		UserView{ID: 2, Username: "Bob"},
	)
	router := newTestRouter(store)

	req := asRequester(httptest.NewRequest(http.MethodDelete, "/users/2", nil), 1)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(store.deleted) != 0 {
		t.Errorf("target row must stay intact on 403, deleted: %v", store.deleted)
	}
	if _, ok := store.users[2]; !ok {
		t.Error("target row disappeared")
	}
}

func TestHandler_DeleteByID_Self(t *testing.T) {
	store := newStubStore(
		UserView{ID: 1, Username: "Anna", IsSuperuser: false},
	)
	router := newTestRouter(store)

	req := asRequester(httptest.NewRequest(http.MethodDelete, "/users/1", nil), 1)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 1 {
		t.Errorf("expected row 1 deleted, got %v", store.deleted)
	}
}

func TestHandler_DeleteByID_Superuser(t *testing.T) {
	store := newStubStore(
		UserView{ID: 1, Username: "Admin", IsSuperuser: true},
		UserView{ID: 2, Username: "Bob"},
	)
	router := newTestRouter(store)

	req := asRequester(httptest.NewRequest(http.MethodDelete, "/users/2", nil), 1)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 2 {
		t.Errorf("expected row 2 deleted, got %v", store.deleted)
	}
}

func TestHandler_Search(t *testing.T) {
	router := newTestRouter(newStubStore(
		UserView{ID: 1, Username: "Anna"},
		UserView{ID: 2, Username: "Annabelle"},
		UserView{ID: 3, Username: "Bob"},
	))

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/search_user?search_query=Anna", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := len(decodeViews(t, rec)); got != 2 {
		t.Errorf("got %d users, want 2", got)
	}
}

func TestHandler_Search_EmptyIs404(t *testing.T) {
	router := newTestRouter(newStubStore(
		UserView{ID: 1, Username: "Bob"},
	))

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/search_user?search_query=Anna", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_Search_MissingQuery(t *testing.T) {
	router := newTestRouter(newStubStore())

	rec := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/users/search_user", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
