package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mzhyrko/accounts-be/internal/auth"
	"github.com/mzhyrko/accounts-be/internal/models"
	"github.com/mzhyrko/accounts-be/internal/services"
	"github.com/stretchr/testify/require"
)

// fakeUserService scripts the service layer for handler tests.
type fakeUserService struct {
	registerUser models.User
	registerErr  error
	registerPlan string
	loginUser    models.User
	loginToken   string
	loginErr     error
	logoutErr    error
	updateUser   models.User
	updateErr    error
}

func (f *fakeUserService) Register(email, password, subscription string) (models.User, error) {
	f.registerPlan = subscription
	return f.registerUser, f.registerErr
}
func (f *fakeUserService) Login(email, password string) (models.User, string, error) {
	return f.loginUser, f.loginToken, f.loginErr
}
func (f *fakeUserService) Logout(id string) error { return f.logoutErr }
func (f *fakeUserService) FindUserByID(id string) (models.User, error) {
	return models.User{}, services.ErrUserNotFound
}
func (f *fakeUserService) UpdateSubscription(id, subscription string) (models.User, error) {
	return f.updateUser, f.updateErr
}
func (f *fakeUserService) SetAvatarURL(id, avatarURL string) error { return nil }

type fakeAvatarService struct {
	url string
	err error
}

func (f *fakeAvatarService) Ingest(userID, originalName string, file io.Reader) (string, error) {
	return f.url, f.err
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{registerUser: models.User{
			Email: "a@x.com", Subscription: "starter", AvatarURL: "https://www.gravatar.com/avatar/abc",
		}}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		user := decodeBody(t, rec)["user"].(map[string]interface{})
		require.Equal(t, "a@x.com", user["email"])
		require.Equal(t, "starter", user["subscription"])
		require.NotEmpty(t, user["avatarURL"])
	})

	t.Run("subscription passthrough", func(t *testing.T) {
		svc := &fakeUserService{registerUser: models.User{Email: "a@x.com", Subscription: "pro"}}
		h := NewUserHandler(svc, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"a@x.com","password":"secret","subscription":"pro"}`))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "pro", svc.registerPlan)
	})

	t.Run("conflict", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{registerErr: services.ErrEmailInUse}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success returns token and projection", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{
			loginUser:  models.User{Email: "a@x.com", Subscription: "starter", AvatarURL: "ignored"},
			loginToken: "tok-1",
		}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "tok-1", body["token"])
		user := body["user"].(map[string]interface{})
		require.Equal(t, "a@x.com", user["email"])
		require.Equal(t, "starter", user["subscription"])
		require.NotContains(t, user, "avatarURL")
		require.NotContains(t, user, "passwordHash")
	})

	t.Run("bad credentials", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{loginErr: services.ErrInvalidCredentials}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"wrong"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCurrent(t *testing.T) {
	h := NewUserHandler(&fakeUserService{}, &fakeAvatarService{})

	req := httptest.NewRequest(http.MethodGet, "/current", nil)
	req = req.WithContext(auth.WithUser(req.Context(), models.User{ID: "u1", Email: "a@x.com", Subscription: "pro"}))
	rec := httptest.NewRecorder()
	h.Current(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "a@x.com", body["email"])
	require.Equal(t, "pro", body["subscription"])
}

func TestLogout(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req = req.WithContext(auth.WithUser(req.Context(), models.User{ID: "u1"}))
		rec := httptest.NewRecorder()
		h.Logout(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Zero(t, rec.Body.Len())
	})

	t.Run("account vanished", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{logoutErr: services.ErrUserNotFound}, &fakeAvatarService{})

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req = req.WithContext(auth.WithUser(req.Context(), models.User{ID: "u1"}))
		rec := httptest.NewRecorder()
		h.Logout(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func patchSubscription(t *testing.T, h *UserHandler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/users/"+id, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.UpdateSubscription(rec, req)
	return rec
}

func TestUpdateSubscription(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{updateUser: models.User{
			ID: "u1", Email: "a@x.com", Subscription: "business",
		}}, &fakeAvatarService{})

		rec := patchSubscription(t, h, "u1", `{"subscription":"business"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "business", body["subscription"])
		require.NotContains(t, body, "passwordHash")
		require.NotContains(t, body, "activeToken")
	})

	t.Run("not found", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{updateErr: services.ErrUserNotFound}, &fakeAvatarService{})
		rec := patchSubscription(t, h, "gone", `{"subscription":"pro"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{updateErr: services.ErrInvalidSubscription}, &fakeAvatarService{})
		rec := patchSubscription(t, h, "u1", `{"subscription":"platinum"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateAvatar(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{}, &fakeAvatarService{url: "avatars/u1_pic.png"})

		req := httptest.NewRequest(http.MethodPatch, "/avatar", strings.NewReader(""))
		req = req.WithContext(auth.WithUser(req.Context(), models.User{ID: "u1"}))
		rec := httptest.NewRecorder()
		h.UpdateAvatar(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("file accepted", func(t *testing.T) {
		h := NewUserHandler(&fakeUserService{}, &fakeAvatarService{url: "avatars/u1_pic.png"})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("avatar", "pic.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPatch, "/avatar", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req = req.WithContext(auth.WithUser(req.Context(), models.User{ID: "u1"}))
		rec := httptest.NewRecorder()
		h.UpdateAvatar(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "avatars/u1_pic.png", decodeBody(t, rec)["avatarURL"])
	})
}
