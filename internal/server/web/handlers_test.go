package web

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(formRequest(http.MethodPost, "/register", registerForm("A@X.com")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Registered", readBody(t, resp))

	c := findCookie(resp, common.SessionCookieName)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	u, err := e.store.Users().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, 30, u.Age)
	assert.Empty(t, u.Posts)
}

func TestRegister_Duplicate(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "a@x.com")

	resp := e.do(formRequest(http.MethodPost, "/register", registerForm("a@x.com")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "User Already Registered")
	assert.Nil(t, findCookie(resp, common.SessionCookieName))

	all, err := e.store.Users().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegister_BadInput(t *testing.T) {
	e := newTestEnv(t)

	tests := map[string]func(url.Values){
		"age not a number": func(v url.Values) { v.Set("age", "thirty") },
		"negative age":     func(v url.Values) { v.Set("age", "-1") },
		"bad email":        func(v url.Values) { v.Set("email", "nope") },
		"no password":      func(v url.Values) { v.Del("password") },
	}

	for name, mod := range tests {
		t.Run(name, func(t *testing.T) {
			v := registerForm("b@x.com")
			mod(v)

			resp := e.do(formRequest(http.MethodPost, "/register", v))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Nil(t, findCookie(resp, common.SessionCookieName))
		})
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "a@x.com")

	resp := e.do(formRequest(http.MethodPost, "/login", url.Values{"email": {"a@x.com"}, "password": {"pw"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	c := findCookie(resp, common.SessionCookieName)
	require.NotNil(t, c)

	resp = e.do(getRequest("/profile", &http.Cookie{Name: c.Name, Value: c.Value}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Hello, Alice")
}

func TestLogin_FailureFlashes(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "a@x.com")

	for name, creds := range map[string]url.Values{
		"wrong password": {"email": {"a@x.com"}, "password": {"nope"}},
		"unknown email":  {"email": {"b@x.com"}, "password": {"pw"}},
	} {
		t.Run(name, func(t *testing.T) {
			resp := e.do(formRequest(http.MethodPost, "/login", creds))
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/login", resp.Header.Get("Location"))
			assert.Nil(t, findCookie(resp, common.SessionCookieName))

			flash := findCookie(resp, flashSessionName)
			require.NotNil(t, flash)

			page := e.do(getRequest("/login", &http.Cookie{Name: flash.Name, Value: flash.Value}))
			assert.Contains(t, readBody(t, page), "Invalid email or password")
		})
	}
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	c, _ := e.register(t, "a@x.com")

	resp := e.do(getRequest("/logout", c))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	cleared := findCookie(resp, common.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}

// register → post → like → like → edit → delete, all over HTTP
func TestPostLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c, uid := e.register(t, "a@x.com")

	resp := e.do(formRequest(http.MethodPost, "/post", url.Values{"content": {"hello"}}, c))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	posts, err := e.store.Posts().ListByOwner(ctx, uid)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	id := posts[0].ID
	assert.Empty(t, posts[0].Likes)

	body := readBody(t, e.do(getRequest("/profile", c)))
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, "0 likes")

	resp = e.do(getRequest("/like/"+id, c))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	p, err := e.store.Posts().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{uid}, p.Likes)

	body = readBody(t, e.do(getRequest("/profile", c)))
	assert.Contains(t, body, "1 likes")
	assert.Contains(t, body, "Unlike")

	e.do(getRequest("/like/"+id, c))
	p, err = e.store.Posts().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, p.Likes)

	resp = e.do(getRequest("/edit/"+id, c))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `action="/update/`+id+`"`)

	resp = e.do(formRequest(http.MethodPost, "/update/"+id, url.Values{"content": {"edited"}}, c))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	p, err = e.store.Posts().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "edited", p.Content)

	resp = e.do(formRequest(http.MethodPost, "/delete/"+id, nil, c))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err = e.store.Posts().GetByID(ctx, id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	u, err := e.store.Users().GetByID(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, u.Posts)
	assert.Contains(t, readBody(t, e.do(getRequest("/profile", c))), "No posts yet.")
}

func TestCreatePost_Empty(t *testing.T) {
	e := newTestEnv(t)
	c, _ := e.register(t, "a@x.com")

	resp := e.do(formRequest(http.MethodPost, "/post", url.Values{"content": {"   "}}, c))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostRoutes_NotFound(t *testing.T) {
	e := newTestEnv(t)
	c, _ := e.register(t, "a@x.com")

	for _, req := range []*http.Request{
		getRequest("/like/missing", c),
		getRequest("/edit/missing", c),
		formRequest(http.MethodPost, "/update/missing", url.Values{"content": {"x"}}, c),
		formRequest(http.MethodPost, "/delete/missing", nil, c),
	} {
		t.Run(req.Method+" "+req.URL.Path, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, e.do(req).StatusCode)
		})
	}
}

func TestPostRoutes_OwnershipEnforced(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, ownerID := e.register(t, "a@x.com")
	intruder, intruderID := e.register(t, "b@x.com")

	e.do(formRequest(http.MethodPost, "/post", url.Values{"content": {"mine"}}, owner))
	posts, err := e.store.Posts().ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	id := posts[0].ID

	assert.Equal(t, http.StatusForbidden, e.do(getRequest("/edit/"+id, intruder)).StatusCode)
	assert.Equal(t, http.StatusForbidden,
		e.do(formRequest(http.MethodPost, "/update/"+id, url.Values{"content": {"theirs"}}, intruder)).StatusCode)
	assert.Equal(t, http.StatusForbidden, e.do(formRequest(http.MethodPost, "/delete/"+id, nil, intruder)).StatusCode)

	p, err := e.store.Posts().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mine", p.Content)

	// liking someone else's post is allowed
	assert.Equal(t, http.StatusSeeOther, e.do(getRequest("/like/"+id, intruder)).StatusCode)
	p, err = e.store.Posts().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{intruderID}, p.Likes)
}

func TestUpload(t *testing.T) {
	e := newTestEnv(t)
	c, uid := e.register(t, "a@x.com")

	resp := e.do(multipartRequest(t, "image", "me.png", pngBytes, c))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	u, err := e.store.Users().GetByID(context.Background(), uid)
	require.NoError(t, err)
	require.NotEmpty(t, u.ProfilePicture)

	served := e.do(getRequest(storage.LocalURLPrefix+u.ProfilePicture))
	require.Equal(t, http.StatusOK, served.StatusCode)
	assert.True(t, bytes.Equal(pngBytes, []byte(readBody(t, served))))

	assert.Contains(t, readBody(t, e.do(getRequest("/profile", c))), `src="/uploads/`+u.ProfilePicture+`"`)
}

func TestUpload_Rejected(t *testing.T) {
	e := newTestEnv(t)
	c, uid := e.register(t, "a@x.com")

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantBody string
	}{
		{
			name:     "no file",
			req:      multipartRequest(t, "", "", nil, c),
			wantCode: http.StatusBadRequest,
			wantBody: "No file uploaded.",
		},
		{
			name:     "not multipart",
			req:      formRequest(http.MethodPost, "/upload", url.Values{"image": {"x"}}, c),
			wantCode: http.StatusBadRequest,
			wantBody: "No file uploaded.",
		},
		{
			name:     "wrong field",
			req:      multipartRequest(t, "avatar", "me.png", pngBytes, c),
			wantCode: http.StatusBadRequest,
			wantBody: "No file uploaded.",
		},
		{
			name:     "not an image",
			req:      multipartRequest(t, "image", "notes.png", []byte("just some text"), c),
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name:     "too large",
			req:      multipartRequest(t, "image", "big.png", append(append([]byte{}, pngBytes...), make([]byte, 2<<10)...), c),
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.do(tt.req)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Contains(t, readBody(t, resp), tt.wantBody)
			}
		})
	}

	u, err := e.store.Users().GetByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Empty(t, u.ProfilePicture)
}
