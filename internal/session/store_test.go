package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
)

// flakyStore wraps a MemoryStore and fails the configured operations.
type flakyStore struct {
	*kvstore.MemoryStore
	failGet    bool
	failSet    map[string]bool
	failRemove bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: kvstore.NewMemoryStore(), failSet: map[string]bool{}}
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("read failed")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet[key] {
		return errors.New("write failed")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errors.New("remove failed")
	}
	return f.MemoryStore.Remove(ctx, key)
}

func mockBackend(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) Backend {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL+"/api", nil, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return ClientBackend(client)
}

func reply(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func replyStatus(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestStore_InitialStateIsRestoring(t *testing.T) {
	s := New(nil, kvstore.NewMemoryStore(), nil)
	snap := s.Snapshot()
	if snap.Status != StatusRestoring || !snap.Loading {
		t.Fatalf("initial snapshot = %#v, want restoring+loading", snap)
	}
}

func TestStore_RestoreAuthenticated(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	_ = kv.Set(ctx, kvstore.KeyToken, "t1")
	_ = kv.Set(ctx, kvstore.KeyUser, `{"id":1,"name":"X","isAdmin":true}`)

	s := New(nil, kv, nil)
	snap := s.Restore(ctx)
	if snap.Status != StatusAuthenticated || snap.Loading {
		t.Fatalf("snapshot = %#v, want authenticated", snap)
	}
	if snap.Token != "t1" || snap.User == nil || snap.User.ID != "1" || !snap.IsAdmin {
		t.Fatalf("snapshot = %#v", snap)
	}
	if !snap.Authenticated() {
		t.Fatalf("Authenticated() = false")
	}
}

func TestStore_RestoreFallsBackToUnauthenticated(t *testing.T) {
	cases := []struct {
		name  string
		token string
		user  string
		fail  bool
	}{
		{name: "empty store"},
		{name: "token only", token: "t1"},
		{name: "user only", user: `{"id":1}`},
		{name: "invalid json", token: "t1", user: "{nope"},
		{name: "null user", token: "t1", user: "null"},
		{name: "read failure", token: "t1", user: `{"id":1}`, fail: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			kv := newFlakyStore()
			if tc.token != "" {
				_ = kv.MemoryStore.Set(ctx, kvstore.KeyToken, tc.token)
			}
			if tc.user != "" {
				_ = kv.MemoryStore.Set(ctx, kvstore.KeyUser, tc.user)
			}
			kv.failGet = tc.fail

			snap := New(nil, kv, nil).Restore(ctx)
			if snap.Status != StatusUnauthenticated || snap.Loading {
				t.Fatalf("snapshot = %#v, want unauthenticated", snap)
			}
			if snap.User != nil || snap.Token != "" || snap.IsAdmin {
				t.Fatalf("snapshot = %#v, want empty identity", snap)
			}
		})
	}
}

func TestStore_LoginPersistsBackendValues(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/login": reply(`{"token":"t1","user":{"id":1,"name":"X","isAdmin":false}}`),
	})
	kv := kvstore.NewMemoryStore()
	s := New(backend, kv, nil)
	s.Restore(ctx)

	res := s.Login(ctx, "x@example.com", "pw")
	if !res.Success {
		t.Fatalf("Login result = %#v, want success", res)
	}

	snap := s.Snapshot()
	if snap.Token != "t1" || snap.User == nil || snap.User.ID != "1" || snap.User.Name != "X" || snap.IsAdmin {
		t.Fatalf("snapshot = %#v", snap)
	}

	token, _, _ := kv.Get(ctx, kvstore.KeyToken)
	if token != "t1" {
		t.Fatalf("persisted token = %q, want t1", token)
	}
	user, _, _ := kv.Get(ctx, kvstore.KeyUser)
	if user != `{"id":1,"name":"X","isAdmin":false}` {
		t.Fatalf("persisted user = %q", user)
	}
}

func TestStore_LoginAdminFlagFollowsUser(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/login": reply(`{"token":"t1","user":{"id":2,"name":"Boss","isAdmin":true}}`),
	})
	s := New(backend, kvstore.NewMemoryStore(), nil)
	if res := s.Login(ctx, "a", "b"); !res.Success {
		t.Fatalf("Login result = %#v", res)
	}
	if !s.Snapshot().IsAdmin {
		t.Fatalf("IsAdmin = false, want true from user payload")
	}
}

func TestStore_LoginFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/login":    replyStatus(http.StatusUnauthorized, `{"message":"Invalid credentials"}`),
		"/api/auth/register": replyStatus(http.StatusBadRequest, `not json`),
	})
	kv := kvstore.NewMemoryStore()
	_ = kv.Set(ctx, kvstore.KeyToken, "old")
	_ = kv.Set(ctx, kvstore.KeyUser, `{"id":9,"name":"Old"}`)
	s := New(backend, kv, nil)
	s.Restore(ctx)

	res := s.Login(ctx, "x", "y")
	if res.Success || res.Message != "Invalid credentials" {
		t.Fatalf("Login result = %#v, want server message", res)
	}
	res = s.Register(ctx, "n", "x", "y")
	if res.Success || res.Message != MsgRegistrationFailed {
		t.Fatalf("Register result = %#v, want default message", res)
	}

	snap := s.Snapshot()
	if snap.Token != "old" || snap.User == nil || snap.User.ID != "9" {
		t.Fatalf("snapshot changed on failure: %#v", snap)
	}
	if token, _, _ := kv.Get(ctx, kvstore.KeyToken); token != "old" {
		t.Fatalf("persisted token changed: %q", token)
	}
}

func TestStore_LoginPersistenceFailureReportsFailure(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/login": reply(`{"token":"t1","user":{"id":1}}`),
	})
	kv := newFlakyStore()
	kv.failSet[kvstore.KeyUser] = true
	s := New(backend, kv, nil)
	s.Restore(ctx)

	res := s.Login(ctx, "x", "y")
	if res.Success || res.Message != MsgLoginFailed {
		t.Fatalf("Login result = %#v, want Login failed", res)
	}
	if snap := s.Snapshot(); snap.User != nil || snap.Token != "" {
		t.Fatalf("memory updated despite persist failure: %#v", snap)
	}
}

func TestStore_SignInWithoutUserFails(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		call func(*Store) Result
		want string
	}{
		{
			name: "login missing user",
			path: "/api/auth/login",
			body: `{"token":"t1"}`,
			call: func(s *Store) Result { return s.Login(context.Background(), "x", "y") },
			want: MsgLoginFailed,
		},
		{
			name: "login null user",
			path: "/api/auth/login",
			body: `{"token":"t1","user":null}`,
			call: func(s *Store) Result { return s.Login(context.Background(), "x", "y") },
			want: MsgLoginFailed,
		},
		{
			name: "register missing user",
			path: "/api/auth/register",
			body: `{"token":"t1"}`,
			call: func(s *Store) Result { return s.Register(context.Background(), "n", "x", "y") },
			want: MsgRegistrationFailed,
		},
		{
			name: "admin missing admin",
			path: "/api/auth/admin/login",
			body: `{"token":"t1"}`,
			call: func(s *Store) Result { return s.AdminLogin(context.Background(), "x", "y") },
			want: MsgAdminLoginFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
				tt.path: reply(tt.body),
			})
			kv := kvstore.NewMemoryStore()
			s := New(backend, kv, nil)
			s.Restore(context.Background())

			res := tt.call(s)
			if res.Success || res.Message != tt.want {
				t.Fatalf("result = %#v, want failure %q", res, tt.want)
			}
			if snap := s.Snapshot(); snap.User != nil || snap.Token != "" {
				t.Fatalf("memory updated from empty response: %#v", snap)
			}
			for _, key := range []string{kvstore.KeyToken, kvstore.KeyUser} {
				if v, ok, _ := kv.Get(context.Background(), key); ok {
					t.Fatalf("%s persisted as %q", key, v)
				}
			}
		})
	}
}

func TestStore_UserPersistFailureRestoresToken(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/login": reply(`{"token":"t-new","user":{"id":2}}`),
	})

	t.Run("previous session", func(t *testing.T) {
		kv := newFlakyStore()
		_ = kv.Set(ctx, kvstore.KeyToken, "t-old")
		_ = kv.Set(ctx, kvstore.KeyUser, `{"id":1}`)
		s := New(backend, kv, nil)
		s.Restore(ctx)
		kv.failSet[kvstore.KeyUser] = true

		if res := s.Login(ctx, "x", "y"); res.Success {
			t.Fatalf("Login succeeded despite user write failure")
		}
		if token, _, _ := kv.Get(ctx, kvstore.KeyToken); token != "t-old" {
			t.Fatalf("persisted token = %q, want t-old", token)
		}
		if snap := s.Snapshot(); snap.Token != "t-old" || snap.User.ID != "1" {
			t.Fatalf("snapshot = %#v, want previous session", snap)
		}
	})

	t.Run("no previous session", func(t *testing.T) {
		kv := newFlakyStore()
		s := New(backend, kv, nil)
		s.Restore(ctx)
		kv.failSet[kvstore.KeyUser] = true

		if res := s.Login(ctx, "x", "y"); res.Success {
			t.Fatalf("Login succeeded despite user write failure")
		}
		if token, ok, _ := kv.Get(ctx, kvstore.KeyToken); ok {
			t.Fatalf("token left persisted as %q", token)
		}
	})
}

func TestStore_LoginWithoutTokenFails(t *testing.T) {
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/login": reply(`{"user":{"id":1}}`),
	})
	s := New(backend, kvstore.NewMemoryStore(), nil)
	if res := s.Login(context.Background(), "x", "y"); res.Success {
		t.Fatalf("Login without token succeeded")
	}
}

func TestStore_RegisterForcesNonAdmin(t *testing.T) {
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/register": reply(`{"token":"t3","user":{"id":3,"name":"New","isAdmin":true}}`),
	})
	s := New(backend, kvstore.NewMemoryStore(), nil)
	if res := s.Register(context.Background(), "New", "n@example.com", "pw"); !res.Success {
		t.Fatalf("Register result = %#v", res)
	}
	snap := s.Snapshot()
	if snap.IsAdmin {
		t.Fatalf("IsAdmin = true after register, want false")
	}
	if snap.Token != "t3" || snap.User.Name != "New" {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestStore_AdminLoginForcesAdmin(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/admin/login": reply(`{"token":"a1","admin":{"_id":"adm","name":"Root","email":"r@example.com"}}`),
	})
	kv := kvstore.NewMemoryStore()
	s := New(backend, kv, nil)

	if res := s.AdminLogin(ctx, "r@example.com", "pw"); !res.Success {
		t.Fatalf("AdminLogin result = %#v", res)
	}
	snap := s.Snapshot()
	if !snap.IsAdmin || snap.User == nil || !snap.User.IsAdmin || snap.User.ID != "adm" {
		t.Fatalf("snapshot = %#v, want admin identity", snap)
	}

	raw, _, _ := kv.Get(ctx, kvstore.KeyUser)
	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("decode stored user: %v", err)
	}
	if stored["isAdmin"] != true || stored["email"] != "r@example.com" {
		t.Fatalf("stored user = %v", stored)
	}

	// Restoring from the persisted admin keeps the flag.
	restored := New(nil, kv, nil).Restore(ctx)
	if !restored.IsAdmin {
		t.Fatalf("restored IsAdmin = false")
	}
}

func TestStore_AdminLoginFailureMessage(t *testing.T) {
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/auth/admin/login": replyStatus(http.StatusForbidden, `{}`),
	})
	s := New(backend, kvstore.NewMemoryStore(), nil)
	res := s.AdminLogin(context.Background(), "x", "y")
	if res.Success || res.Message != MsgAdminLoginFailed {
		t.Fatalf("AdminLogin result = %#v", res)
	}
}

func TestStore_LogoutClearsEvenWhenRemoveFails(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyStore()
	_ = kv.Set(ctx, kvstore.KeyToken, "t1")
	_ = kv.Set(ctx, kvstore.KeyUser, `{"id":1,"isAdmin":true}`)
	s := New(nil, kv, nil)
	s.Restore(ctx)

	kv.failRemove = true
	s.Logout(ctx)

	snap := s.Snapshot()
	if snap.User != nil || snap.Token != "" || snap.IsAdmin || snap.Status != StatusUnauthenticated {
		t.Fatalf("snapshot after logout = %#v", snap)
	}
}

func TestStore_LogoutRemovesPersistedKeys(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	_ = kv.Set(ctx, kvstore.KeyToken, "t1")
	_ = kv.Set(ctx, kvstore.KeyUser, `{"id":1}`)
	s := New(nil, kv, nil)
	s.Restore(ctx)
	s.Logout(ctx)

	if _, ok, _ := kv.Get(ctx, kvstore.KeyToken); ok {
		t.Fatalf("token still persisted")
	}
	if _, ok, _ := kv.Get(ctx, kvstore.KeyUser); ok {
		t.Fatalf("user still persisted")
	}
}

func TestStore_UpdateUserProfileReplacesUser(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/users/profile": reply(`{"user":{"id":1,"name":"Renamed"}}`),
	})
	kv := kvstore.NewMemoryStore()
	_ = kv.Set(ctx, kvstore.KeyToken, "t1")
	_ = kv.Set(ctx, kvstore.KeyUser, `{"id":1,"name":"X","email":"x@example.com","isAdmin":true}`)
	s := New(backend, kv, nil)
	s.Restore(ctx)

	if res := s.UpdateUserProfile(ctx, api.ProfileUpdate{Name: "Renamed"}); !res.Success {
		t.Fatalf("UpdateUserProfile result = %#v", res)
	}
	snap := s.Snapshot()
	if snap.User.Name != "Renamed" || snap.User.Email != "" {
		t.Fatalf("user = %#v, want server object verbatim", snap.User)
	}
	if !snap.IsAdmin {
		t.Fatalf("IsAdmin recomputed by profile update")
	}
	if raw, _, _ := kv.Get(ctx, kvstore.KeyUser); raw != `{"id":1,"name":"Renamed"}` {
		t.Fatalf("persisted user = %q", raw)
	}
}

func TestStore_UpdateUserProfileFailure(t *testing.T) {
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/users/profile": replyStatus(http.StatusInternalServerError, ``),
	})
	s := New(backend, kvstore.NewMemoryStore(), nil)
	res := s.UpdateUserProfile(context.Background(), api.ProfileUpdate{Name: "x"})
	if res.Success || res.Message != MsgUpdateFailed {
		t.Fatalf("UpdateUserProfile result = %#v", res)
	}
}

func TestStore_UpdateUserProfileWithoutUserFails(t *testing.T) {
	ctx := context.Background()
	backend := mockBackend(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/users/profile": reply(`{}`),
	})
	kv := kvstore.NewMemoryStore()
	_ = kv.Set(ctx, kvstore.KeyToken, "t1")
	_ = kv.Set(ctx, kvstore.KeyUser, `{"id":1,"name":"X"}`)
	s := New(backend, kv, nil)
	s.Restore(ctx)

	res := s.UpdateUserProfile(ctx, api.ProfileUpdate{Name: "Y"})
	if res.Success || res.Message != MsgUpdateFailed {
		t.Fatalf("UpdateUserProfile result = %#v, want Update failed", res)
	}
	if raw, _, _ := kv.Get(ctx, kvstore.KeyUser); raw != `{"id":1,"name":"X"}` {
		t.Fatalf("persisted user = %q, want unchanged", raw)
	}
	if snap := s.Snapshot(); snap.User.Name != "X" {
		t.Fatalf("user = %#v, want unchanged", snap.User)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}

	got, ok := TokenExpiry(signed)
	if !ok || !got.Equal(exp) {
		t.Fatalf("TokenExpiry = %v %v, want %v", got, ok, exp)
	}
	if _, ok := TokenExpiry("opaque-token"); ok {
		t.Fatalf("TokenExpiry on opaque token reported ok")
	}
	if _, ok := TokenExpiry(""); ok {
		t.Fatalf("TokenExpiry on empty token reported ok")
	}
}
