package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusRestoring Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Default failure messages used when the server supplies none.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
	MsgAdminLoginFailed   = "Admin login failed"
	MsgUpdateFailed       = "Update failed"
)

// Result is the uniform outcome of a mutating session operation.
type Result struct {
	Success bool
	Message string
}

func failure(err error, fallback string) Result {
	return Result{Success: false, Message: api.MessageOf(err, fallback)}
}

// Backend is the subset of the API the session store needs.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (api.AuthResponse, error)
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	AdminLogin(ctx context.Context, email, password string) (api.AdminAuthResponse, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.User, error)
}

// ClientBackend adapts an *api.Client to Backend.
func ClientBackend(c *api.Client) Backend {
	return clientBackend{c: c}
}

type clientBackend struct {
	c *api.Client
}

func (b clientBackend) Register(ctx context.Context, name, email, password string) (api.AuthResponse, error) {
	return b.c.Auth.Register(ctx, name, email, password)
}

func (b clientBackend) Login(ctx context.Context, email, password string) (api.AuthResponse, error) {
	return b.c.Auth.Login(ctx, email, password)
}

func (b clientBackend) AdminLogin(ctx context.Context, email, password string) (api.AdminAuthResponse, error) {
	return b.c.Auth.AdminLogin(ctx, email, password)
}

func (b clientBackend) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.User, error) {
	return b.c.Users.UpdateProfile(ctx, update)
}

// Snapshot is a copy of the session visible to consumers.
type Snapshot struct {
	User    *api.User
	Token   string
	Loading bool
	IsAdmin bool
	Status  Status
}

// Authenticated reports whether a user and token are held.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.Token != ""
}

// Store holds the authenticated identity for the lifetime of the process.
//
// Successful mutations write through to the kvstore before the in-memory state
// changes. The two are not updated transactionally: a crash in between leaves
// the persisted copy ahead of memory, which the next Restore reconciles.
type Store struct {
	backend Backend
	kv      kvstore.Store
	log     *zap.Logger

	mu      sync.RWMutex
	user    *api.User
	token   string
	isAdmin bool
	status  Status
}

// New returns a store in the restoring state. Call Restore once at startup.
func New(backend Backend, kv kvstore.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		kv:      kv,
		log:     logger.Named("session"),
		status:  StatusRestoring,
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Token:   s.token,
		Loading: s.status == StatusRestoring,
		IsAdmin: s.isAdmin,
		Status:  s.status,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Restore loads the persisted token and user. It always leaves the restoring
// state; any failure results in an unauthenticated session.
func (s *Store) Restore(ctx context.Context) Snapshot {
	user, token, err := s.loadPersisted(ctx)

	s.mu.Lock()
	if err != nil {
		s.log.Warn("restore session failed", zap.Error(err))
		s.user, s.token, s.isAdmin = nil, "", false
		s.status = StatusUnauthenticated
	} else if user == nil {
		s.user, s.token, s.isAdmin = nil, "", false
		s.status = StatusUnauthenticated
	} else {
		s.user, s.token, s.isAdmin = user, token, user.IsAdmin
		s.status = StatusAuthenticated
		s.log.Info("session restored", zap.String("user_id", string(user.ID)), zap.Bool("admin", user.IsAdmin))
	}
	s.mu.Unlock()

	return s.Snapshot()
}

func (s *Store) loadPersisted(ctx context.Context) (*api.User, string, error) {
	token, hasToken, err := s.kv.Get(ctx, kvstore.KeyToken)
	if err != nil {
		return nil, "", fmt.Errorf("read token: %w", err)
	}
	rawUser, hasUser, err := s.kv.Get(ctx, kvstore.KeyUser)
	if err != nil {
		return nil, "", fmt.Errorf("read user: %w", err)
	}
	if !hasToken || !hasUser || strings.TrimSpace(token) == "" || strings.TrimSpace(rawUser) == "" {
		return nil, "", nil
	}
	user, err := decodeUser(rawUser)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func decodeUser(raw string) (*api.User, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '{' {
		return nil, errors.New("stored user is not a JSON object")
	}
	var user api.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("parse stored user: %w", err)
	}
	return &user, nil
}

// Login authenticates with email and password.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login rejected", zap.Error(err))
		return failure(err, MsgLoginFailed)
	}
	if err := s.establish(ctx, resp.Token, resp.User, resp.User.IsAdmin); err != nil {
		s.log.Error("persist login failed", zap.Error(err))
		return Result{Message: MsgLoginFailed}
	}
	return Result{Success: true}
}

// Register creates an account and signs in. Newly registered users are never
// admins, whatever the server says.
func (s *Store) Register(ctx context.Context, name, email, password string) Result {
	resp, err := s.backend.Register(ctx, name, email, password)
	if err != nil {
		s.log.Info("registration rejected", zap.Error(err))
		return failure(err, MsgRegistrationFailed)
	}
	if err := s.establish(ctx, resp.Token, resp.User, false); err != nil {
		s.log.Error("persist registration failed", zap.Error(err))
		return Result{Message: MsgRegistrationFailed}
	}
	return Result{Success: true}
}

// AdminLogin authenticates an administrator. The stored identity is the
// server's admin object with isAdmin forced true.
func (s *Store) AdminLogin(ctx context.Context, email, password string) Result {
	resp, err := s.backend.AdminLogin(ctx, email, password)
	if err != nil {
		s.log.Info("admin login rejected", zap.Error(err))
		return failure(err, MsgAdminLoginFailed)
	}
	if resp.Admin.IsZero() {
		s.log.Error("admin login response carried no admin")
		return Result{Message: MsgAdminLoginFailed}
	}
	admin, err := resp.Admin.WithAdmin(true)
	if err != nil {
		s.log.Error("build admin identity failed", zap.Error(err))
		return Result{Message: MsgAdminLoginFailed}
	}
	if err := s.establish(ctx, resp.Token, admin, true); err != nil {
		s.log.Error("persist admin login failed", zap.Error(err))
		return Result{Message: MsgAdminLoginFailed}
	}
	return Result{Success: true}
}

// establish persists token then user and, only when both writes succeed,
// replaces the in-memory identity.
func (s *Store) establish(ctx context.Context, token string, user api.User, isAdmin bool) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("response carried no token")
	}
	if user.IsZero() {
		return errors.New("response carried no user")
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.RLock()
	previous := s.token
	s.mu.RUnlock()

	if err := s.kv.Set(ctx, kvstore.KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeyUser, string(encoded)); err != nil {
		s.restoreToken(ctx, previous)
		return fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.isAdmin = isAdmin
	s.status = StatusAuthenticated
	s.mu.Unlock()

	s.log.Info("signed in", zap.String("user_id", string(user.ID)), zap.Bool("admin", isAdmin))
	return nil
}

// restoreToken puts back the token held in memory after a half-written
// sign-in, so requests keep matching the identity in memory.
func (s *Store) restoreToken(ctx context.Context, previous string) {
	var err error
	if previous == "" {
		err = s.kv.Remove(ctx, kvstore.KeyToken)
	} else {
		err = s.kv.Set(ctx, kvstore.KeyToken, previous)
	}
	if err != nil {
		s.log.Error("restore previous token failed", zap.Error(err))
	}
}

// Logout forgets the session. Persistence failures are logged; memory is
// cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.kv.Remove(ctx, kvstore.KeyToken); err != nil {
		s.log.Error("remove token failed", zap.Error(err))
	}
	if err := s.kv.Remove(ctx, kvstore.KeyUser); err != nil {
		s.log.Error("remove user failed", zap.Error(err))
	}

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.isAdmin = false
	s.status = StatusUnauthenticated
	s.mu.Unlock()

	s.log.Info("signed out")
}

// UpdateUserProfile sends a partial update and replaces the stored user with
// the object the server returns. IsAdmin is left as it was.
func (s *Store) UpdateUserProfile(ctx context.Context, update api.ProfileUpdate) Result {
	user, err := s.backend.UpdateProfile(ctx, update)
	if err != nil {
		s.log.Info("profile update rejected", zap.Error(err))
		return failure(err, MsgUpdateFailed)
	}
	if user.IsZero() {
		s.log.Error("profile update response carried no user")
		return Result{Message: MsgUpdateFailed}
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		s.log.Error("encode updated user failed", zap.Error(err))
		return Result{Message: MsgUpdateFailed}
	}
	if err := s.kv.Set(ctx, kvstore.KeyUser, string(encoded)); err != nil {
		s.log.Error("persist updated user failed", zap.Error(err))
		return Result{Message: MsgUpdateFailed}
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return Result{Success: true}
}
