// Package session owns the client-side authentication lifecycle: credential
// submission, token/user persistence, rehydration at startup, and a local
// fallback registry that keeps the client usable when the API is unreachable.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	tokenKey            = "token"
	userKey             = "user"
	activitiesKeyPrefix = "activities_"

	// OwnerID is the fixed identifier of the synthesized owner session.
	OwnerID = "owner_id"

	maxActivities = 50
)

// OwnerIdentity is the distinguished owner credential. Logins matching it are
// satisfied locally and never consult the remote API or the local registry.
type OwnerIdentity struct {
	Email    string
	Password string
	Name     string
}

// Config wires a Manager.
type Config struct {
	Remote RemoteAuthService
	Store  Store
	Owner  OwnerIdentity
	Logger *logrus.Logger
}

// Manager maintains at most one authenticated identity for the running
// client, reconciling the remote API with the local fallback registry.
type Manager struct {
	cfg      Config
	registry *LocalRegistry

	mu         sync.Mutex
	user       *User
	token      string
	activities []Activity
	loading    bool
}

func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Manager{
		cfg:      cfg,
		registry: NewLocalRegistry(cfg.Store),
	}
}

// Registry exposes the local fallback account registry.
func (m *Manager) Registry() *LocalRegistry {
	return m.registry
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Token returns the current session token, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Activities returns the in-memory activity log, newest first.
func (m *Manager) Activities() []Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Activity, len(m.activities))
	copy(out, m.activities)
	return out
}

// Loading reports whether a session operation is in flight. The UI should not
// trust CurrentUser until the initial Rehydrate clears this.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// Rehydrate reconstructs the session from persisted state. Called once at
// startup. A missing token yields an anonymous session; a token the API
// explicitly rejects clears persisted state; an unreachable API leaves the
// persisted snapshot trusted so the client stays usable offline.
func (m *Manager) Rehydrate(ctx context.Context) {
	m.setLoading(true)
	defer m.setLoading(false)

	token, snapshot, ok := m.persistedSession()
	if !ok {
		return
	}

	if _, err := m.cfg.Remote.Me(ctx, token); err != nil {
		if isRejection(err) {
			m.cfg.Logger.Debug("persisted token rejected, clearing session")
			m.deleteKey(tokenKey)
			m.deleteKey(userKey)
			return
		}
		// unreachable API: trust the snapshot, availability over validation
		m.cfg.Logger.Debugf("session check unreachable, trusting persisted snapshot: %v", err)
	}

	snapshot.IsOwner = strings.EqualFold(snapshot.Email, m.cfg.Owner.Email)

	m.mu.Lock()
	m.user = &snapshot
	m.token = token
	m.loadActivitiesLocked(snapshot.ID)
	m.mu.Unlock()
}

// Login authenticates against the owner identity, then the remote API, then
// the local registry. Transport failures fall through to the next tier and
// are never surfaced; false means every tier declined.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	m.setLoading(true)
	defer m.setLoading(false)

	if m.isOwnerCredential(email, password) {
		now := time.Now().UTC()
		owner := User{
			ID:              OwnerID,
			Name:            m.cfg.Owner.Name,
			Email:           m.cfg.Owner.Email,
			Role:            "owner",
			Bio:             "Portfolio owner",
			IsActive:        true,
			IsEmailVerified: true,
			LoginCount:      1,
			CreatedAt:       now.Format(time.RFC3339),
			UpdatedAt:       now.Format(time.RFC3339),
			IsOwner:         true,
		}
		m.adoptSession(owner, "owner_token_"+strconv.FormatInt(now.UnixMilli(), 10))
		m.AddActivity("Logged in as owner")
		return true
	}

	token, user, err := m.cfg.Remote.Login(ctx, email, password)
	if err == nil {
		user.IsOwner = false
		m.adoptSession(user, token)
		m.AddActivity("Logged in")
		return true
	}
	if isRejection(err) {
		return false
	}
	m.cfg.Logger.Debugf("api login unreachable, checking local registry: %v", err)

	account, ok, regErr := m.registry.Authenticate(email, password)
	if regErr != nil {
		m.cfg.Logger.Warnf("local registry lookup: %v", regErr)
		return false
	}
	if !ok {
		return false
	}

	user = account.User
	user.IsOwner = false
	m.adoptSession(user, "local_token_"+strconv.FormatInt(time.Now().UnixMilli(), 10))
	m.AddActivity("Logged in")
	return true
}

// Signup registers against the remote API first and falls back to creating a
// local account when the API is unreachable. A duplicate local email fails.
func (m *Manager) Signup(ctx context.Context, email, password, name string) bool {
	m.setLoading(true)
	defer m.setLoading(false)

	token, user, err := m.cfg.Remote.Register(ctx, name, email, password)
	if err == nil {
		user.IsOwner = false
		m.adoptSession(user, token)
		m.AddActivity("Signed up")
		return true
	}
	if isRejection(err) {
		return false
	}
	m.cfg.Logger.Debugf("api signup unreachable, creating local account: %v", err)

	if _, exists, regErr := m.registry.FindByEmail(email); regErr != nil || exists {
		if regErr != nil {
			m.cfg.Logger.Warnf("local registry lookup: %v", regErr)
		}
		return false
	}

	now := time.Now().UTC()
	user = User{
		ID:              strconv.FormatInt(now.UnixMilli(), 10),
		Name:            name,
		Email:           email,
		Role:            "user",
		IsActive:        true,
		IsEmailVerified: true,
		LoginCount:      1,
		CreatedAt:       now.Format(time.RFC3339),
		UpdatedAt:       now.Format(time.RFC3339),
		IsOwner:         false,
	}
	if err := m.registry.Add(user, password); err != nil {
		m.cfg.Logger.Warnf("register local account: %v", err)
		return false
	}

	m.adoptSession(user, "local_token_"+strconv.FormatInt(now.UnixMilli(), 10))
	m.AddActivity("Signed up")
	return true
}

// UpdateProfile pushes the update to the remote API when possible and always
// applies it to the in-memory session and, if present, the local registry
// record. Fails only when no session is active.
func (m *Manager) UpdateProfile(ctx context.Context, updates ProfileUpdate) bool {
	m.mu.Lock()
	if m.user == nil || m.token == "" {
		m.mu.Unlock()
		return false
	}
	token := m.token
	wasOwner := m.user.IsOwner
	m.mu.Unlock()

	m.setLoading(true)
	defer m.setLoading(false)

	user, err := m.cfg.Remote.UpdateProfile(ctx, token, updates)
	if err == nil {
		// the API response does not carry the locally derived owner flag
		user.IsOwner = wasOwner
		m.mu.Lock()
		m.user = &user
		m.persistUserLocked()
		m.mu.Unlock()
		m.AddActivity("Updated profile")
		return true
	}
	m.cfg.Logger.Debugf("api profile update failed, applying locally: %v", err)

	m.mu.Lock()
	if updates.Name != nil {
		m.user.Name = *updates.Name
	}
	if updates.Bio != nil {
		m.user.Bio = *updates.Bio
	}
	if updates.DateOfBirth != nil {
		m.user.DateOfBirth = *updates.DateOfBirth
	}
	m.persistUserLocked()
	userID := m.user.ID
	m.mu.Unlock()

	if err := m.registry.UpdateProfile(userID, updates); err != nil {
		m.cfg.Logger.Warnf("patch local registry: %v", err)
	}

	m.AddActivity("Updated profile")
	return true
}

// Logout flushes a final activity entry, then clears the session. Persisted
// activity history is retained for the next login. Safe to call repeatedly.
func (m *Manager) Logout() {
	if m.CurrentUser() != nil {
		m.AddActivity("Logged out")
	}

	m.deleteKey(tokenKey)
	m.deleteKey(userKey)

	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.activities = nil
	m.mu.Unlock()
}

// AddActivity prepends an entry to the session's activity log, truncating it
// to the most recent entries. No-op without an active session.
func (m *Manager) AddActivity(description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return
	}

	entry := Activity{
		ID:          uuid.NewString(),
		Action:      "user_action",
		Description: description,
		Timestamp:   time.Now().UTC(),
		UserID:      m.user.ID,
	}

	m.activities = append([]Activity{entry}, m.activities...)
	if len(m.activities) > maxActivities {
		m.activities = m.activities[:maxActivities]
	}
	m.persistActivitiesLocked(m.user.ID)
}

func (m *Manager) isOwnerCredential(email, password string) bool {
	return m.cfg.Owner.Email != "" &&
		strings.EqualFold(email, m.cfg.Owner.Email) &&
		password == m.cfg.Owner.Password
}

func (m *Manager) adoptSession(user User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
	m.token = token
	m.persistUserLocked()
	m.setKey(tokenKey, token)
	m.loadActivitiesLocked(user.ID)
}

func (m *Manager) persistedSession() (token string, user User, ok bool) {
	token, hasToken, err := m.cfg.Store.Get(tokenKey)
	if err != nil || !hasToken || token == "" {
		return "", User{}, false
	}
	raw, hasUser, err := m.cfg.Store.Get(userKey)
	if err != nil || !hasUser {
		return "", User{}, false
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.cfg.Logger.Warnf("corrupt user snapshot: %v", err)
		return "", User{}, false
	}
	return token, user, true
}

func (m *Manager) persistUserLocked() {
	raw, err := json.Marshal(m.user)
	if err != nil {
		m.cfg.Logger.Warnf("marshal user snapshot: %v", err)
		return
	}
	m.setKey(userKey, string(raw))
}

func (m *Manager) loadActivitiesLocked(userID string) {
	m.activities = nil
	raw, ok, err := m.cfg.Store.Get(activitiesKey(userID))
	if err != nil || !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), &m.activities); err != nil {
		m.cfg.Logger.Warnf("corrupt activity log for %s: %v", userID, err)
		m.activities = nil
	}
}

func (m *Manager) persistActivitiesLocked(userID string) {
	raw, err := json.Marshal(m.activities)
	if err != nil {
		m.cfg.Logger.Warnf("marshal activity log: %v", err)
		return
	}
	m.setKey(activitiesKey(userID), string(raw))
}

func (m *Manager) setKey(key, value string) {
	if err := m.cfg.Store.Set(key, value); err != nil {
		m.cfg.Logger.Warnf("persist %s: %v", key, err)
	}
}

func (m *Manager) deleteKey(key string) {
	if err := m.cfg.Store.Delete(key); err != nil {
		m.cfg.Logger.Warnf("clear %s: %v", key, err)
	}
}

func activitiesKey(userID string) string {
	return fmt.Sprintf("%s%s", activitiesKeyPrefix, userID)
}
