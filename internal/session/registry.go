package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const localUsersKey = "localUsers"

// LocalRegistry is the persisted fallback account directory, consulted when
// the remote API cannot serve a login or signup.
type LocalRegistry struct {
	store Store
}

func NewLocalRegistry(store Store) *LocalRegistry {
	return &LocalRegistry{store: store}
}

func (r *LocalRegistry) load() ([]LocalAccount, error) {
	raw, ok, err := r.store.Get(localUsersKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var accounts []LocalAccount
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("parse local users: %w", err)
	}
	return accounts, nil
}

func (r *LocalRegistry) save(accounts []LocalAccount) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("marshal local users: %w", err)
	}
	return r.store.Set(localUsersKey, string(raw))
}

// FindByEmail returns the registered account for the email, if any.
func (r *LocalRegistry) FindByEmail(email string) (*LocalAccount, bool, error) {
	accounts, err := r.load()
	if err != nil {
		return nil, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range accounts {
		if strings.ToLower(accounts[i].Email) == email {
			return &accounts[i], true, nil
		}
	}
	return nil, false, nil
}

// Authenticate looks up the account whose email and password both match.
func (r *LocalRegistry) Authenticate(email, password string) (*LocalAccount, bool, error) {
	account, ok, err := r.FindByEmail(email)
	if err != nil || !ok {
		return nil, false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)) != nil {
		return nil, false, nil
	}
	return account, true, nil
}

// Add registers a new account, hashing the password before it is persisted.
// Fails when the email is already registered.
func (r *LocalRegistry) Add(user User, password string) error {
	accounts, err := r.load()
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for i := range accounts {
		if strings.ToLower(accounts[i].Email) == email {
			return fmt.Errorf("account already exists for %s", user.Email)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	accounts = append(accounts, LocalAccount{User: user, Password: string(hash)})
	return r.save(accounts)
}

// UpdateProfile patches the stored record for the user id, if present.
func (r *LocalRegistry) UpdateProfile(userID string, updates ProfileUpdate) error {
	accounts, err := r.load()
	if err != nil {
		return err
	}

	for i := range accounts {
		if accounts[i].ID != userID {
			continue
		}
		if updates.Name != nil {
			accounts[i].Name = *updates.Name
		}
		if updates.Bio != nil {
			accounts[i].Bio = *updates.Bio
		}
		if updates.DateOfBirth != nil {
			accounts[i].DateOfBirth = *updates.DateOfBirth
		}
		return r.save(accounts)
	}
	return nil
}

// Len reports the number of registered local accounts.
func (r *LocalRegistry) Len() (int, error) {
	accounts, err := r.load()
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}
