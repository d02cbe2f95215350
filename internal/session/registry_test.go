package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndAuthenticate(t *testing.T) {
	registry := NewLocalRegistry(NewMemStore())

	require.NoError(t, registry.Add(User{ID: "1", Name: "Ann", Email: "a@x.com", Role: "user"}, "secret"))

	account, ok, err := registry.Authenticate("a@x.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ann", account.Name)

	_, ok, err = registry.Authenticate("a@x.com", "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = registry.Authenticate("ghost@x.com", "secret")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistryPasswordsAreHashed(t *testing.T) {
	registry := NewLocalRegistry(NewMemStore())
	require.NoError(t, registry.Add(User{ID: "1", Email: "a@x.com"}, "secret"))

	account, ok, err := registry.FindByEmail("a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, "secret", account.Password)
}

func TestRegistryEmailLookupIsCaseInsensitive(t *testing.T) {
	registry := NewLocalRegistry(NewMemStore())
	require.NoError(t, registry.Add(User{ID: "1", Email: "Ann@X.com"}, "secret"))

	_, ok, err := registry.FindByEmail("ann@x.com")
	require.NoError(t, err)
	require.True(t, ok)

	require.Error(t, registry.Add(User{ID: "2", Email: "ANN@x.com"}, "other"))
}

func TestRegistryUpdateProfile(t *testing.T) {
	registry := NewLocalRegistry(NewMemStore())
	require.NoError(t, registry.Add(User{ID: "1", Name: "Ann", Email: "a@x.com"}, "secret"))

	bio := "gopher"
	require.NoError(t, registry.UpdateProfile("1", ProfileUpdate{Bio: &bio}))

	account, ok, err := registry.FindByEmail("a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "gopher", account.Bio)

	// unknown ids are a no-op
	require.NoError(t, registry.UpdateProfile("999", ProfileUpdate{Bio: &bio}))
}
