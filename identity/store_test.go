package identity

import (
	"context"
	"testing"

	"peerchat/errors"
	"peerchat/schemas"
	"peerchat/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterCreatesProfile(t *testing.T) {
	st := store.NewMemoryStore()
	ident := NewStoreIdentity(st, nil, "secret")

	profile, err := ident.Register(context.Background(), schemas.RegisterSchema{
		Username: "alice@mail.com",
		Nickname: "Alice",
		Code:     "1234",
	})
	require.NoError(t, err)
	require.NotEmpty(t, profile.UserID)
	require.Equal(t, "alice@mail.com", profile.Username)
	require.Equal(t, "Alice", profile.Nickname)

	rows, err := st.Select(context.Background(), "profiles", store.Where(store.Eq("username", "alice@mail.com")))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	hash := rows[0]["code_hash"].(string)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("1234")))
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("4321")))
}

func TestRegisterRejectsBadCode(t *testing.T) {
	ident := NewStoreIdentity(store.NewMemoryStore(), nil, "secret")

	_, err := ident.Register(context.Background(), schemas.RegisterSchema{
		Username: "alice@mail.com",
		Nickname: "Alice",
		Code:     "12",
	})
	require.True(t, errors.Is(err, errors.Validation))

	_, err = ident.Register(context.Background(), schemas.RegisterSchema{
		Username: "alice@mail.com",
		Nickname: "Alice",
		Code:     "abcd",
	})
	require.True(t, errors.Is(err, errors.Validation))
}

func TestRegisterRejectsBadHandle(t *testing.T) {
	ident := NewStoreIdentity(store.NewMemoryStore(), nil, "secret")

	_, err := ident.Register(context.Background(), schemas.RegisterSchema{
		Username: "not-an-address",
		Nickname: "Alice",
		Code:     "1234",
	})
	require.True(t, errors.Is(err, errors.Validation))
}

func TestRegisterDuplicateHandle(t *testing.T) {
	ident := NewStoreIdentity(store.NewMemoryStore(), nil, "secret")

	req := schemas.RegisterSchema{Username: "alice@mail.com", Nickname: "Alice", Code: "1234"}
	_, err := ident.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = ident.Register(context.Background(), req)
	require.True(t, errors.Is(err, errors.Conflict))
}

func TestJWTRoundtrip(t *testing.T) {
	ident := NewStoreIdentity(store.NewMemoryStore(), nil, "secret")

	token, err := ident.generateJWT("alice")
	require.NoError(t, err)

	userID, err := ident.parseJWT(token)
	require.NoError(t, err)
	require.Equal(t, "alice", userID)
}

func TestParseJWTRejectsForgedToken(t *testing.T) {
	ident := NewStoreIdentity(store.NewMemoryStore(), nil, "secret")
	forger := NewStoreIdentity(store.NewMemoryStore(), nil, "other")

	token, err := forger.generateJWT("alice")
	require.NoError(t, err)

	_, err = ident.parseJWT(token)
	require.True(t, errors.Is(err, errors.NotFound))
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	ident := NewStoreIdentity(store.NewMemoryStore(), nil, "secret")

	_, err := ident.parseJWT("not.a.token")
	require.True(t, errors.Is(err, errors.NotFound))
}
