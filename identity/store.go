package identity

import (
	"context"
	"time"

	"peerchat/errors"
	"peerchat/global"
	"peerchat/schemas"
	"peerchat/store"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// StoreIdentity keeps profiles in the relational store, login codes as
// bcrypt hashes on the profile row, and session records in redis. The
// 4-digit code stands in for a password; the signing secret is the fixed
// shared value of the deployment.
type StoreIdentity struct {
	store  store.Store
	redis  *redis.Client
	secret []byte
}

// NewStoreIdentity builds the adapter
func NewStoreIdentity(st store.Store, redisClient *redis.Client, secret string) *StoreIdentity {
	return &StoreIdentity{store: st, redis: redisClient, secret: []byte(secret)}
}

func sessionKey(userID string) string {
	return "sessions:" + userID
}

// Register creates the auth account and its profile row
func (s *StoreIdentity) Register(ctx context.Context, req schemas.RegisterSchema) (schemas.ProfileSchema, error) {
	if err := global.Validator.Struct(req); err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Validation, "Register", err.Error())
	}

	existing, err := s.store.Select(ctx, "profiles", store.Where(store.Eq("username", req.Username)))
	if err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}
	if len(existing) > 0 {
		return schemas.ProfileSchema{}, errors.New(errors.Conflict, "Username", "exists")
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(req.Code), bcrypt.DefaultCost)
	if err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Store, "code", "hashing error")
	}

	row, err := s.store.Insert(ctx, "profiles", store.Row{
		"username":  req.Username,
		"nickname":  req.Nickname,
		"code_hash": string(codeHash),
	})
	if err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}

	profile, err := schemas.ProfileFromRow(row)
	if err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}
	return profile, nil
}

// LoginWithCode resolves the handle, checks the code and issues a session
func (s *StoreIdentity) LoginWithCode(ctx context.Context, req schemas.LoginSchema) (schemas.LoginResponseSchema, error) {
	if err := global.Validator.Struct(req); err != nil {
		return schemas.LoginResponseSchema{}, errors.New(errors.Validation, "Login", err.Error())
	}

	rows, err := s.store.Select(ctx, "profiles", store.Where(store.Eq("username", req.Username)))
	if err != nil {
		return schemas.LoginResponseSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}
	if len(rows) == 0 {
		return schemas.LoginResponseSchema{}, errors.New(errors.NotFound, "Username", "unknown")
	}

	profile, err := schemas.ProfileFromRow(rows[0])
	if err != nil {
		return schemas.LoginResponseSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.CodeHash), []byte(req.Code)) != nil {
		return schemas.LoginResponseSchema{}, errors.New(errors.NotFound, "Code", "invalid")
	}

	token, err := s.generateJWT(profile.UserID)
	if err != nil {
		return schemas.LoginResponseSchema{}, err
	}

	err = s.redis.HSet(ctx, sessionKey(profile.UserID), map[string]interface{}{
		"token": token,
	}).Err()
	if err != nil {
		return schemas.LoginResponseSchema{}, errors.New(errors.Store, "sessions", "Redis: "+err.Error())
	}
	if err = s.redis.Expire(ctx, sessionKey(profile.UserID), global.SessionDuration).Err(); err != nil {
		return schemas.LoginResponseSchema{}, errors.New(errors.Store, "sessions", "Redis: "+err.Error())
	}

	return schemas.LoginResponseSchema{Profile: profile, AccessToken: token}, nil
}

// CurrentUser resolves an access token to its profile
func (s *StoreIdentity) CurrentUser(ctx context.Context, accessToken string) (schemas.ProfileSchema, error) {
	userID, err := s.parseJWT(accessToken)
	if err != nil {
		return schemas.ProfileSchema{}, err
	}

	if _, err = s.redis.HGet(ctx, sessionKey(userID), "token").Result(); err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.NotFound, "Session", "expired")
	}

	rows, err := s.store.Select(ctx, "profiles", store.Where(store.Eq("user_id", userID)))
	if err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}
	if len(rows) == 0 {
		return schemas.ProfileSchema{}, errors.New(errors.NotFound, "Profile", "missing")
	}

	profile, err := schemas.ProfileFromRow(rows[0])
	if err != nil {
		return schemas.ProfileSchema{}, errors.New(errors.Store, "profiles", err.Error())
	}
	return profile, nil
}

// Logout drops the session record
func (s *StoreIdentity) Logout(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return errors.New(errors.Store, "sessions", "Redis: "+err.Error())
	}
	return nil
}

func (s *StoreIdentity) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{}
	claims["id"] = userID
	claims["exp"] = time.Now().Add(global.AccessTokenDuration).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.New(errors.Store, "jwt", err.Error())
	}
	return token, nil
}

func (s *StoreIdentity) parseJWT(accessToken string) (string, error) {
	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if validationErr, ok := err.(*jwt.ValidationError); ok && validationErr.Errors == jwt.ValidationErrorExpired {
			return "", errors.New(errors.NotFound, "AccessToken", "expired")
		}
		return "", errors.New(errors.NotFound, "AccessToken", "invalid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New(errors.NotFound, "AccessToken", "invalid")
	}
	userID, _ := claims["id"].(string)
	if userID == "" {
		return "", errors.New(errors.NotFound, "AccessToken", "invalid")
	}
	return userID, nil
}
