package schemas

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ProfileSchema struct
type ProfileSchema struct {
	UserID    string `validate:"required"`
	Username  string `validate:"required,max=1000"`
	Nickname  string
	AvatarURL string
	CodeHash  string `json:"-"`
}

// FriendSchema is a friend entry resolved to its display profile
type FriendSchema struct {
	UserID    string
	Nickname  string
	AvatarURL string
}

// DisplayName resolves the nickname with handle-derived fallbacks
func (p ProfileSchema) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	if local := strings.Split(p.Username, "@")[0]; local != "" {
		return local
	}
	return p.UserID
}

// ProfileFromRow maps and validates a profiles row at the store boundary
func ProfileFromRow(row map[string]interface{}) (ProfileSchema, error) {
	profile := ProfileSchema{
		UserID:    RowString(row, "user_id"),
		Username:  RowString(row, "username"),
		Nickname:  RowString(row, "nickname"),
		AvatarURL: RowString(row, "avatar_url"),
		CodeHash:  RowString(row, "code_hash"),
	}
	if err := validate.Struct(profile); err != nil {
		return ProfileSchema{}, err
	}
	return profile, nil
}

// Friend converts a profile into its friend-list entry
func (p ProfileSchema) Friend() FriendSchema {
	return FriendSchema{
		UserID:    p.UserID,
		Nickname:  p.DisplayName(),
		AvatarURL: p.AvatarURL,
	}
}
