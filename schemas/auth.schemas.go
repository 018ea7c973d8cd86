package schemas

// RegisterSchema struct
type RegisterSchema struct {
	Username string `validate:"required,email,max=1000"`
	Nickname string `validate:"required,max=30"`
	Code     string `validate:"required,len=4,numeric"`
}

// LoginSchema struct
type LoginSchema struct {
	Username string `validate:"required,email,max=1000"`
	Code     string `validate:"required,len=4,numeric"`
}

// LoginResponseSchema struct
type LoginResponseSchema struct {
	Profile     ProfileSchema
	AccessToken string
}
