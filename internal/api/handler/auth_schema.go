package handler

// registerRequest is the body of POST /register-user. HTML forms post
// url-encoded fields; JSON bodies use the same names.
type registerRequest struct {
	Email          string `form:"email" json:"email" validate:"required"`
	Username       string `form:"username" json:"username" validate:"required"`
	Password       string `form:"password" json:"password" validate:"required"`
	PasswordRepeat string `form:"pswrepeat" json:"pswrepeat" validate:"required"`
}

// loginRequest is the body of POST /login-user.
type loginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}
