package dto

import "strings"

// RegisterForm represents the registration form on the entry page.
// Upper bounds match the users columns; bcrypt also caps passwords at 72 bytes.
type RegisterForm struct {
	FirstName       string `form:"FirstName" binding:"required,min=2,max=100"`
	LastName        string `form:"LastName" binding:"required,min=2,max=100"`
	Email           string `form:"Email" binding:"required,max=255,email"`
	Password        string `form:"Password" binding:"required,min=8,max=72"`
	ConfirmPassword string `form:"ConfirmPassword" binding:"eqfield=Password"`
}

// Normalize trims the fields that are echoed back and stored
func (f *RegisterForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
}

// Redacted returns a copy safe to render back into the page
func (f RegisterForm) Redacted() RegisterForm {
	f.Password = ""
	f.ConfirmPassword = ""
	return f
}

// LoginForm represents the login form on the entry page
type LoginForm struct {
	LoginEmail    string `form:"LoginEmail" binding:"required,email"`
	LoginPassword string `form:"LoginPassword" binding:"required"`
}

// Normalize trims the email
func (f *LoginForm) Normalize() {
	f.LoginEmail = strings.TrimSpace(f.LoginEmail)
}

// Redacted returns a copy safe to render back into the page
func (f LoginForm) Redacted() LoginForm {
	f.LoginPassword = ""
	return f
}

// AmountForm represents the deposit/withdrawal form on the account page.
// Amount stays a raw string; parsing belongs to the ledger.
type AmountForm struct {
	Amount string `form:"Amount"`
}
