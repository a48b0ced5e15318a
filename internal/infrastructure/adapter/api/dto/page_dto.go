package dto

import "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"

// IndexPage is the view model of the register/login page
type IndexPage struct {
	Register RegisterForm
	Login    LoginForm
	Errors   map[string]string // First message per form field
}

// NewIndexPage creates an empty entry page
func NewIndexPage() IndexPage {
	return IndexPage{Errors: map[string]string{}}
}

// AccountPage is the view model of the balance page
type AccountPage struct {
	Account      *usecase.AccountView
	ErrorMessage string
	Amount       string // Last submitted amount, echoed back on errors
}

// SuccessPage is the view model of the post-login landing page
type SuccessPage struct {
	UserID uint64
}
