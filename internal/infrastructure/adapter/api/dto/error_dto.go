package dto

// ErrorPage is the view model of the error page
type ErrorPage struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}
