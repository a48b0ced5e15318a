package handler

// View names, as parsed from the embedded template files
const (
	templateIndex   = "index.html"
	templateAccount = "account.html"
	templateSuccess = "success.html"
	templatePrivacy = "privacy.html"
)

// User-facing messages
const (
	msgEmailInUse        = "Email already in use!"
	msgInvalidLogin      = "Invalid Email/Password"
	msgInvalidPassword   = "Password is invalid."
	msgPasswordTooLong   = "Password must be at most 72 bytes."
	msgInvalidAmount     = "Invalid submission. Please enter a valid amount."
	msgInsufficientFunds = "Insufficient funds for this transaction."
	msgAmountLimit       = "Amounts are limited to %s."
)
