package handler

const (
	errInternalServer     = "Internal server error"
	errAlreadyRegistered  = "Email is already registered"
	errInvalidCredentials = "Invalid email or password"
	errForbidden          = "Forbidden"
)
