package middleware

const (
	KeyAuthorizationHeader = "Authorization"
	bearerPrefix           = "Bearer "
)
