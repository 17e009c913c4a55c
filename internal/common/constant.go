package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is stripped from the Authorization header value when present.
const BearerPrefix = "Bearer "
