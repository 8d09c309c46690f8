package common

// AuthHeaderName is the HTTP header used to carry the session token on
// outbound requests.
const AuthHeaderName = "Authorization"
