package domain

// PKCECodes holds a PKCE code verifier and its S256 challenge.
// The verifier never leaves the process except in the token exchange request.
type PKCECodes struct {
	CodeVerifier  string
	CodeChallenge string
}

// AuthorizationCallback is the successful result of the OAuth redirect.
type AuthorizationCallback struct {
	// Code is the single-use authorization code.
	Code string
	// State echoes the state parameter sent in the authorization request.
	State string
}
