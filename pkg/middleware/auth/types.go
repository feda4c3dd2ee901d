package auth

// Caller is the verified identity behind a webhook request.
type Caller struct {
	Subject string   `json:"sub"`
	Issuer  string   `json:"iss"`
	Scopes  []string `json:"scopes"`
	// Source is "token" for verified bearer tokens and "dev" for the dev bypass.
	Source string `json:"source"`
}

type contextKey struct{ name string }

var callerCtxKey = &contextKey{"caller"}
