package entity

const (
	AuthMsgNotConfigured = "Auth not configured. Please set Supabase environment variables."
	AuthMsgSignInFailed  = "Sign in failed. "
	AuthMsgNoSession     = "No active session. Try again."
	AuthMsgSignedIn      = "Signed in. Redirecting..."
)

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// AuthSession is what the identity provider returns after a successful sign-in.
type AuthSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenType    string   `json:"token_type,omitempty"`
	ExpiresIn    int      `json:"expires_in,omitempty"`
	User         AuthUser `json:"user"`
}

// CallbackResult is the outcome of completing a redirect-based sign-in.
type CallbackResult struct {
	Message  string       `json:"message"`
	Redirect string       `json:"redirect,omitempty"`
	Session  *AuthSession `json:"session,omitempty"`
}
