package auth

// Result is the outcome of a successful credential check. The caller
// decides what a session looks like; providers only establish identity.
type Result struct {
	UserID    string
	Email     string
	Name      string
	AvatarURL string
	Provider  string
	Success   bool
}
