package templates

// BaseProps contains common properties shared across all pages
type BaseProps struct {
	CSRFToken string
}

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	BaseProps
	Error   string
	Message string
}

// LoginPageProps contains properties for the login page
type LoginPageProps struct {
	BaseProps
	Error         string
	Redirect      string
	GitHubEnabled bool
}

// ConsentPageProps contains properties for the authorization consent page
type ConsentPageProps struct {
	BaseProps
	UserName            string
	ClientName          string
	ClientDescription   string
	ClientID            string
	RedirectURI         string
	Scope               string
	ScopeList           []string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AccessDeniedPageProps contains properties for the access denied page
type AccessDeniedPageProps struct {
	BaseProps
	UserName   string
	ClientName string
}
