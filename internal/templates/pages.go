package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// The pages below are deliberately minimal server-rendered HTML; the
// admin surface is a JSON API and relying parties bring their own UI,
// so only the sign-in and consent screens need markup.

func writePageHead(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s - SSOGate</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0;display:flex;justify-content:center;padding-top:8vh}
.card{background:#fff;border-radius:8px;box-shadow:0 1px 4px rgba(0,0,0,.12);padding:2rem;width:22rem}
h1{font-size:1.25rem;margin-top:0}
label{display:block;margin:.75rem 0 .25rem;font-size:.875rem}
input[type=email],input[type=password]{width:100%%;padding:.5rem;border:1px solid #ccc;border-radius:4px;box-sizing:border-box}
button{margin-top:1rem;width:100%%;padding:.6rem;border:0;border-radius:4px;background:#2563eb;color:#fff;font-size:1rem;cursor:pointer}
button.secondary{background:#6b7280}
.error{color:#b91c1c;font-size:.875rem;margin:.5rem 0}
.scopes{padding-left:1.25rem}
a.alt{display:block;text-align:center;margin-top:1rem;font-size:.875rem}
</style>
</head>
<body>
<div class="card">
<h1>%s</h1>
`, html.EscapeString(title), html.EscapeString(title))
	return err
}

func writePageFoot(w io.Writer) error {
	_, err := io.WriteString(w, "</div>\n</body>\n</html>\n")
	return err
}

// ErrorPage renders a terminal protocol error. Used when there is no
// verified redirect target to carry the error back to.
func ErrorPage(props ErrorPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writePageHead(w, "Error"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<p class="error">%s</p><p>%s</p>`,
			html.EscapeString(props.Error),
			html.EscapeString(props.Message),
		); err != nil {
			return err
		}
		return writePageFoot(w)
	})
}

// LoginPage renders the sign-in form
func LoginPage(props LoginPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writePageHead(w, "Sign in"); err != nil {
			return err
		}
		if props.Error != "" {
			if _, err := fmt.Fprintf(w,
				`<p class="error">%s</p>`, html.EscapeString(props.Error)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<form method="post" action="/login">
<input type="hidden" name="csrf_token" value="%s">
<input type="hidden" name="redirect" value="%s">
<label for="email">Email</label>
<input type="email" id="email" name="email" required autofocus>
<label for="password">Password</label>
<input type="password" id="password" name="password" required>
<button type="submit">Sign in</button>
</form>
`,
			html.EscapeString(props.CSRFToken),
			html.EscapeString(props.Redirect),
		); err != nil {
			return err
		}
		if props.GitHubEnabled {
			if _, err := io.WriteString(w,
				`<a class="alt" href="/login/github">Sign in with GitHub</a>`+"\n"); err != nil {
				return err
			}
		}
		return writePageFoot(w)
	})
}

// ConsentPage renders the authorization consent form for third-party
// clients. First-party clients skip this page entirely.
func ConsentPage(props ConsentPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writePageHead(w, "Authorize "+props.ClientName); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<p><strong>%s</strong> wants to access your account (%s).</p>`,
			html.EscapeString(props.ClientName),
			html.EscapeString(props.UserName),
		); err != nil {
			return err
		}
		if props.ClientDescription != "" {
			if _, err := fmt.Fprintf(w,
				`<p>%s</p>`, html.EscapeString(props.ClientDescription)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<ul class="scopes">`); err != nil {
			return err
		}
		for _, scope := range props.ScopeList {
			if _, err := fmt.Fprintf(w, `<li>%s</li>`, html.EscapeString(scope)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<form method="post" action="/oauth/authorize">
<input type="hidden" name="csrf_token" value="%s">
<input type="hidden" name="client_id" value="%s">
<input type="hidden" name="redirect_uri" value="%s">
<input type="hidden" name="scope" value="%s">
<input type="hidden" name="state" value="%s">
<input type="hidden" name="nonce" value="%s">
<input type="hidden" name="code_challenge" value="%s">
<input type="hidden" name="code_challenge_method" value="%s">
<button type="submit" name="action" value="approve">Authorize</button>
<button type="submit" name="action" value="deny" class="secondary">Deny</button>
</form>
`,
			html.EscapeString(props.CSRFToken),
			html.EscapeString(props.ClientID),
			html.EscapeString(props.RedirectURI),
			html.EscapeString(props.Scope),
			html.EscapeString(props.State),
			html.EscapeString(props.Nonce),
			html.EscapeString(props.CodeChallenge),
			html.EscapeString(props.CodeChallengeMethod),
		); err != nil {
			return err
		}
		return writePageFoot(w)
	})
}

// AccessDeniedPage tells a signed-in user they lack access to a client
func AccessDeniedPage(props AccessDeniedPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writePageHead(w, "Access denied"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<p class="error">Your account (%s) is not authorized to use <strong>%s</strong>.</p>
<p>Contact your administrator to request access.</p>`,
			html.EscapeString(props.UserName),
			html.EscapeString(props.ClientName),
		); err != nil {
			return err
		}
		return writePageFoot(w)
	})
}
