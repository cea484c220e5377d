package webreg

import (
	"context"
	"net/url"
	"strings"

	"meikan/internal/logging"
	"meikan/internal/registry"
)

const loginPath = "/login"

// Authenticate performs the form login: fetch the login page, extract the
// CSRF token, submit credentials, and verify the session was established.
func (c *Client) Authenticate(ctx context.Context) error {
	page, err := c.get(ctx, c.baseURL+loginPath)
	if err != nil {
		return err
	}

	form := page.Find("form#login-form")
	if form.Length() == 0 {
		form = page.Find("form[action*='login']")
	}
	if form.Length() == 0 {
		return registry.Wrap(registry.ErrParse, "login", "login form not found", nil)
	}

	token, ok := form.Find("input[name='csrf_token']").Attr("value")
	if !ok {
		token, ok = form.Find("input[name='_token']").Attr("value")
	}
	if !ok {
		return registry.Wrap(registry.ErrParse, "login", "csrf token not found", nil)
	}

	values := url.Values{}
	values.Set("csrf_token", token)
	values.Set("username", c.username)
	values.Set("password", c.password)

	result, err := c.postForm(ctx, c.baseURL+loginPath, values)
	if err != nil {
		return err
	}

	// A failed login re-renders the form with an error banner; success
	// redirects to a page that has neither.
	if result.Find("form#login-form, .login-error, .alert-danger").Length() > 0 {
		message := strings.TrimSpace(result.Find(".login-error, .alert-danger").First().Text())
		if message == "" {
			message = "credentials rejected"
		}
		return registry.Wrap(registry.ErrAuth, "login", message, nil)
	}

	c.logger.Debug("registry session established", logging.String("base_url", c.baseURL))
	return nil
}
