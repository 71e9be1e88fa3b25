package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubUserURL = "https://api.github.com/user"

// GitHubUser is the part of GitHub's /user response used to build a
// local account.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	ID        int64  `json:"id"`         // stable; matched against users.github_id
	Login     string `json:"login"`      // becomes the "gh_" account name
	Name      string `json:"name"`       // may be empty
	Email     string `json:"email"`      // empty when hidden in GitHub settings
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"` // copied into the user profile
}

// GitHubProvider runs the OAuth authorization code flow against GitHub.
//
// AUTHORIZATION CODE FLOW:
//  1. HandleGitHubLogin redirects the browser to AuthURL(state).
//  2. The user approves the app on GitHub.
//  3. GitHub redirects to the callback URL with a one-time "code" and the
//     same state.
//  4. Exchange trades the code for an access token server to server, so
//     the client secret never reaches the browser, then reads /user.
//
// The GitHub access token is used once and dropped; the session from then
// on is our own JWT.
type GitHubProvider struct {
	config  *oauth2.Config
	userURL string
}

// NewGitHubProvider builds a provider from the OAuth app credentials.
// callbackURL must match the one registered on GitHub exactly.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userURL: githubUserURL,
	}
}

// AuthURL is where the browser is sent to approve access. state is echoed
// back on the callback and must match the state cookie.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for an access token and loads the
// GitHub profile with it.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := p.config.Client(ctx, oauthToken)
	return fetchGitHubUser(ctx, client, p.userURL)
}

func fetchGitHubUser(ctx context.Context, client *http.Client, url string) (*GitHubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building GitHub user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}
	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &ghUser, nil
}
