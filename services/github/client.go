package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	apiBaseURL     = "https://api.github.com"
	apiGraphQLURL  = "https://api.github.com/graphql"
	pageSize       = 100
	maxRepoPages   = 10
	retryAttempts  = 3
	retryBaseDelay = 300 * time.Millisecond
)

var (
	// ErrUpstreamUnavailable marks transport-level failures: connection
	// errors, timeouts and 5xx responses.
	ErrUpstreamUnavailable = errors.New("github upstream unavailable")
	// ErrUpstreamRejected marks definitive upstream refusals: non-2xx
	// statuses below 500 and malformed response bodies.
	ErrUpstreamRejected = errors.New("github upstream rejected request")
)

// Credential selects the API access mode for a call. Anonymous access is
// limited to public data and lower rate limits; callers branch on
// Authenticated exactly once per operation instead of checking for a token
// everywhere.
type Credential struct {
	token string
}

// Anonymous returns a credential with no token.
func Anonymous() Credential { return Credential{} }

// Token returns a credential carrying a personal access token.
func Token(token string) Credential { return Credential{token: token} }

// Authenticated reports whether the credential carries a token.
func (c Credential) Authenticated() bool { return c.token != "" }

// User is the GitHub user profile record.
type User struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"public_repos"`
	PublicGists int    `json:"public_gists"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// Repo is one repository entry from a listing call.
type Repo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Language    string `json:"language"`
	URL         string `json:"html_url"`
	UpdatedAt   string `json:"updated_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Org is one organization membership entry.
type Org struct {
	Login string `json:"login"`
}

// Client issues REST and GraphQL requests against the GitHub API. REST calls
// use a shorter timeout than the contribution query, which the upstream takes
// noticeably longer to answer.
type Client struct {
	httpClient    *http.Client
	graphqlClient *http.Client
	baseURL       string
	graphqlURL    string
}

// NewClient returns a client pointed at the public GitHub API.
func NewClient() *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		graphqlClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:       apiBaseURL,
		graphqlURL:    apiGraphQLURL,
	}
}

func (c *Client) setHeaders(req *http.Request, cred Credential) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "octoboard/1.0")
	if cred.Authenticated() {
		req.Header.Set("Authorization", "token "+cred.token)
	}
}

// getJSON issues one GET and decodes the response into out. Transport
// failures and 5xx responses are retried a few times; 4xx responses are
// definitive and returned immediately.
func (c *Client) getJSON(ctx context.Context, url string, cred Credential, out any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			c.setHeaders(req, cred)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, resp.Status)
			}
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return retry.Unrecoverable(fmt.Errorf("%w: %s - %s", ErrUpstreamRejected, resp.Status, strings.TrimSpace(string(body))))
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: decode response: %v", ErrUpstreamRejected, err))
			}
			return nil
		},
		retry.Attempts(retryAttempts),
		retry.Delay(retryBaseDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

// FetchUser returns the public profile record for username.
func (c *Client) FetchUser(ctx context.Context, username string, cred Credential) (*User, error) {
	var user User
	url := fmt.Sprintf("%s/users/%s", c.baseURL, username)
	if err := c.getJSON(ctx, url, cred, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAccessibleRepos returns every repository the credential can see. With a
// token it pages through the authenticated listing, which includes owned,
// collaborator and organization repositories; anonymously it falls back to a
// single call against the public listing for username.
func (c *Client) ListAccessibleRepos(ctx context.Context, username string, cred Credential) ([]Repo, error) {
	if !cred.Authenticated() {
		var repos []Repo
		url := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=updated", c.baseURL, username, pageSize)
		if err := c.getJSON(ctx, url, cred, &repos); err != nil {
			return nil, err
		}
		return repos, nil
	}

	var all []Repo
	// The page cap guards against a misbehaving upstream or an account with
	// thousands of accessible repositories.
	for page := 1; page <= maxRepoPages; page++ {
		url := fmt.Sprintf("%s/user/repos?per_page=%d&page=%d&affiliation=owner,collaborator,organization_member&sort=updated",
			c.baseURL, pageSize, page)
		var repos []Repo
		if err := c.getJSON(ctx, url, cred, &repos); err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if len(repos) < pageSize {
			break
		}
	}
	return all, nil
}

// ListOrganizations returns the organizations the authenticated user belongs
// to. Memberships are invisible without a token, so anonymous credentials get
// an empty result rather than an error.
func (c *Client) ListOrganizations(ctx context.Context, cred Credential) ([]Org, error) {
	if !cred.Authenticated() {
		return nil, nil
	}
	var orgs []Org
	if err := c.getJSON(ctx, c.baseURL+"/user/orgs", cred, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
