package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// contributionsQuery is the document sent to the GitHub GraphQL API. Its text
// is part of the upstream contract; contributionsCollection only covers the
// trailing twelve months.
const contributionsQuery = `
query($username: String!) {
    user(login: $username) {
        contributionsCollection {
            totalCommitContributions
            totalPullRequestContributions
            totalIssueContributions
            totalPullRequestReviewContributions
            totalRepositoryContributions
            restrictedContributionsCount
            contributionCalendar {
                totalContributions
                weeks {
                    contributionDays {
                        date
                        contributionCount
                        contributionLevel
                    }
                }
            }
            commitContributionsByRepository(maxRepositories: 100) {
                repository {
                    nameWithOwner
                    isPrivate
                }
                contributions {
                    totalCount
                }
            }
        }
    }
}
`

// CalendarDay is one day cell as returned by the calendar query.
type CalendarDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
	ContributionLevel string `json:"contributionLevel"`
}

// CalendarWeek groups the day cells the way the upstream nests them.
type CalendarWeek struct {
	ContributionDays []CalendarDay `json:"contributionDays"`
}

// RepoContribution is the per-repository commit total. The repository name
// comes back regardless of the isPrivate flag, so consumers must not pass it
// through to public surfaces unchecked.
type RepoContribution struct {
	Repository struct {
		NameWithOwner string `json:"nameWithOwner"`
		IsPrivate     bool   `json:"isPrivate"`
	} `json:"repository"`
	Contributions struct {
		TotalCount int `json:"totalCount"`
	} `json:"contributions"`
}

// ContributionsPayload mirrors the contributionsCollection response shape.
// Flattening the nested calendar is left to the aggregation layer.
type ContributionsPayload struct {
	TotalCommitContributions            int `json:"totalCommitContributions"`
	TotalPullRequestContributions       int `json:"totalPullRequestContributions"`
	TotalIssueContributions             int `json:"totalIssueContributions"`
	TotalPullRequestReviewContributions int `json:"totalPullRequestReviewContributions"`
	TotalRepositoryContributions        int `json:"totalRepositoryContributions"`
	RestrictedContributionsCount        int `json:"restrictedContributionsCount"`
	ContributionCalendar                struct {
		TotalContributions int            `json:"totalContributions"`
		Weeks              []CalendarWeek `json:"weeks"`
	} `json:"contributionCalendar"`
	CommitContributionsByRepository []RepoContribution `json:"commitContributionsByRepository"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionsResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection ContributionsPayload `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchContributions returns the contribution collection for username. The
// GraphQL endpoint requires authentication, so an anonymous credential yields
// no payload and no error. An unknown user also yields no payload.
func (c *Client) FetchContributions(ctx context.Context, username string, cred Credential) (*ContributionsPayload, error) {
	if !cred.Authenticated() {
		return nil, nil
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     contributionsQuery,
		Variables: map[string]any{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, cred)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.graphqlClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s - %s", ErrUpstreamRejected, resp.Status, strings.TrimSpace(string(respBody)))
	}

	var decoded contributionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamRejected, err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql: %s", ErrUpstreamRejected, decoded.Errors[0].Message)
	}
	if decoded.Data.User == nil {
		return nil, nil
	}

	payload := decoded.Data.User.ContributionsCollection
	return &payload, nil
}
