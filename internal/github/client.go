package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/comandaflow/timetrack/internal/types"
)

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:      token,
		Owner:      owner,
		Repo:       repo,
		BaseURL:    DefaultAPIEndpoint,
		GraphQLURL: DefaultGraphQLEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	cp := *c
	cp.HTTPClient = httpClient
	return &cp
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := *c
	cp.BaseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// WithGraphQLURL returns a new client with a custom GraphQL endpoint.
func (c *Client) WithGraphQLURL(graphQLURL string) *Client {
	cp := *c
	cp.GraphQLURL = graphQLURL
	return &cp
}

// WithProject returns a new client that keeps the given project board in sync.
func (c *Client) WithProject(project ProjectConfig) *Client {
	cp := *c
	cp.Project = project
	return &cp
}

// repoPath returns the "owner/repo" path segment.
func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// authClient returns the HTTP client with the token attached as a Bearer
// credential on every request.
func (c *Client) authClient() *http.Client {
	base := c.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}
	if c.Token == "" {
		return base
	}

	cp := *base
	cp.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token}),
		Base:   base.Transport,
	}
	return &cp
}

// doRequest performs a single authenticated HTTP request. Failed requests
// are not retried.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", APIVersion)
	req.Header.Set("User-Agent", "tt")

	resp, err := c.authClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

// graphql runs a GraphQL query and decodes its data into out.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	respBody, err := c.doRequest(ctx, http.MethodPost, c.GraphQLURL, graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("failed to parse graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse graphql data: %w", err)
	}
	return nil
}

// FetchIssue retrieves a single issue by its number.
func (c *Client) FetchIssue(ctx context.Context, number int) (*types.Issue, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}

	return issue.toIssue(), nil
}

// UpdateIssueBody replaces the body of an issue.
func (c *Client) UpdateIssueBody(ctx context.Context, number int, body string) error {
	return c.updateIssue(ctx, number, map[string]interface{}{"body": body})
}

// UpdateIssueTitleAndBody replaces both title and body of an issue.
func (c *Client) UpdateIssueTitleAndBody(ctx context.Context, number int, title, body string) error {
	return c.updateIssue(ctx, number, map[string]interface{}{"title": title, "body": body})
}

// updateIssue updates an existing issue in GitHub.
// GitHub uses PATCH for issue updates.
func (c *Client) updateIssue(ctx context.Context, number int, updates map[string]interface{}) error {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	if _, err := c.doRequest(ctx, http.MethodPatch, urlStr, updates); err != nil {
		return fmt.Errorf("failed to update issue #%d: %w", number, err)
	}
	return nil
}

// toIssue converts the REST representation into the tracker's issue type.
func (i *Issue) toIssue() *types.Issue {
	return &types.Issue{
		Number: i.Number,
		Title:  i.Title,
		Body:   i.Body,
	}
}

// ParseRepo splits "owner/repo" or a github.com repository URL into its parts.
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", errors.New("repository is empty")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", "", fmt.Errorf("invalid repository URL %q: %w", s, err)
		}
		s = u.Path
	} else if strings.HasPrefix(s, "git@") {
		if i := strings.Index(s, ":"); i >= 0 {
			s = s[i+1:]
		}
	}

	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: want owner/repo", s)
	}
	return parts[0], parts[1], nil
}
