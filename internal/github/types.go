// Package github provides client and data types for the GitHub REST and
// GraphQL APIs.
//
// This package handles the interactions tt needs with GitHub: reading an
// issue to seed a task document, pushing the document back as the issue body,
// decorating the issue title with the task status, and moving the issue's
// card on a Projects (v2) board.
package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/comandaflow/timetrack/internal/types"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultGraphQLEndpoint is the GitHub GraphQL API URL.
	DefaultGraphQLEndpoint = "https://api.github.com/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// APIVersion is sent in the X-GitHub-Api-Version header.
	APIVersion = "2022-11-28"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024

	// maxProjectItems is how many project items are scanned when looking up
	// an issue's card.
	maxProjectItems = 100
)

// Client provides methods to interact with the GitHub API.
type Client struct {
	Token      string        // GitHub personal access token
	Owner      string        // Repository owner (user or org)
	Repo       string        // Repository name
	BaseURL    string        // REST base URL (default: https://api.github.com)
	GraphQLURL string        // GraphQL URL (default: https://api.github.com/graphql)
	HTTPClient *http.Client  // Optional custom HTTP client
	Project    ProjectConfig // Projects (v2) board to keep in sync; zero value disables it
}

// ProjectConfig identifies a Projects (v2) board and its status field.
type ProjectConfig struct {
	ID            string                  // Project node ID (PVT_...)
	Number        int                     // Project number owned by the viewer
	StatusFieldID string                  // Single select field node ID
	Options       map[types.Status]string // Status → single select option ID
}

// Configured reports whether project status updates are enabled.
func (p ProjectConfig) Configured() bool {
	return p.ID != "" && p.Number > 0 && p.StatusFieldID != ""
}

// Issue represents an issue from the GitHub REST API.
type Issue struct {
	ID        int        `json:"id"`     // Global unique ID
	Number    int        `json:"number"` // Repository-scoped issue number
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"` // "open" or "closed"
	HTMLURL   string     `json:"html_url"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// APIError is returned when GitHub answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.Body, e.StatusCode)
}

// GraphQLError carries the messages of a GraphQL "errors" array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	if len(e.Messages) == 1 {
		return "graphql error: " + e.Messages[0]
	}
	return "graphql errors: " + strings.Join(e.Messages, "; ")
}

// graphQLRequest is the POST body of a GraphQL call.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse wraps the data and errors of a GraphQL answer.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// projectItemsResponse is the data of projectItemsQuery.
type projectItemsResponse struct {
	Viewer struct {
		ProjectV2 *struct {
			Items struct {
				Nodes []struct {
					ID      string `json:"id"`
					Content *struct {
						Number     int `json:"number"`
						Repository struct {
							Name  string `json:"name"`
							Owner struct {
								Login string `json:"login"`
							} `json:"owner"`
						} `json:"repository"`
					} `json:"content"`
				} `json:"nodes"`
			} `json:"items"`
		} `json:"projectV2"`
	} `json:"viewer"`
}
