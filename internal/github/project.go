package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comandaflow/timetrack/internal/types"
)

// ErrProjectItemNotFound is returned when the issue has no card on the board.
var ErrProjectItemNotFound = errors.New("issue not found in project")

const projectItemsQuery = `query($number: Int!, $first: Int!) {
  viewer {
    projectV2(number: $number) {
      items(first: $first) {
        nodes {
          id
          content {
            ... on Issue {
              number
              repository { name owner { login } }
            }
          }
        }
      }
    }
  }
}`

const updateStatusMutation = `mutation($project: ID!, $item: ID!, $field: ID!, $option: String!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $project
    itemId: $item
    fieldId: $field
    value: { singleSelectOptionId: $option }
  }) {
    projectV2Item { id }
  }
}`

// UpdateProjectStatus moves the issue's card to the column configured for
// status. It does nothing when no project is configured or when status has
// no column ("none").
func (c *Client) UpdateProjectStatus(ctx context.Context, number int, status types.Status) error {
	if !c.Project.Configured() || status == types.StatusNone {
		return nil
	}

	option := c.Project.Options[status]
	if option == "" {
		return fmt.Errorf("no project option configured for status %q", status)
	}

	itemID, err := c.findProjectItem(ctx, number)
	if err != nil {
		return err
	}

	vars := map[string]interface{}{
		"project": c.Project.ID,
		"item":    itemID,
		"field":   c.Project.StatusFieldID,
		"option":  option,
	}
	if err := c.graphql(ctx, updateStatusMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to update project status of #%d: %w", number, err)
	}
	return nil
}

// findProjectItem returns the project item ID of the issue in this repository.
func (c *Client) findProjectItem(ctx context.Context, number int) (string, error) {
	var data projectItemsResponse
	vars := map[string]interface{}{
		"number": c.Project.Number,
		"first":  maxProjectItems,
	}
	if err := c.graphql(ctx, projectItemsQuery, vars, &data); err != nil {
		return "", fmt.Errorf("failed to list project items: %w", err)
	}
	if data.Viewer.ProjectV2 == nil {
		return "", fmt.Errorf("project %d not found", c.Project.Number)
	}

	for _, node := range data.Viewer.ProjectV2.Items.Nodes {
		content := node.Content
		// Draft issues and pull requests have no issue content.
		if content == nil || content.Number != number {
			continue
		}
		if !strings.EqualFold(content.Repository.Name, c.Repo) {
			continue
		}
		if login := content.Repository.Owner.Login; login != "" && c.Owner != "" && !strings.EqualFold(login, c.Owner) {
			continue
		}
		return node.ID, nil
	}
	return "", fmt.Errorf("%w: #%d in project %d", ErrProjectItemNotFound, number, c.Project.Number)
}
