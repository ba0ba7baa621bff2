package main

import (
	"time"

	"github.com/comandaflow/timetrack/internal/config"
	"github.com/comandaflow/timetrack/internal/github"
	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/taskfile"
	"github.com/comandaflow/timetrack/internal/telemetry"
	"github.com/comandaflow/timetrack/internal/timeparsing"
	"github.com/comandaflow/timetrack/internal/types"
	"github.com/comandaflow/timetrack/internal/utils"
)

// newController assembles the lifecycle controller from the loaded config.
func newController() *lifecycle.Controller {
	tracker, err := newTracker(cfg)
	if err != nil {
		FatalErrorWithHint(err.Error(), "Set github.repo as owner/repo")
	}

	ctrl, err := lifecycle.New(lifecycle.Options{
		Store:    telemetry.WrapStore(taskfile.New(utils.CanonicalizePath(cfg.Tasks.Path), cfg.Location())),
		Tracker:  tracker,
		Location: cfg.Location(),
		Logger:   logger,
	})
	if err != nil {
		FatalError("%v", err)
	}
	return ctrl
}

// newTracker returns nil when GitHub is not configured. Commands then work
// on local files only and report the skipped sync as a warning.
func newTracker(c *config.Config) (lifecycle.Tracker, error) {
	gh := c.GitHub
	if gh.Token == "" || gh.Repo == "" {
		return nil, nil
	}
	owner, repo, err := github.ParseRepo(gh.Repo)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(gh.Token, owner, repo).WithProject(projectConfig(gh.Project))
	if gh.APIURL != "" {
		client = client.WithBaseURL(gh.APIURL)
	}
	if gh.GraphQLURL != "" {
		client = client.WithGraphQLURL(gh.GraphQLURL)
	}
	return telemetry.WrapTracker(client), nil
}

// projectConfig converts the string keyed option table to statuses,
// dropping keys that do not name a status.
func projectConfig(p config.ProjectConfig) github.ProjectConfig {
	options := make(map[types.Status]string, len(p.Options))
	for k, id := range p.Options {
		status := types.Status(k)
		if status.IsValid() && id != "" {
			options[status] = id
		}
	}
	return github.ProjectConfig{
		ID:            p.ID,
		Number:        p.Number,
		StatusFieldID: p.StatusFieldID,
		Options:       options,
	}
}

// parseAt resolves the --at flag. An empty value means now.
func parseAt(value string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := timeparsing.ParseRelativeTime(value, now.In(loc))
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}
