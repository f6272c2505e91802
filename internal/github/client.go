// Package github publishes pull requests against the GitHub REST API, with
// retry and backoff for transient failures.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/a11ypipe/internal/config"
	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
)

// Client opens pull requests against one GitHub installation.
type Client struct {
	gh     *github.Client
	retry  *RetryConfig
	logger *logging.Logger
}

// NewClient creates an authenticated GitHub client. Fails when no token is
// configured; publication then runs without PR creation.
func NewClient(ctx context.Context, token config.Secret, logger *logging.Logger) (*Client, error) {
	if !token.IsSet() {
		return nil, fmt.Errorf("GitHub token not set")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		gh:     github.NewClient(tc),
		retry:  DefaultRetryConfig(),
		logger: logger,
	}, nil
}

// OpenPullRequest creates a pull request from head into base on repoName
// ("owner/repo") and returns its URL. Transient API errors are retried with
// exponential backoff.
func (c *Client) OpenPullRequest(ctx context.Context, repoName, title, body, head, base string) (string, error) {
	owner, repo, err := splitRepoName(repoName)
	if err != nil {
		return "", err
	}

	var pr *github.PullRequest
	_, err = retryOperation(ctx, c.retry, c.logger, func() (*github.Response, error) {
		var resp *github.Response
		pr, resp, err = c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
			Title: github.String(title),
			Body:  github.String(body),
			Head:  github.String(head),
			Base:  github.String(base),
		})
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("create pull request %s -> %s: %w", head, base, err)
	}

	url := pr.GetHTMLURL()
	c.logger.Info(ctx, "pull request created", zap.String("url", url))
	return url, nil
}

func splitRepoName(repoName string) (owner, repo string, err error) {
	parts := strings.SplitN(repoName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository name %q is not owner/repo", repoName)
	}
	return parts[0], parts[1], nil
}
