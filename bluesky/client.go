// Package bluesky publishes posts to a Bluesky account over the AT
// Protocol's XRPC interface.
package bluesky

import (
	"context"
	"strings"
	"sync"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/newspulse/newspulse/errors"
)

const (
	// DefaultPDSHost is the main Bluesky PDS.
	DefaultPDSHost = "https://bsky.social"

	// maxPostLength is the feed post grapheme limit. Rune count is a close
	// enough stand-in for the text the generator produces.
	maxPostLength = 300
)

// Config holds Bluesky account settings.
type Config struct {
	PDSHost     string
	Identifier  string // handle or DID
	AppPassword string

	// PostsPerMinute caps the publish rate. Zero means 10.
	PostsPerMinute int
}

// Client is an authenticated Bluesky publisher. The XRPC session is created
// lazily on first publish and refreshed when the PDS reports an expired
// token, so a daemon that posts a few times a day never has to log in more
// than once per token lifetime.
type Client struct {
	config  Config
	logger  *zap.SugaredLogger
	limiter *rate.Limiter

	mu   sync.Mutex
	xrpc *xrpc.Client
}

// PostRef identifies a created post on the PDS.
type PostRef struct {
	URI string
	CID string
}

// NewClient creates a Bluesky client. A nil logger disables logging.
func NewClient(config Config, logger *zap.SugaredLogger) *Client {
	if config.PDSHost == "" {
		config.PDSHost = DefaultPDSHost
	}
	if config.PostsPerMinute <= 0 {
		config.PostsPerMinute = 10
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		config:  config,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.PostsPerMinute)), 1),
	}
}

// IsConfigured returns true when account credentials are present.
func (c *Client) IsConfigured() bool {
	return c.config.Identifier != "" && c.config.AppPassword != ""
}

// Publish creates a feed post with the given text. Text over the post
// length limit is truncated with an ellipsis rather than rejected. Returns
// an auth error when the PDS rejects the credentials and a publish error
// for anything else.
func (c *Client) Publish(ctx context.Context, text string) error {
	_, err := c.PublishPost(ctx, text)
	return err
}

// PublishPost is Publish returning the created record's reference.
func (c *Client) PublishPost(ctx context.Context, text string) (*PostRef, error) {
	if !c.IsConfigured() {
		return nil, errors.Wrap(errors.ErrAuth, "Bluesky credentials not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	text = truncate(text, maxPostLength)

	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := c.createPost(ctx, client, text)
	if err != nil && isExpiredToken(err) {
		// Token aged out between posts. Refresh and retry once; if the
		// refresh token is also stale, fall back to a fresh login.
		if rerr := c.refreshSession(ctx, client); rerr != nil {
			c.xrpc = nil
			if client, err = c.session(ctx); err != nil {
				return nil, err
			}
		}
		ref, err = c.createPost(ctx, client, text)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrPublish, "creating post on %s: %v", c.config.PDSHost, err)
	}

	c.logger.Infow("Published post",
		"uri", ref.URI,
		"chars", len(text))
	return ref, nil
}

// session returns the cached authenticated client, logging in if needed.
// Caller holds c.mu.
func (c *Client) session(ctx context.Context) (*xrpc.Client, error) {
	if c.xrpc != nil {
		return c.xrpc, nil
	}

	client := &xrpc.Client{Host: c.config.PDSHost}
	session, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: c.config.Identifier,
		Password:   c.config.AppPassword,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrAuth, "PDS %s rejected session for %s: %v", c.config.PDSHost, c.config.Identifier, err)
	}

	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}

	c.logger.Debugw("Created Bluesky session",
		"handle", session.Handle,
		"did", session.Did)

	c.xrpc = client
	return client, nil
}

// refreshSession swaps the access token using the refresh token.
func (c *Client) refreshSession(ctx context.Context, client *xrpc.Client) error {
	if client.Auth == nil {
		return errors.New("no session to refresh")
	}

	refreshClient := &xrpc.Client{
		Host: client.Host,
		Auth: &xrpc.AuthInfo{AccessJwt: client.Auth.RefreshJwt},
	}

	session, err := comatproto.ServerRefreshSession(ctx, refreshClient)
	if err != nil {
		return errors.Wrapf(err, "refreshing session at %s", client.Host)
	}

	client.Auth.AccessJwt = session.AccessJwt
	client.Auth.RefreshJwt = session.RefreshJwt
	client.Auth.Handle = session.Handle
	client.Auth.Did = session.Did
	return nil
}

func (c *Client) createPost(ctx context.Context, client *xrpc.Client, text string) (*PostRef, error) {
	post := &appbsky.FeedPost{
		Text:      text,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	resp, err := comatproto.RepoCreateRecord(ctx, client, &comatproto.RepoCreateRecord_Input{
		Collection: "app.bsky.feed.post",
		Repo:       client.Auth.Did,
		Record:     &lexutil.LexiconTypeDecoder{Val: post},
	})
	if err != nil {
		return nil, err
	}
	return &PostRef{URI: resp.Uri, CID: resp.Cid}, nil
}

func isExpiredToken(err error) bool {
	s := err.Error()
	return strings.Contains(s, "ExpiredToken") || strings.Contains(s, "InvalidToken")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
