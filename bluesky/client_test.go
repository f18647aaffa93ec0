package bluesky

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/errors"
)

// fakePDS is a minimal XRPC endpoint covering session creation and record
// creation.
type fakePDS struct {
	sessions      atomic.Int32
	records       atomic.Int32
	rejectLogin   bool
	lastText      string
	lastDid       string
	lastAccessJwt string
}

func (f *fakePDS) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xrpc/com.atproto.server.createSession":
			f.sessions.Add(1)
			if f.rejectLogin {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "AuthenticationRequired", "message": "Invalid identifier or password",
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"accessJwt":  "access-token",
				"refreshJwt": "refresh-token",
				"handle":     "tester.bsky.social",
				"did":        "did:plc:tester",
			})

		case "/xrpc/com.atproto.repo.createRecord":
			f.records.Add(1)
			f.lastAccessJwt = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

			var body struct {
				Repo   string `json:"repo"`
				Record struct {
					Text string `json:"text"`
				} `json:"record"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.lastDid = body.Repo
			f.lastText = body.Record.Text

			json.NewEncoder(w).Encode(map[string]string{
				"uri": "at://did:plc:tester/app.bsky.feed.post/abc123",
				"cid": "bafyfake",
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func testClient(t *testing.T, pds *fakePDS) *Client {
	t.Helper()

	srv := httptest.NewServer(pds.handler())
	t.Cleanup(srv.Close)

	return NewClient(Config{
		PDSHost:        srv.URL,
		Identifier:     "tester.bsky.social",
		AppPassword:    "app-pass",
		PostsPerMinute: 60000, // no limiter waits in tests
	}, nil)
}

func TestPublishPost(t *testing.T) {
	pds := &fakePDS{}
	c := testClient(t, pds)

	ref, err := c.PublishPost(context.Background(), "hello feed")
	require.NoError(t, err)

	assert.Contains(t, ref.URI, "app.bsky.feed.post")
	assert.Equal(t, "hello feed", pds.lastText)
	assert.Equal(t, "did:plc:tester", pds.lastDid)
	assert.Equal(t, "access-token", pds.lastAccessJwt)
}

func TestPublishReusesSession(t *testing.T) {
	pds := &fakePDS{}
	c := testClient(t, pds)

	require.NoError(t, c.Publish(context.Background(), "one"))
	require.NoError(t, c.Publish(context.Background(), "two"))

	assert.Equal(t, int32(1), pds.sessions.Load())
	assert.Equal(t, int32(2), pds.records.Load())
}

func TestPublishRejectedCredentials(t *testing.T) {
	pds := &fakePDS{rejectLogin: true}
	c := testClient(t, pds)

	err := c.Publish(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsAuthError(err))
}

func TestPublishUnconfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.False(t, c.IsConfigured())

	err := c.Publish(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsAuthError(err))
}

func TestPublishTruncatesLongText(t *testing.T) {
	pds := &fakePDS{}
	c := testClient(t, pds)

	long := strings.Repeat("a", 400)
	require.NoError(t, c.Publish(context.Background(), long))

	assert.Len(t, []rune(pds.lastText), maxPostLength)
	assert.True(t, strings.HasSuffix(pds.lastText, "…"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 300))
	assert.Len(t, []rune(truncate(strings.Repeat("é", 301), 300)), 300)
}
