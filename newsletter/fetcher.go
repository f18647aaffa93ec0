// Package newsletter fetches the most recent newsletter issue from an IMAP
// mailbox and reduces it to readable text suitable for prompting.
package newsletter

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/newspulse/newspulse/errors"
)

// Message is a fetched newsletter issue. ID is the RFC 5322 Message-ID and
// is the deduplication key for generation runs; it may be empty when the
// sender omits the header.
type Message struct {
	ID      string
	Subject string
	Date    time.Time
	Body    string
}

// Fetcher retrieves the latest newsletter issue from some mail source.
type Fetcher interface {
	// Latest returns the newest message from sender, or (nil, nil) when the
	// mailbox holds none.
	Latest(ctx context.Context, sender string) (*Message, error)
}

// IMAPConfig holds connection settings for an IMAP mailbox.
type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string

	// AllowInsecure dials without TLS. Only for local test servers.
	AllowInsecure bool
}

// IMAPFetcher fetches newsletters over IMAP. Each Latest call opens a fresh
// connection and logs out afterwards; at one check every few hours a
// persistent session buys nothing and idle IMAP connections get dropped by
// most providers anyway.
type IMAPFetcher struct {
	config IMAPConfig
	logger *zap.SugaredLogger
}

// NewIMAPFetcher creates a fetcher for the given mailbox. A nil logger
// disables logging.
func NewIMAPFetcher(config IMAPConfig, logger *zap.SugaredLogger) *IMAPFetcher {
	if config.Mailbox == "" {
		config.Mailbox = "INBOX"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &IMAPFetcher{config: config, logger: logger}
}

// Latest connects, finds the newest message from sender in the configured
// mailbox, and returns its readable text. An empty sender matches the
// newest message regardless of origin. Login rejection surfaces as an auth
// error; an empty mailbox is (nil, nil), not an error.
func (f *IMAPFetcher) Latest(ctx context.Context, sender string) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := f.connect()
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to IMAP server %s", f.config.Host)
	}
	defer c.Logout()

	if err := c.Login(f.config.Username, f.config.Password); err != nil {
		return nil, errors.Wrapf(errors.ErrAuth, "IMAP login rejected for %s: %v", f.config.Username, err)
	}

	mbox, err := c.Select(f.config.Mailbox, true)
	if err != nil {
		return nil, errors.Wrapf(err, "selecting mailbox %s", f.config.Mailbox)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	seq, err := f.newestFrom(c, sender, mbox.Messages)
	if err != nil {
		return nil, err
	}
	if seq == 0 {
		f.logger.Debugw("No messages from sender", "sender", sender, "mailbox", f.config.Mailbox)
		return nil, nil
	}

	return f.fetchMessage(ctx, c, seq)
}

func (f *IMAPFetcher) connect() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", f.config.Host, f.config.Port)
	if f.config.AllowInsecure {
		return client.Dial(addr)
	}
	return client.DialTLS(addr, nil)
}

// newestFrom returns the highest sequence number matching sender, or 0 when
// nothing matches.
func (f *IMAPFetcher) newestFrom(c *client.Client, sender string, total uint32) (uint32, error) {
	if sender == "" {
		return total, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", sender)

	seqs, err := c.Search(criteria)
	if err != nil {
		return 0, errors.Wrapf(err, "searching for messages from %s", sender)
	}

	var newest uint32
	for _, s := range seqs {
		if s > newest {
			newest = s
		}
	}
	return newest, nil
}

func (f *IMAPFetcher) fetchMessage(ctx context.Context, c *client.Client, seq uint32) (*Message, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(seq)

	var section imap.BodySectionName
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	ch := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, ch)
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, errors.Wrap(err, "fetching message body")
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	raw := <-ch
	if raw == nil {
		return nil, errors.New("server returned no message for fetched sequence")
	}

	msg := &Message{}
	if raw.Envelope != nil {
		msg.ID = raw.Envelope.MessageId
		msg.Subject = raw.Envelope.Subject
		msg.Date = raw.Envelope.Date
	}

	body := raw.GetBody(&section)
	if body == nil {
		return nil, errors.New("server returned no body section")
	}

	text, subject, err := extractText(body)
	if err != nil {
		return nil, err
	}
	msg.Body = text
	if msg.Subject == "" {
		msg.Subject = subject
	}

	f.logger.Infow("Fetched newsletter",
		"subject", msg.Subject,
		"message_id", msg.ID,
		"body_chars", len(msg.Body))

	return msg, nil
}
