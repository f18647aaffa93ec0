// Package pulse runs the long-lived polling daemon: a slow timer that
// checks the newsletter mailbox and generates new posts, and a fast timer
// that publishes posts whose slot has arrived. The two loops communicate
// only through the post store.
package pulse

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newspulse/newspulse/generator"
	"github.com/newspulse/newspulse/newsletter"
	"github.com/newspulse/newspulse/schedule"
)

// Generator produces post drafts from a newsletter issue.
type Generator interface {
	Run(ctx context.Context, msg *newsletter.Message, topicCount int) ([]generator.Draft, error)
}

// Publisher sends finished post text to the social platform.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// Config holds daemon timing and pipeline settings.
type Config struct {
	Sender          string
	TopicCount      int
	Days            int
	ContentInterval time.Duration
	PublishInterval time.Duration

	// SkipStartupCheck suppresses the content check normally run
	// immediately at startup.
	SkipStartupCheck bool
}

// DefaultConfig returns the stock timing: content every 6 hours, due-post
// sweep every minute.
func DefaultConfig() Config {
	return Config{
		TopicCount:      5,
		Days:            3,
		ContentInterval: 6 * time.Hour,
		PublishInterval: time.Minute,
	}
}

// Daemon owns the two polling loops.
type Daemon struct {
	fetcher     newsletter.Fetcher
	generator   Generator
	publisher   Publisher
	store       *schedule.Store
	distributor *schedule.Distributor
	state       *State
	config      Config
	logger      *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	contentTicks int64
	publishTicks int64
}

// UpdateSettings applies new pipeline settings to subsequent ticks. Timer
// intervals are fixed for the life of the daemon; sender, topic count, and
// day window take effect on the next content check.
func (d *Daemon) UpdateSettings(sender string, topicCount, days int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sender != "" {
		d.config.Sender = sender
	}
	if topicCount > 0 {
		d.config.TopicCount = topicCount
	}
	if days > 0 {
		d.config.Days = days
	}
}

// settings returns a snapshot of the mutable pipeline settings.
func (d *Daemon) settings() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config
}

// NewDaemon wires a daemon from its collaborators. A nil logger disables
// logging.
func NewDaemon(fetcher newsletter.Fetcher, gen Generator, publisher Publisher, store *schedule.Store, distributor *schedule.Distributor, cfg Config, log *zap.SugaredLogger) *Daemon {
	if cfg.TopicCount <= 0 {
		cfg.TopicCount = 5
	}
	if cfg.Days <= 0 {
		cfg.Days = 3
	}
	if cfg.ContentInterval <= 0 {
		cfg.ContentInterval = 6 * time.Hour
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = time.Minute
	}
	if distributor == nil {
		distributor = schedule.NewDistributor(nil)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		fetcher:     fetcher,
		generator:   gen,
		publisher:   publisher,
		store:       store,
		distributor: distributor,
		state:       NewState(),
		config:      cfg,
		logger:      log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches both loops and, unless suppressed, runs an immediate
// content check so a freshly started daemon does not sit idle for six
// hours.
func (d *Daemon) Start() {
	d.wg.Add(2)
	go d.contentLoop()
	go d.publishLoop()

	d.logger.Infow("Daemon started",
		"sender", d.config.Sender,
		"content_interval", d.config.ContentInterval,
		"publish_interval", d.config.PublishInterval)

	if total, available, err := memoryStats(); err == nil {
		d.logger.Debugw("System memory",
			"total_mb", total/1024/1024,
			"available_mb", available/1024/1024)
	}
}

// Stop cancels both loops and waits for in-flight ticks to finish.
func (d *Daemon) Stop() {
	d.cancel()
	d.wg.Wait()
	d.logger.Infow("Daemon stopped")
}

func (d *Daemon) contentLoop() {
	defer d.wg.Done()

	if !d.config.SkipStartupCheck {
		d.contentTick()
	}

	ticker := time.NewTicker(d.config.ContentInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.contentTick()
		}
	}
}

func (d *Daemon) publishLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.publishTick()
		}
	}
}

func (d *Daemon) contentTick() {
	defer d.recoverTick("content")

	d.mu.Lock()
	d.contentTicks++
	tick := d.contentTicks
	d.mu.Unlock()

	if added, err := d.CheckContent(d.ctx); err != nil {
		d.logger.Warnw("Content check failed", "tick", tick, "error", err)
	} else if added > 0 {
		d.logger.Infow("Content check scheduled new posts", "tick", tick, "posts", added)
	}

	if total, available, err := memoryStats(); err == nil {
		d.logger.Debugw("Daemon status",
			"content_ticks", tick,
			"memory_total_mb", total/1024/1024,
			"memory_available_mb", available/1024/1024)
	}
}

func (d *Daemon) publishTick() {
	defer d.recoverTick("publish")

	d.mu.Lock()
	d.publishTicks++
	tick := d.publishTicks
	d.mu.Unlock()

	published, failed, err := d.PublishDue(d.ctx)
	if err != nil {
		d.logger.Warnw("Due-post sweep failed", "tick", tick, "error", err)
		return
	}
	if published > 0 || failed > 0 {
		d.logger.Infow("Due-post sweep finished",
			"tick", tick,
			"published", published,
			"failed", failed)
	}
}

// recoverTick keeps a panicking tick from taking the whole daemon down.
func (d *Daemon) recoverTick(loop string) {
	if r := recover(); r != nil {
		d.logger.Errorw("Tick panicked", "loop", loop, "panic", r)
	}
}

// CheckContent fetches the latest newsletter, generates posts for a new
// issue, and appends them to the store. Returns the number of posts
// scheduled; zero when the mailbox is empty or the issue was already
// processed.
func (d *Daemon) CheckContent(ctx context.Context) (int, error) {
	cfg := d.settings()

	msg, err := d.fetcher.Latest(ctx, cfg.Sender)
	if err != nil {
		return 0, err
	}
	if msg == nil {
		d.logger.Debugw("No newsletter found", "sender", cfg.Sender)
		return 0, nil
	}
	if d.state.Seen(msg) {
		d.logger.Debugw("Newsletter already processed", "subject", msg.Subject)
		return 0, nil
	}

	drafts, err := d.generator.Run(ctx, msg, cfg.TopicCount)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	posts, err := d.distributor.Distribute(toScheduleDrafts(drafts), cfg.Days, now, now)
	if err != nil {
		return 0, err
	}
	for i := range posts {
		posts[i].SourceSubject = msg.Subject
	}

	if err := d.store.Append(posts); err != nil {
		return 0, err
	}

	// Only mark the issue seen once its posts are durably stored, so a
	// failed append gets retried next tick.
	d.state.MarkSeen(msg)

	return len(posts), nil
}

// PublishDue publishes every pending post whose slot has passed, marking
// each published or failed in the store. One post failing does not stop
// the rest of the sweep.
func (d *Daemon) PublishDue(ctx context.Context) (published, failed int, err error) {
	due, err := d.store.Pending(time.Now())
	if err != nil {
		return 0, 0, err
	}

	for _, post := range due {
		if ctx.Err() != nil {
			return published, failed, ctx.Err()
		}

		if perr := d.publisher.Publish(ctx, post.Content); perr != nil {
			d.logger.Errorw("Publish failed",
				"post_id", post.ID,
				"topic", post.Topic,
				"error", perr)
			if merr := d.store.MarkFailed(post.ID); merr != nil {
				d.logger.Errorw("Failed to mark post failed", "post_id", post.ID, "error", merr)
			}
			failed++
			continue
		}

		if merr := d.store.MarkPublished(post.ID, time.Now()); merr != nil {
			d.logger.Errorw("Failed to mark post published", "post_id", post.ID, "error", merr)
		}
		d.logger.Infow("Published scheduled post",
			"post_id", post.ID,
			"topic", post.Topic)
		published++
	}

	return published, failed, nil
}

func toScheduleDrafts(drafts []generator.Draft) []schedule.Draft {
	out := make([]schedule.Draft, len(drafts))
	for i, d := range drafts {
		out[i] = schedule.Draft{Topic: d.Topic.Title, Content: d.Content}
	}
	return out
}
