// Package matrix is the chat transport: it syncs with the homeserver,
// filters inbound messages and sends replies.
package matrix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/pandito-bot/pandito/common/retry"
)

// Config holds the Matrix connection settings.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// Rooms lists the room IDs the bot serves. Messages from other rooms
	// are ignored.
	Rooms []string
	// DB persists the sync token across restarts. When nil the in-memory
	// store is used and room history replays on every start.
	DB *sql.DB
}

// MessageHandler processes one inbound room message.
type MessageHandler func(ctx context.Context, evt *event.Event)

// Client wraps the mautrix client with room filtering and send retries.
type Client struct {
	client  *mautrix.Client
	cfg     *Config
	stopCh  chan struct{}
	handler MessageHandler
	log     *slog.Logger
}

// New creates a Client for cfg.
func New(cfg *Config) (*Client, error) {
	mc, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("matrix: create client: %w", err)
	}

	c := &Client{
		client: mc,
		cfg:    cfg,
		stopCh: make(chan struct{}),
		log:    slog.Default().With("component", "matrix"),
	}

	if cfg.DB != nil {
		mc.Store = newDBSyncStore(cfg.DB)
	} else {
		c.log.Warn("no database configured for sync state; history will replay on restart")
	}

	return c, nil
}

// Start joins the configured rooms and begins syncing in the background.
// Sync errors trigger reconnection with exponential backoff; without it a
// transient homeserver error would leave the bot deaf.
func (c *Client) Start(ctx context.Context, handler MessageHandler) error {
	c.handler = handler

	syncer := c.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, c.handleMessage)

	for _, roomID := range c.cfg.Rooms {
		if err := c.joinRoom(ctx, id.RoomID(roomID)); err != nil {
			return fmt.Errorf("matrix: join room %s: %w", roomID, err)
		}
	}

	go func() {
		const (
			backoffMin = 2 * time.Second
			backoffMax = 5 * time.Minute
		)
		backoff := backoffMin
		for {
			backoff = backoffMin
			if err := c.client.Sync(); err != nil {
				select {
				case <-c.stopCh:
					return
				default:
				}
				c.log.Error("sync stopped; reconnecting", "error", err, "backoff", backoff)
				select {
				case <-c.stopCh:
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > backoffMax {
					backoff = backoffMax
				}
				continue
			}
			// Sync returns nil only after a clean StopSync.
			return
		}
	}()

	return nil
}

// Stop terminates the sync loop.
func (c *Client) Stop() {
	close(c.stopCh)
	c.client.StopSync()
}

// UserID returns the bot's own Matrix user ID.
func (c *Client) UserID() string {
	return c.cfg.UserID
}

// sendRetry is the retry policy for outbound messages. Sends are cheap and
// idempotent enough that a couple of quick retries beat dropping a reply.
var sendRetry = retry.Config{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, roomID, text string) error {
	err := retry.Do(ctx, sendRetry, func() error {
		_, err := c.client.SendText(ctx, id.RoomID(roomID), text)
		return err
	})
	if err != nil {
		return fmt.Errorf("matrix: send text: %w", err)
	}
	return nil
}

// SendFormatted sends an HTML message with a plain-text fallback body.
func (c *Client) SendFormatted(ctx context.Context, roomID, html, plaintext string) error {
	content := event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          plaintext,
		Format:        event.FormatHTML,
		FormattedBody: html,
	}
	err := retry.Do(ctx, sendRetry, func() error {
		_, err := c.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, &content)
		return err
	})
	if err != nil {
		return fmt.Errorf("matrix: send formatted: %w", err)
	}
	return nil
}

// SendNotice sends a notice, used for startup announcements since notices
// do not trigger client notifications.
func (c *Client) SendNotice(ctx context.Context, roomID, text string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    text,
	}
	_, err := c.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, &content)
	if err != nil {
		return fmt.Errorf("matrix: send notice: %w", err)
	}
	return nil
}

// SetTyping toggles the typing indicator while a slow collaborator runs.
func (c *Client) SetTyping(ctx context.Context, roomID string, typing bool, timeout time.Duration) error {
	_, err := c.client.UserTyping(ctx, id.RoomID(roomID), typing, timeout)
	if err != nil {
		return fmt.Errorf("matrix: set typing: %w", err)
	}
	return nil
}

// ServesRoom reports whether roomID is one of the configured rooms.
func (c *Client) ServesRoom(roomID string) bool {
	for _, room := range c.cfg.Rooms {
		if room == roomID {
			return true
		}
	}
	return false
}

// handleMessage filters inbound events before the app sees them: own
// messages, non-text messages and foreign rooms are dropped here.
func (c *Client) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(c.cfg.UserID) {
		return
	}
	content := evt.Content.AsMessage()
	if content == nil || content.MsgType != event.MsgText {
		return
	}
	if !c.ServesRoom(evt.RoomID.String()) {
		return
	}
	if c.handler != nil {
		c.handler(ctx, evt)
	}
}

func (c *Client) joinRoom(ctx context.Context, roomID id.RoomID) error {
	_, err := c.client.JoinRoomByID(ctx, roomID)
	if err != nil {
		// M_FORBIDDEN also covers "already a member" on some homeservers.
		if errors.Is(err, mautrix.MForbidden) {
			c.log.Warn("could not join room, continuing", "room", roomID)
			return nil
		}
		return err
	}
	return nil
}
