package discord

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketbot/internal/platform"
)

// NewSession creates a bot session subscribed to guild events only.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// GatewayOptions configures the gateway.
type GatewayOptions struct {
	GuildID      string
	SyncCommands bool
	Handler      platform.InteractionHandler
	// OnChannelDelete is called with the id of every deleted channel.
	OnChannelDelete func(channelID string)
	Logger          *zap.Logger
}

// Gateway owns the websocket session and routes gateway events.
type Gateway struct {
	session *discordgo.Session
	client  *Client
	opts    GatewayOptions
	logger  *zap.Logger
	ready   atomic.Bool
	synced  atomic.Int32
}

// NewGateway wires the session handlers. Call Open to connect.
func NewGateway(session *discordgo.Session, opts GatewayOptions) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		session: session,
		client:  NewClient(session),
		opts:    opts,
		logger:  logger.Named("gateway"),
	}
	session.AddHandler(g.onReady)
	session.AddHandler(g.onChannelDelete)
	session.AddHandler(g.onInteraction)
	return g
}

// Open connects to the gateway.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (g *Gateway) Close() error {
	g.ready.Store(false)
	return g.session.Close()
}

// Ready reports whether the session has received READY.
func (g *Gateway) Ready() bool {
	return g.ready.Load()
}

// Ping reports gateway health for the readiness check.
func (g *Gateway) Ping(context.Context) error {
	if !g.Ready() {
		return fmt.Errorf("discord gateway not ready")
	}
	return nil
}

// SyncedCommands returns how many commands the last sync registered.
func (g *Gateway) SyncedCommands() int {
	return int(g.synced.Load())
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	g.ready.Store(true)
	if g.opts.SyncCommands && g.opts.GuildID != "" && r.Application != nil {
		synced, err := s.ApplicationCommandBulkOverwrite(r.Application.ID, g.opts.GuildID, Commands())
		if err != nil {
			// The bot keeps running with whatever commands were registered before.
			g.logger.Error("command sync failed", zap.Error(err))
		} else {
			g.synced.Store(int32(len(synced)))
			g.logger.Info("synced slash commands", zap.Int("count", len(synced)))
		}
	}
	if r.User != nil {
		g.logger.Info("bot online", zap.String("user", r.User.Username), zap.String("user_id", r.User.ID))
	}
}

func (g *Gateway) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	if e.Channel == nil || g.opts.OnChannelDelete == nil {
		return
	}
	g.opts.OnChannelDelete(e.ID)
}

func (g *Gateway) onInteraction(s *discordgo.Session, e *discordgo.InteractionCreate) {
	if g.opts.Handler == nil {
		return
	}
	in, ok := parseInteraction(e.Interaction)
	if !ok {
		return
	}
	if !g.inScope(in) {
		g.logger.Debug("ignoring interaction from another guild",
			zap.String("guild_id", in.Invocation.GuildID),
			zap.String("name", in.Name))
		return
	}
	ctx := context.Background()
	g.enrich(ctx, &in)
	g.opts.Handler.Handle(ctx, in, newResponder(s, e.Interaction))
}

// inScope reports whether the interaction came from the configured guild.
// Direct messages have no guild and are dropped too.
func (g *Gateway) inScope(in platform.Interaction) bool {
	return g.opts.GuildID == "" || in.Invocation.GuildID == g.opts.GuildID
}

// enrich fills the channel name and guild icon, preferring the state cache.
func (g *Gateway) enrich(ctx context.Context, in *platform.Interaction) {
	inv := &in.Invocation
	if ch, err := g.session.State.Channel(inv.ChannelID); err == nil {
		inv.ChannelName = ch.Name
	} else if ch, err := g.client.Channel(ctx, inv.ChannelID); err == nil {
		inv.ChannelName = ch.Name
	} else {
		g.logger.Warn("channel lookup failed", zap.String("channel_id", inv.ChannelID), zap.Error(err))
	}
	if inv.GuildID == "" {
		return
	}
	if guild, err := g.session.State.Guild(inv.GuildID); err == nil && guild.Icon != "" {
		inv.GuildIcon = guild.IconURL("")
	}
}
