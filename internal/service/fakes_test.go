package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/platform"
)

const (
	testGuildID   = "guild"
	testStaffRole = "staff"
	testLogChan   = "log"
)

// callLog records platform calls and replies in the order they happened.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type sentMessage struct {
	channelID string
	msg       domain.OutgoingMessage
}

type fakePlatform struct {
	log *callLog

	mu       sync.Mutex
	nextID   int
	channels []domain.Channel
	roles    []domain.Role
	created  []domain.ChannelSpec
	sent     []sentMessage
	pinned   []string
	deleted  []string
	reasons  []string

	// afterList runs after GuildChannels has taken its snapshot.
	afterList func()

	listErr     error
	rolesErr    error
	createErr   map[domain.ChannelKind]error
	sendErr     map[string]error
	pinErr      error
	deleteErr   error
	lookupError map[string]error
}

func newFakePlatform(log *callLog) *fakePlatform {
	return &fakePlatform{
		log:         log,
		roles:       []domain.Role{{ID: testGuildID, Name: "@everyone"}, {ID: testStaffRole, Name: "Lite"}},
		createErr:   map[domain.ChannelKind]error{},
		sendErr:     map[string]error{},
		lookupError: map[string]error{},
	}
}

func (f *fakePlatform) addChannel(ch domain.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, ch)
}

func (f *fakePlatform) GuildChannels(_ context.Context, guildID string) ([]domain.Channel, error) {
	f.log.add("list")
	f.mu.Lock()
	if f.listErr != nil {
		f.mu.Unlock()
		return nil, f.listErr
	}
	snapshot := append([]domain.Channel(nil), f.channels...)
	hook := f.afterList
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return snapshot, nil
}

func (f *fakePlatform) Channel(_ context.Context, channelID string) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lookupError[channelID]; err != nil {
		return nil, err
	}
	for i := range f.channels {
		if f.channels[i].ID == channelID {
			ch := f.channels[i]
			return &ch, nil
		}
	}
	return nil, platform.ErrChannelNotFound
}

func (f *fakePlatform) GuildRoles(context.Context, string) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return append([]domain.Role(nil), f.roles...), nil
}

func (f *fakePlatform) CreateChannel(_ context.Context, guildID string, spec domain.ChannelSpec) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[spec.Kind]; err != nil {
		f.log.add("create-failed:" + spec.Name)
		return nil, err
	}
	f.nextID++
	ch := domain.Channel{
		ID:       fmt.Sprintf("c%d", f.nextID),
		GuildID:  guildID,
		Name:     spec.Name,
		Kind:     spec.Kind,
		ParentID: spec.ParentID,
		Topic:    spec.Topic,
	}
	f.channels = append(f.channels, ch)
	f.created = append(f.created, spec)
	f.log.add("create:" + spec.Name)
	return &ch, nil
}

func (f *fakePlatform) DeleteChannel(_ context.Context, channelID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("delete:" + channelID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, channelID)
	f.reasons = append(f.reasons, reason)
	return nil
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID string, msg domain.OutgoingMessage) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("send:" + channelID)
	if err := f.sendErr[channelID]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: msg})
	return &domain.Message{ID: fmt.Sprintf("m%d", len(f.sent)), ChannelID: channelID}, nil
}

func (f *fakePlatform) PinMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("pin:" + channelID)
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinned = append(f.pinned, messageID)
	return nil
}

func (f *fakePlatform) createdCount(kind domain.ChannelKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, spec := range f.created {
		if spec.Kind == kind {
			n++
		}
	}
	return n
}

func (f *fakePlatform) deletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakePlatform) sentTo(channelID string) []domain.OutgoingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.OutgoingMessage
	for _, s := range f.sent {
		if s.channelID == channelID {
			out = append(out, s.msg)
		}
	}
	return out
}

// mutations counts every call that changes platform state.
func (f *fakePlatform) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.sent) + len(f.pinned) + len(f.deleted)
}

type fakeResponder struct {
	log *callLog
	err error

	mu      sync.Mutex
	replies []domain.Reply
}

func (r *fakeResponder) Respond(_ context.Context, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.log != nil {
		r.log.add("respond")
	}
	if r.err != nil {
		return r.err
	}
	r.replies = append(r.replies, reply)
	return nil
}

func (r *fakeResponder) all() []domain.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Reply(nil), r.replies...)
}

// deferringResponder also supports acknowledging before the reply.
type deferringResponder struct {
	fakeResponder
	deferErr  error
	ephemeral []bool
}

func (r *deferringResponder) Defer(_ context.Context, ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.log != nil {
		r.log.add("defer")
	}
	if r.deferErr != nil {
		return r.deferErr
	}
	r.ephemeral = append(r.ephemeral, ephemeral)
	return nil
}

var _ platform.Deferrer = (*deferringResponder)(nil)

type fakeFetcher struct {
	files map[string]domain.File
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, ref domain.AttachmentRef) (*domain.File, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	file, ok := f.files[ref.URL]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", ref.URL)
	}
	return &file, nil
}

func member(id, username string, roles ...string) domain.Actor {
	return domain.Actor{
		User:    domain.User{ID: id, Username: username, AvatarURL: "https://cdn.example/" + id + ".png"},
		RoleIDs: roles,
	}
}

func invocation(actor domain.Actor, channelID, channelName string) domain.Invocation {
	return domain.Invocation{
		GuildID:     testGuildID,
		GuildIcon:   "https://cdn.example/guild.png",
		ChannelID:   channelID,
		ChannelName: channelName,
		Actor:       actor,
	}
}
