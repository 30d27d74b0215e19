package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spec-kit/ticketbot/internal/domain"
	"github.com/spec-kit/ticketbot/internal/events"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

const testChangelogChan = "changelog"

type broadcastFixture struct {
	platform *fakePlatform
	fetcher  *fakeFetcher
	events   []events.Event
	service  *BroadcastService
}

func newBroadcastFixture(t *testing.T, changelogID string) *broadcastFixture {
	t.Helper()
	f := &broadcastFixture{
		platform: newFakePlatform(&callLog{}),
		fetcher: &fakeFetcher{files: map[string]domain.File{
			"https://cdn.example/shot.png":  {Name: "shot.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
			"https://cdn.example/notes.pdf": {Name: "notes.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		}},
	}
	f.platform.addChannel(domain.Channel{ID: testChangelogChan, Name: "changelog", Kind: domain.ChannelKindText})

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	f.service = NewBroadcastService(BroadcastDependencies{
		Platform:   f.platform,
		Fetcher:    f.fetcher,
		Dispatcher: dispatcher,
		Clock:      clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}, BroadcastSettings{
		ChangelogChannelID: changelogID,
		StaffRoleID:        testStaffRole,
		StaffRoleName:      "Lite",
		ProductName:        "Lite Scanner",
	})
	return f
}

func TestPostChangelog(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	responder := &fakeResponder{}
	author := member("s1", "sam", testStaffRole)

	_, err := f.service.PostChangelog(context.Background(), invocation(author, "staff-room", "staff-room"), ChangelogInput{
		Version:     "v1.4.0",
		Title:       "Faster scans",
		Description: `Line1\nLine2`,
	}, responder)
	if err != nil {
		t.Fatalf("PostChangelog() error = %v", err)
	}

	sent := f.platform.sentTo(testChangelogChan)
	if len(sent) != 1 || len(sent[0].Embeds) != 1 {
		t.Fatalf("sent = %+v", sent)
	}
	embed := sent[0].Embeds[0]
	if embed.Title != "📋 Faster scans" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.Description != "Line1\nLine2" {
		t.Errorf("Description = %q, want a real line break", embed.Description)
	}
	if embed.Author == nil || embed.Author.Name != "Lite Scanner  ·  v1.4.0" || embed.Author.IconURL != "https://cdn.example/guild.png" {
		t.Errorf("Author = %+v", embed.Author)
	}
	if embed.Footer == nil || embed.Footer.Text != "Posted by sam" {
		t.Errorf("Footer = %+v", embed.Footer)
	}
	if embed.Color != colorBrand || embed.Timestamp.IsZero() {
		t.Errorf("Color = %#x Timestamp = %v", embed.Color, embed.Timestamp)
	}
	if len(sent[0].Files) != 0 || embed.ImageURL != "" {
		t.Error("no attachment expected")
	}

	replies := responder.all()
	if len(replies) != 1 || !replies[0].Ephemeral || replies[0].Content != "✅ Changelog posted to <#changelog>!" {
		t.Fatalf("replies = %+v", replies)
	}
	if len(f.events) != 1 || f.events[0].Type != events.EventBroadcastPosted {
		t.Fatalf("events = %+v", f.events)
	}
	payload := f.events[0].Payload.(events.BroadcastPostedPayload)
	if payload.Kind != events.BroadcastChangelog || payload.Version != "v1.4.0" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestPostChangelogAttachments(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantImage string
		wantFile  string
	}{
		{name: "image becomes embed image", url: "https://cdn.example/shot.png", wantImage: "attachment://shot.png", wantFile: "shot.png"},
		{name: "document rides alongside", url: "https://cdn.example/notes.pdf", wantFile: "notes.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBroadcastFixture(t, testChangelogChan)
			_, err := f.service.PostChangelog(context.Background(), invocation(member("s1", "sam", testStaffRole), "x", "x"), ChangelogInput{
				Version:    "v2",
				Title:      "t",
				Attachment: &domain.AttachmentRef{URL: tt.url, Filename: tt.wantFile},
			}, &fakeResponder{})
			if err != nil {
				t.Fatalf("PostChangelog() error = %v", err)
			}
			sent := f.platform.sentTo(testChangelogChan)[0]
			if len(sent.Files) != 1 || sent.Files[0].Name != tt.wantFile {
				t.Fatalf("Files = %+v", sent.Files)
			}
			if got := sent.Embeds[0].ImageURL; got != tt.wantImage {
				t.Errorf("ImageURL = %q, want %q", got, tt.wantImage)
			}
		})
	}
}

func TestPostChangelogFetchFailure(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	f.fetcher.err = errors.New("connection reset")
	responder := &fakeResponder{}

	_, err := f.service.PostChangelog(context.Background(), invocation(member("s1", "sam", testStaffRole), "x", "x"), ChangelogInput{
		Version:    "v2",
		Title:      "t",
		Attachment: &domain.AttachmentRef{URL: "https://cdn.example/shot.png", Filename: "shot.png"},
	}, responder)
	if !apperrors.HasCode(err, apperrors.CodeExternalFailure) {
		t.Fatalf("PostChangelog() error = %v, want EXTERNAL_FAILURE", err)
	}
	if f.platform.mutations() != 0 || len(responder.all()) != 0 || len(f.events) != 0 {
		t.Fatal("a failed download must not post anything")
	}
}

func TestPostChangelogMissingChannel(t *testing.T) {
	for _, id := range []string{"", "deleted"} {
		f := newBroadcastFixture(t, id)
		_, err := f.service.PostChangelog(context.Background(), invocation(member("s1", "sam", testStaffRole), "x", "x"), ChangelogInput{Version: "v", Title: "t"}, &fakeResponder{})
		if !apperrors.HasCode(err, apperrors.CodeMissingConfig) {
			t.Fatalf("PostChangelog(%q) error = %v, want MISSING_CONFIG", id, err)
		}
		want := "Changelog channel not found. Set `CHANGELOG_CHANNEL_ID` env var."
		if msg := apperrors.ToDomainError(err).Message; msg != want {
			t.Errorf("message = %q", msg)
		}
		if f.fetcher.calls != 0 || f.platform.mutations() != 0 {
			t.Fatal("nothing may happen without a changelog channel")
		}
	}
}

func TestPostChangelogLookupFailure(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	f.platform.lookupError[testChangelogChan] = errors.New("503")
	_, err := f.service.PostChangelog(context.Background(), invocation(member("s1", "sam", testStaffRole), "x", "x"), ChangelogInput{Version: "v", Title: "t"}, &fakeResponder{})
	if !apperrors.HasCode(err, apperrors.CodeExternalFailure) {
		t.Fatalf("PostChangelog() error = %v, want EXTERNAL_FAILURE", err)
	}
}

func TestBroadcastRequiresRole(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	admin := domain.Actor{User: domain.User{ID: "a1", Username: "ada"}, IsAdmin: true}

	_, err := f.service.PostChangelog(context.Background(), invocation(admin, "x", "x"), ChangelogInput{Version: "v", Title: "t"}, &fakeResponder{})
	if !apperrors.HasCode(err, apperrors.CodeMissingRole) {
		t.Fatalf("PostChangelog() error = %v, want MISSING_ROLE", err)
	}
	if msg := apperrors.ToDomainError(err).Message; msg != "You need the **Lite** role to use this command." {
		t.Errorf("message = %q", msg)
	}

	_, err = f.service.PostAnnouncement(context.Background(), invocation(member("u1", "alice"), "x", "x"), AnnouncementInput{
		Channel: domain.Channel{ID: "news", Name: "news"},
		Message: "hi",
	}, &fakeResponder{})
	if !apperrors.HasCode(err, apperrors.CodeMissingRole) {
		t.Fatalf("PostAnnouncement() error = %v, want MISSING_ROLE", err)
	}
	if f.platform.mutations() != 0 {
		t.Fatal("denied broadcasts must not post")
	}
}

func TestPostAnnouncement(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	responder := &fakeResponder{}
	author := member("s1", "sam", testStaffRole)
	author.User.GlobalName = "Sam S."

	_, err := f.service.PostAnnouncement(context.Background(), invocation(author, "x", "x"), AnnouncementInput{
		Channel:    domain.Channel{ID: "news", Name: "news"},
		Message:    `Maintenance tonight\nBack at 10`,
		Ping:       &domain.Role{ID: "r-updates", Name: "Updates"},
		Attachment: &domain.AttachmentRef{URL: "https://cdn.example/shot.png", Filename: "shot.png"},
	}, responder)
	if err != nil {
		t.Fatalf("PostAnnouncement() error = %v", err)
	}

	sent := f.platform.sentTo("news")
	if len(sent) != 1 {
		t.Fatalf("sent = %+v", sent)
	}
	msg := sent[0]
	if msg.Content != "<@&r-updates>" {
		t.Errorf("Content = %q, want role mention", msg.Content)
	}
	embed := msg.Embeds[0]
	if embed.Description != "Maintenance tonight\nBack at 10" {
		t.Errorf("Description = %q", embed.Description)
	}
	if embed.Author == nil || embed.Author.Name != "Sam S." || embed.Author.IconURL != author.User.AvatarURL {
		t.Errorf("Author = %+v", embed.Author)
	}
	if embed.ImageURL != "attachment://shot.png" || len(msg.Files) != 1 {
		t.Errorf("ImageURL = %q Files = %d", embed.ImageURL, len(msg.Files))
	}
	if replies := responder.all(); len(replies) != 1 || replies[0].Content != "✅ Posted to <#news>!" || !replies[0].Ephemeral {
		t.Fatalf("replies = %+v", replies)
	}
	payload := f.events[0].Payload.(events.BroadcastPostedPayload)
	if payload.Kind != events.BroadcastAnnouncement || payload.PingedRoleID != "r-updates" || payload.Attachment != "shot.png" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestPostAnnouncementWithoutPing(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	_, err := f.service.PostAnnouncement(context.Background(), invocation(member("s1", "sam", testStaffRole), "x", "x"), AnnouncementInput{
		Channel: domain.Channel{ID: "news", Name: "news"},
		Message: "hello",
	}, &fakeResponder{})
	if err != nil {
		t.Fatalf("PostAnnouncement() error = %v", err)
	}
	if content := f.platform.sentTo("news")[0].Content; content != "" {
		t.Errorf("Content = %q, want empty without a ping", content)
	}
}

func TestPostAnnouncementSendFailure(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	f.platform.sendErr["news"] = errors.New("missing access")
	responder := &fakeResponder{}
	_, err := f.service.PostAnnouncement(context.Background(), invocation(member("s1", "sam", testStaffRole), "x", "x"), AnnouncementInput{
		Channel: domain.Channel{ID: "news", Name: "news"},
		Message: "hello",
	}, responder)
	if !apperrors.HasCode(err, apperrors.CodeExternalFailure) {
		t.Fatalf("PostAnnouncement() error = %v, want EXTERNAL_FAILURE", err)
	}
	if len(responder.all()) != 0 {
		t.Fatal("no success acknowledgment after a failed send")
	}
}

func TestBroadcastsAcknowledgeBeforeDelivery(t *testing.T) {
	f := newBroadcastFixture(t, testChangelogChan)
	log := f.platform.log
	author := member("s1", "sam", testStaffRole)

	changelog := &deferringResponder{fakeResponder: fakeResponder{log: log}}
	_, err := f.service.PostChangelog(context.Background(), invocation(author, "x", "x"), ChangelogInput{
		Version: "v1", Title: "t", Description: "d",
	}, changelog)
	if err != nil {
		t.Fatalf("PostChangelog() error = %v", err)
	}
	announce := &deferringResponder{fakeResponder: fakeResponder{log: log}}
	_, err = f.service.PostAnnouncement(context.Background(), invocation(author, "x", "x"), AnnouncementInput{
		Channel: domain.Channel{ID: "news", Name: "news"},
		Message: "hello",
	}, announce)
	if err != nil {
		t.Fatalf("PostAnnouncement() error = %v", err)
	}

	want := "defer,send:changelog,respond,defer,send:news,respond"
	if got := strings.Join(log.snapshot(), ","); got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}

	denied := &deferringResponder{fakeResponder: fakeResponder{log: log}}
	_, err = f.service.PostChangelog(context.Background(), invocation(member("u1", "alice"), "x", "x"), ChangelogInput{Version: "v", Title: "t"}, denied)
	if !apperrors.HasCode(err, apperrors.CodeMissingRole) || len(denied.ephemeral) != 0 {
		t.Fatalf("denied changelog err = %v, deferred = %v", err, denied.ephemeral)
	}
}
