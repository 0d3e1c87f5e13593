package browser

import (
	"context"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nao1215/aocboard/internal/session"
)

func TestCookieParams(t *testing.T) {
	t.Parallel()

	t.Run("nil state has no cookies", func(t *testing.T) {
		t.Parallel()
		if got := cookieParams(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("converts persisted cookies", func(t *testing.T) {
		t.Parallel()
		st := &session.State{Cookies: []session.Cookie{
			{Name: "session", Value: "abc", Domain: ".adventofcode.com", Path: "/", Expires: 2000000000, HTTPOnly: true, Secure: true, SameSite: "Lax"},
			{Name: "tmp", Value: "x", Domain: "adventofcode.com", Path: "/", Expires: session.SessionExpiry},
			{Name: "orphan", Value: "y"},
		}}

		got := cookieParams(st)
		if len(got) != 2 {
			t.Fatalf("expected 2 cookies, got %d", len(got))
		}
		if got[0].Expires != proto.TimeSinceEpoch(2000000000) || got[0].SameSite != proto.NetworkCookieSameSiteLax || !got[0].Secure || !got[0].HTTPOnly {
			t.Errorf("unexpected first cookie %+v", got[0])
		}
		if got[1].Expires != 0 || got[1].SameSite != "" {
			t.Errorf("expected session cookie without expiry, got %+v", got[1])
		}
	})
}

func TestConsoleText(t *testing.T) {
	t.Parallel()

	args := []*proto.RuntimeRemoteObject{
		{Type: proto.RuntimeRemoteObjectTypeObject, Description: "Object"},
		nil,
		{Type: proto.RuntimeRemoteObjectTypeNumber, Description: "42"},
	}
	if got := consoleText(args); got != "Object 42" {
		t.Errorf("unexpected text %q", got)
	}
}

// TestRodIntegration drives a real headless Chromium against the fake site.
func TestRodIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium binary found")
	}

	srv := newLeaderboardServer(t)
	target := srv.URL + "/2025/leaderboard/private"

	d := NewRod(WithHeadless(true), WithBrowserBin(bin), WithTimeout(20*time.Second), WithPollInterval(50*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := d.Launch(ctx); err != nil {
		t.Fatalf("unexpected launch error: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			t.Errorf("unexpected close error: %v", err)
		}
	}()

	p, err := d.NewPage(ctx, sessionFor(srv, "abc"), Hooks{})
	if err != nil {
		t.Fatalf("unexpected page error: %v", err)
	}

	if err := p.Navigate(ctx, target); err != nil {
		t.Fatalf("unexpected navigation error: %v", err)
	}
	if err := p.WaitForURL(ctx, target, 5*time.Second); err != nil {
		t.Fatalf("expected restored session to land on target: %v", err)
	}

	els, err := p.FindByText(ctx, "a", "[View]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 3 {
		t.Fatalf("expected 3 anchors, got %d", len(els))
	}
	href, ok, err := els[0].Attribute(ctx, "href")
	if err != nil || !ok || href != "/2025/leaderboard/private/view/123456" {
		t.Errorf("unexpected first href %q (present %v, err %v)", href, ok, err)
	}

	st, err := p.State(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, c := range st.Cookies {
		if c.Name == "session" && c.Value == "rotated" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected rotated session cookie in %+v", st.Cookies)
	}

	if err := p.Navigate(ctx, srv.URL+"/2025/leaderboard/private/view/123456.json"); err != nil {
		t.Fatalf("unexpected navigation error: %v", err)
	}
	body, err := p.TextBody(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `{"event":"2025","members":{}}` {
		t.Errorf("unexpected body %q", body)
	}
}
