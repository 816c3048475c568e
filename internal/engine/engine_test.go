package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/expando/internal/action"
	"github.com/dshills/expando/internal/match"
	"github.com/dshills/expando/internal/render"
)

type fakeKeyboard struct {
	deleted   int
	sent      []string
	enters    int
	movedLeft int
	copies    int
	pastes    []string
	deleteErr error
}

func (k *fakeKeyboard) DeleteString(n int) error {
	k.deleted += n
	return k.deleteErr
}
func (k *fakeKeyboard) SendString(s string) error { k.sent = append(k.sent, s); return nil }
func (k *fakeKeyboard) SendEnter() error           { k.enters++; return nil }
func (k *fakeKeyboard) MoveCursorLeft(n int) error { k.movedLeft += n; return nil }
func (k *fakeKeyboard) TriggerCopy() error         { k.copies++; return nil }
func (k *fakeKeyboard) TriggerPaste(shortcut string) error {
	k.pastes = append(k.pastes, shortcut)
	return nil
}

type fakeClipboard struct {
	text      string
	haveText  bool
	sets      []string
	imageSets []string

	// failSetCalls, if > 0, makes that many leading SetClipboard calls
	// return an error before calls start succeeding.
	failSetCalls int
	// forceFirstGetMiss makes the first GetClipboard call report no
	// text regardless of state. Both fields exercise the Engine's
	// retry-once policy for transient clipboard failures.
	forceFirstGetMiss bool
	getCalls          int
}

var errClipboardTransient = errors.New("fake: transient clipboard failure")

func (c *fakeClipboard) GetClipboard() (string, bool) {
	c.getCalls++
	if c.getCalls == 1 && c.forceFirstGetMiss {
		return "", false
	}
	return c.text, c.haveText
}

func (c *fakeClipboard) SetClipboard(s string) error {
	c.sets = append(c.sets, s)
	if len(c.sets) <= c.failSetCalls {
		return errClipboardTransient
	}
	c.text, c.haveText = s, true
	return nil
}
func (c *fakeClipboard) SetClipboardImage(path string) error {
	c.imageSets = append(c.imageSets, path)
	return nil
}

type fakeConfigProvider struct {
	cfg Config
}

func (p *fakeConfigProvider) DefaultConfig() Config { return p.cfg }
func (p *fakeConfigProvider) ActiveConfig() Config  { return p.cfg }

type fakeUI struct {
	notifications []string
	menus         [][]action.MenuItem
	cleaned       bool
}

func (u *fakeUI) Notify(message string) error {
	u.notifications = append(u.notifications, message)
	return nil
}
func (u *fakeUI) ShowMenu(items []action.MenuItem) error {
	u.menus = append(u.menus, items)
	return nil
}
func (u *fakeUI) Cleanup() error { u.cleaned = true; return nil }

type fakeRenderer struct {
	result        render.Result
	passiveResult render.Result
}

func (r *fakeRenderer) Render(ctx context.Context, m match.Match, args []string) render.Result {
	return r.result
}
func (r *fakeRenderer) RenderPassive(ctx context.Context, text string) render.Result {
	return r.passiveResult
}

func newTestEngine(cfg Config, kb *fakeKeyboard, cb *fakeClipboard, ui *fakeUI, rend *fakeRenderer, fakeNow *time.Time) *Engine {
	return New(kb, cb, &fakeConfigProvider{cfg: cfg}, ui, rend,
		WithClock(func() time.Time { return *fakeNow }),
		WithSleep(func(time.Duration) {}),
	)
}

func TestOnMatchInjectsAndMovesCursor(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "Hello, world", CursorRewind: 0}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":hello"}, nil)

	if kb.deleted != 6 {
		t.Fatalf("expected delete(6), got delete(%d)", kb.deleted)
	}
	if len(kb.sent) != 1 || kb.sent[0] != "Hello, world" {
		t.Fatalf("expected injected text, got %v", kb.sent)
	}
	if kb.movedLeft != 0 {
		t.Fatalf("expected no cursor rewind, got %d", kb.movedLeft)
	}
}

func TestOnMatchAccountsForTrailingSeparator(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "Best regards"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	sep := " "
	e.OnMatch(context.Background(), match.Match{Trigger: ":br"}, &sep)

	if kb.deleted != 4 {
		t.Fatalf("expected delete(4) (trigger + separator), got %d", kb.deleted)
	}
	if len(kb.sent) != 1 || kb.sent[0] != "Best regards " {
		t.Fatalf("expected separator appended to injected text, got %v", kb.sent)
	}
}

func TestOnMatchMovesCursorForHintRewind(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "<p></p>", CursorRewind: 4}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":tag"}, nil)

	if kb.movedLeft != 4 {
		t.Fatalf("expected 4 LEFT presses, got %d", kb.movedLeft)
	}
}

func TestOnMatchClipboardBackendPreservesAndRestores(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	cfg.Backend = BackendClipboard
	cfg.PreserveClipboard = true
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{text: "previous clipboard", haveText: true}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "pasted text"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)

	if len(kb.pastes) != 1 {
		t.Fatalf("expected one trigger_paste, got %d", len(kb.pastes))
	}
	if len(cb.sets) != 2 {
		t.Fatalf("expected set then restore, got %v", cb.sets)
	}
	if cb.sets[0] != "pasted text" {
		t.Fatalf("expected payload set first, got %q", cb.sets[0])
	}
	if cb.sets[1] != "previous clipboard" {
		t.Fatalf("expected original clipboard restored last, got %q", cb.sets[1])
	}
}

func TestOnMatchSkipsWhenActiveDisabled(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.EnableActive = false
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "nope"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)

	if kb.deleted != 0 || len(kb.sent) != 0 {
		t.Fatal("expected no keyboard activity when EnableActive is false")
	}
}

func TestOnMatchSelfEchoGuardBlocksRapidCalls(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 300 * time.Millisecond
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "x"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)
	// Construction counts as the last action, so step past the interval
	// before the first call.
	now = now.Add(cfg.ActionNoopInterval)

	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)
	if len(kb.sent) != 1 {
		t.Fatalf("expected first call to fire, got %d sends", len(kb.sent))
	}

	now = now.Add(10 * time.Millisecond)
	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)
	if len(kb.sent) != 1 {
		t.Fatalf("expected second call within interval to be blocked, got %d sends", len(kb.sent))
	}

	now = now.Add(400 * time.Millisecond)
	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)
	if len(kb.sent) != 2 {
		t.Fatalf("expected third call past interval to fire, got %d sends", len(kb.sent))
	}
}

func TestOnMatchErrorResultInjectsNothing(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultError, Err: ErrRenderFailed}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":bad"}, nil)

	if len(kb.sent) != 0 {
		t.Fatal("expected no injection on render error")
	}
	if kb.deleted != 3 {
		t.Fatalf("expected trigger still deleted before render, got %d", kb.deleted)
	}
}

func TestOnMatchImageGoesThroughClipboard(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	cfg.PreserveClipboard = true
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{text: "old", haveText: true}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultImage, ImagePath: "/tmp/snip.png"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":img"}, nil)

	if len(kb.pastes) != 1 {
		t.Fatalf("expected trigger_paste, got %d", len(kb.pastes))
	}
	if len(cb.imageSets) != 1 || cb.imageSets[0] != "/tmp/snip.png" {
		t.Fatalf("expected image clipboard set, got %v", cb.imageSets)
	}
	if len(cb.sets) != 1 || cb.sets[0] != "old" {
		t.Fatalf("expected original clipboard restored, got %v", cb.sets)
	}
}

func TestOnEnableUpdateTogglesAndNotifies(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnEnableUpdate(false)
	if e.Enabled() {
		t.Fatal("expected disabled")
	}
	if len(ui.notifications) != 1 || ui.notifications[0] != "expando disabled" {
		t.Fatalf("expected disabled notification, got %v", ui.notifications)
	}
}

func TestOnPassiveCopiesRendersAndPastes(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{text: "hello world", haveText: true}
	ui := &fakeUI{}
	rend := &fakeRenderer{passiveResult: render.Result{Kind: render.ResultText, Text: "HELLO WORLD"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnPassive(context.Background())

	if kb.copies != 1 {
		t.Fatalf("expected trigger_copy, got %d", kb.copies)
	}
	if len(kb.pastes) != 1 {
		t.Fatalf("expected trigger_paste, got %d", len(kb.pastes))
	}
	if len(cb.sets) != 1 || cb.sets[0] != "HELLO WORLD" {
		t.Fatalf("expected rendered payload set on clipboard, got %v", cb.sets)
	}
}

func TestOnPassiveSkippedWhenDisabled(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.EnablePassive = false
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{text: "hello", haveText: true}
	ui := &fakeUI{}
	rend := &fakeRenderer{}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnPassive(context.Background())

	if kb.copies != 0 {
		t.Fatal("expected passive mode to be a no-op when disabled")
	}
}

func TestOnActionEventToggleFlipsEnabled(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnActionEvent(action.Toggle)
	if e.Enabled() {
		t.Fatal("expected Toggle to disable a freshly-enabled engine")
	}
	if len(ui.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(ui.notifications))
	}
}

func TestOnActionEventIconClickShowsMenu(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnActionEvent(action.IconClick)
	if len(ui.menus) != 1 {
		t.Fatalf("expected one ShowMenu call, got %d", len(ui.menus))
	}
	if len(ui.menus[0]) != 3 {
		t.Fatalf("expected toggle+separator+exit, got %d items", len(ui.menus[0]))
	}
}

func TestOnActionEventExitClosesDoneChannel(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{}
	ui := &fakeUI{}
	rend := &fakeRenderer{}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnActionEvent(action.Exit)
	if !ui.cleaned {
		t.Fatal("expected Cleanup to be called")
	}
	select {
	case <-e.Done():
	default:
		t.Fatal("expected Done channel to be closed")
	}
}

func TestOnMatchRetriesTransientClipboardSetOnce(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	cfg.Backend = BackendClipboard
	cfg.PreserveClipboard = false
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{failSetCalls: 1}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "pasted text"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)

	if len(cb.sets) != 2 {
		t.Fatalf("expected one failed attempt plus one retry, got %v", cb.sets)
	}
	if len(kb.pastes) != 1 {
		t.Fatalf("expected trigger_paste to still run after the retry succeeded, got %d", len(kb.pastes))
	}
}

func TestOnMatchGivesUpAfterSecondClipboardSetFailure(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	cfg.Backend = BackendClipboard
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{failSetCalls: 2}
	ui := &fakeUI{}
	rend := &fakeRenderer{result: render.Result{Kind: render.ResultText, Text: "pasted text"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnMatch(context.Background(), match.Match{Trigger: ":x"}, nil)

	if len(cb.sets) != 2 {
		t.Fatalf("expected exactly one retry (two attempts total), got %v", cb.sets)
	}
	if len(kb.pastes) != 1 {
		t.Fatalf("trigger_paste should still fire even though the clipboard write never succeeded, got %d", len(kb.pastes))
	}
}

func TestOnPassiveRetriesTransientClipboardReadOnce(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ActionNoopInterval = 0
	kb := &fakeKeyboard{}
	cb := &fakeClipboard{text: "selected text", haveText: true, forceFirstGetMiss: true}
	ui := &fakeUI{}
	rend := &fakeRenderer{passiveResult: render.Result{Kind: render.ResultText, Text: "rendered"}}
	e := newTestEngine(cfg, kb, cb, ui, rend, &now)

	e.OnPassive(context.Background())

	if kb.copies != 1 {
		t.Fatalf("expected trigger_copy, got %d", kb.copies)
	}
	if len(kb.pastes) != 1 {
		t.Fatalf("expected the passive expansion to complete despite the first clipboard read miss, got %d pastes", len(kb.pastes))
	}
}
