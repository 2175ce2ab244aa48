package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/unilater/galeaz/internal/domain"
	"github.com/unilater/galeaz/internal/infra/memory"
	"github.com/unilater/galeaz/internal/shell"
)

type fakeSectionGateway struct {
	mu sync.Mutex

	profile     domain.Profile
	profileErr  error
	completions map[string]bool
	contents    map[string]string
	update      domain.SectionUpdate
	updateErr   error
	markErr     error

	profileCalls     int
	completionCalls  int
	contentCalls     int
	updateCalls      int
	markCalls        int
	lastUpdateColumn string
}

func (g *fakeSectionGateway) Profile(context.Context, int) (domain.Profile, error) {
	g.mu.Lock()
	g.profileCalls++
	g.mu.Unlock()
	return g.profile, g.profileErr
}

func (g *fakeSectionGateway) CompletionMap(context.Context, int) (map[string]bool, error) {
	g.mu.Lock()
	g.completionCalls++
	g.mu.Unlock()
	if g.completions == nil {
		return map[string]bool{}, nil
	}
	return g.completions, nil
}

func (g *fakeSectionGateway) SectionContents(context.Context, int) (map[string]string, error) {
	g.mu.Lock()
	g.contentCalls++
	g.mu.Unlock()
	if g.contents == nil {
		return map[string]string{}, nil
	}
	return g.contents, nil
}

func (g *fakeSectionGateway) UpdateSectionColumn(_ context.Context, _ int, column string) (domain.SectionUpdate, error) {
	g.mu.Lock()
	g.updateCalls++
	g.lastUpdateColumn = column
	g.mu.Unlock()
	return g.update, g.updateErr
}

func (g *fakeSectionGateway) MarkSectionCompleted(context.Context, int, string) error {
	g.mu.Lock()
	g.markCalls++
	g.mu.Unlock()
	return g.markErr
}

func completeProfile() domain.Profile {
	return domain.Profile{
		NameFirst:         "Ada",
		NameLast:          "Rossi",
		Email:             "ada@example.com",
		QuestionnaireData: map[string]string{"1": "34"},
	}
}

func newSectionsWorkflow(t *testing.T, gw *fakeSectionGateway) (*Sections, *recordingShell) {
	t.Helper()
	ui := &recordingShell{}
	s := NewSections(gw, signedInStore(t), ui, nil, nil)
	t.Cleanup(s.Close)
	return s, ui
}

func TestSectionsStartWithoutUserIssuesNoNetworkCalls(t *testing.T) {
	gw := &fakeSectionGateway{profile: completeProfile()}
	ui := &recordingShell{}
	s := NewSections(gw, memory.NewSessionStore(), ui, nil, nil)
	defer s.Close()

	err := s.Start(context.Background())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if gw.profileCalls+gw.completionCalls+gw.contentCalls != 0 {
		t.Fatalf("expected zero network calls")
	}
	if ui.bySeverity(shell.Danger) != 1 {
		t.Fatalf("expected one notification, got %+v", ui.all())
	}
}

func TestSectionsProfileGateBlocksContentFetch(t *testing.T) {
	gw := &fakeSectionGateway{profile: domain.Profile{NameFirst: "Ada"}} // no last name
	s, ui := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.NeedsProfileCompletion() {
		t.Fatalf("expected profile gate raised")
	}
	if gw.completionCalls != 0 || gw.contentCalls != 0 {
		t.Fatalf("gated screen must not fetch section data")
	}
	if ui.bySeverity(shell.Warning) != 1 {
		t.Fatalf("expected one guidance notification, got %+v", ui.all())
	}
	for _, section := range s.Sections() {
		if section.Content != "" {
			t.Fatalf("no section content may be populated while gated")
		}
	}
}

func TestSectionsQuestionnaireGateBlocksContentFetch(t *testing.T) {
	gw := &fakeSectionGateway{profile: domain.Profile{NameFirst: "Ada", NameLast: "Rossi"}}
	s, _ := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.NeedsProfileCompletion() {
		t.Fatalf("profile gate should pass")
	}
	if !s.NeedsQuestionnaireCompletion() {
		t.Fatalf("expected questionnaire gate raised")
	}
	if gw.completionCalls != 0 {
		t.Fatalf("gated screen must not fetch the completion map")
	}
}

func TestFirstExpandFetchesAndMarksCompleted(t *testing.T) {
	gw := &fakeSectionGateway{
		profile: completeProfile(),
		update:  domain.SectionUpdate{Message: "ok", Content: "<p>salute</p>"},
	}
	s, ui := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.ToggleKey(context.Background(), "salute"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if gw.updateCalls != 1 || gw.lastUpdateColumn != "salute" {
		t.Fatalf("expected one column update for salute, got %d (%q)", gw.updateCalls, gw.lastUpdateColumn)
	}
	if gw.markCalls != 1 {
		t.Fatalf("expected one mark-completed call, got %d", gw.markCalls)
	}
	section := s.Sections()[0]
	if !section.Completed || !section.Expanded || section.Content != "<p>salute</p>" {
		t.Fatalf("unexpected section state %+v", section)
	}
	if ui.bySeverity(shell.Success) != 1 {
		t.Fatalf("expected a scoped success notification")
	}
}

func TestCompletedSectionTogglesWithoutNetwork(t *testing.T) {
	gw := &fakeSectionGateway{
		profile:     completeProfile(),
		completions: map[string]bool{"salute": true},
		contents:    map[string]string{"salute": "<p>stored</p>"},
	}
	s, _ := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := s.ToggleKey(context.Background(), "salute"); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	if gw.updateCalls != 0 || gw.markCalls != 0 {
		t.Fatalf("completed section must never refetch, got %d/%d", gw.updateCalls, gw.markCalls)
	}
	if s.Sections()[0].Content != "<p>stored</p>" {
		t.Fatalf("expected seeded stored content")
	}
}

func TestFailedFetchLeavesRetryOpen(t *testing.T) {
	gw := &fakeSectionGateway{
		profile:   completeProfile(),
		updateErr: errors.New("boom"),
	}
	s, ui := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.ToggleKey(context.Background(), "famiglia"); err == nil {
		t.Fatalf("expected failure")
	}
	if s.Sections()[1].Completed {
		t.Fatalf("failed fetch must not mark completion")
	}
	if gw.markCalls != 0 {
		t.Fatalf("mark-completed must not run after a failed fetch")
	}
	if ui.bySeverity(shell.Danger) != 1 {
		t.Fatalf("expected one failure notification")
	}

	// collapse, then expand again: the fetch retries
	_ = s.ToggleKey(context.Background(), "famiglia")
	gw.updateErr = nil
	gw.update = domain.SectionUpdate{Message: "ok", Content: "<p>famiglia</p>"}
	if err := s.ToggleKey(context.Background(), "famiglia"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if gw.updateCalls != 2 {
		t.Fatalf("expected retry fetch, got %d calls", gw.updateCalls)
	}
	if !s.Sections()[1].Completed {
		t.Fatalf("expected completion after retry")
	}
}

func TestEmptyMessageCountsAsFailure(t *testing.T) {
	gw := &fakeSectionGateway{
		profile: completeProfile(),
		update:  domain.SectionUpdate{Message: "", Content: ""},
	}
	s, _ := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.ToggleKey(context.Background(), "casa"); err == nil {
		t.Fatalf("expected missing message to count as failure")
	}
	if s.Sections()[3].Completed {
		t.Fatalf("empty payload must not complete the section")
	}
}

func TestMarkCompletedFailureIsSilent(t *testing.T) {
	gw := &fakeSectionGateway{
		profile: completeProfile(),
		update:  domain.SectionUpdate{Message: "ok", Content: "<p>x</p>"},
		markErr: errors.New("boom"),
	}
	s, ui := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.ToggleKey(context.Background(), "lavoro"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if ui.bySeverity(shell.Danger) != 0 {
		t.Fatalf("mark-completed failure must not raise a notification")
	}
	if ui.bySeverity(shell.Success) != 1 {
		t.Fatalf("content success still reported once")
	}
	if !s.Sections()[2].Completed {
		t.Fatalf("completion flag stays raised; content already shown")
	}
}

func TestCollapseNeverFetches(t *testing.T) {
	gw := &fakeSectionGateway{
		profile: completeProfile(),
		update:  domain.SectionUpdate{Message: "ok", Content: "<p>x</p>"},
	}
	s, _ := newSectionsWorkflow(t, gw)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = s.ToggleKey(context.Background(), "istruzione") // expand: fetch
	_ = s.ToggleKey(context.Background(), "istruzione") // collapse
	if gw.updateCalls != 1 {
		t.Fatalf("collapse must not fetch, got %d calls", gw.updateCalls)
	}
}
