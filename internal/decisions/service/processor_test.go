package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/apperr"
)

func TestDecideProceed(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)

	res, err := f.processor.Decide(context.Background(), raw, "proceed", "ignored")
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if res.AlreadyDecided || res.Decision != "proceed" || res.LeadRef != lead.Ref {
		t.Fatalf("unexpected result: %+v", res)
	}

	stored, _ := f.leads.GetByID(context.Background(), lead.ID)
	if stored.Company.ProceededAt == nil || stored.Company.Stage != domain.StageQuoted {
		t.Fatalf("expected proceededAt set and stage unchanged, got %+v", stored.Company)
	}

	published := f.bus.decisions()
	if len(published) != 1 || published[0].Email != "jane@example.com" {
		t.Fatalf("expected one DecisionRecorded event, got %+v", published)
	}
}

func TestDecideIsIdempotent(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)
	ctx := context.Background()

	first, err := f.processor.Decide(ctx, raw, "proceed", "")
	if err != nil {
		t.Fatalf("first decide: %v", err)
	}
	second, err := f.processor.Decide(ctx, raw, "proceed", "")
	if err != nil {
		t.Fatalf("second decide: %v", err)
	}
	if !second.AlreadyDecided || !second.DecidedAt.Equal(first.DecidedAt) {
		t.Fatalf("expected replay of first decision, got %+v", second)
	}
	if f.leads.writes != 1 || len(f.bus.decisions()) != 1 {
		t.Fatalf("expected exactly one write and one event, got %d writes", f.leads.writes)
	}
}

func TestDeclineThenProceedReplaysDecline(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)
	ctx := context.Background()

	declined, err := f.processor.Decide(ctx, raw, "decline", "  Found a cheaper option  ")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	stored, _ := f.leads.GetByID(ctx, lead.ID)
	if stored.Company.Stage != domain.StageDeclined {
		t.Fatalf("expected stage declined, got %s", stored.Company.Stage)
	}
	if stored.Company.DeclineReason == nil || *stored.Company.DeclineReason != "Found a cheaper option" {
		t.Fatalf("expected trimmed decline reason, got %v", stored.Company.DeclineReason)
	}

	replay, err := f.processor.Decide(ctx, raw, "proceed", "")
	if err != nil {
		t.Fatalf("proceed after decline: %v", err)
	}
	if !replay.AlreadyDecided || replay.Decision != "decline" || !replay.DecidedAt.Equal(declined.DecidedAt) {
		t.Fatalf("expected the decline to be reported, got %+v", replay)
	}

	stored, _ = f.leads.GetByID(ctx, lead.ID)
	if stored.Company.ProceededAt != nil {
		t.Fatal("proceededAt must stay unset")
	}
}

func TestDecideQuestionsRequiresReason(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)

	_, err := f.processor.Decide(context.Background(), raw, "questions", "   ")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	res, err := f.processor.Decide(context.Background(), raw, "questions", "Is a visa included?")
	if err != nil || res.Decision != "questions" {
		t.Fatalf("expected questions recorded, got %+v, %v", res, err)
	}
	stored, _ := f.leads.GetByID(context.Background(), lead.ID)
	if stored.Company.QuestionsText == nil || *stored.Company.QuestionsText != "Is a visa included?" {
		t.Fatalf("expected questions text stored, got %v", stored.Company.QuestionsText)
	}
}

func TestQuestionsWithoutReasonReplaysRecordedDecline(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)
	ctx := context.Background()

	declined, err := f.processor.Decide(ctx, raw, "decline", "too expensive")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	res, err := f.processor.Decide(ctx, raw, "questions", "")
	if err != nil {
		t.Fatalf("expected replay of the decline, got error %v", err)
	}
	if !res.AlreadyDecided || res.Decision != "decline" || !res.DecidedAt.Equal(declined.DecidedAt) {
		t.Fatalf("expected recorded decline replayed, got %+v", res)
	}
	if f.leads.writes != 1 {
		t.Fatalf("expected a single write, got %d", f.leads.writes)
	}
}

func TestDecideRejectsUnknownDecision(t *testing.T) {
	f := newFixture()
	raw := f.issue(quotedLead(domain.TrackCompany), domain.TrackCompany)

	_, err := f.processor.Decide(context.Background(), raw, "maybe", "")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideTokenErrors(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		raw  string
		kind apperr.Kind
	}{
		{name: "missing", raw: "", kind: apperr.KindUnauthorized},
		{name: "malformed", raw: "abc", kind: apperr.KindUnauthorized},
		{name: "unknown", raw: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", kind: apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.processor.Decide(context.Background(), tc.raw, "proceed", "")
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != tc.kind {
				t.Fatalf("expected kind %d, got %v", tc.kind, err)
			}
		})
	}
}

func TestDecideSingleWriterUnderRace(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackBank)
	raw := f.issue(lead, domain.TrackBank)

	decisions := []string{"proceed", "decline", "questions"}
	const workers = 30

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		fresh   int
		winners = make(map[string]int)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.processor.Decide(context.Background(), raw, decisions[i%3], "reason")
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if !res.AlreadyDecided {
				fresh++
			}
			winners[res.Decision]++
		}(i)
	}
	wg.Wait()

	if fresh != 1 {
		t.Fatalf("expected exactly one fresh decision, got %d", fresh)
	}
	if len(winners) != 1 {
		t.Fatalf("expected every caller to observe the same decision, got %v", winners)
	}
	if f.leads.writes != 1 || len(f.bus.decisions()) != 1 {
		t.Fatalf("expected one write and one event, got %d writes and %d events", f.leads.writes, len(f.bus.decisions()))
	}
}

func TestDecideAfterStageMovedIsConflict(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)

	res, err := f.tokens.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	moved := res.Lead
	moved.Company.Stage = domain.StageInvoiceSent
	f.leads.put(moved)

	_, err = f.processor.afterLostRace(context.Background(), res)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDetailsReportsRecordedDecision(t *testing.T) {
	f := newFixture()
	lead := quotedLead(domain.TrackCompany)
	raw := f.issue(lead, domain.TrackCompany)
	ctx := context.Background()

	before, err := f.processor.Details(ctx, raw)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if before.Decision != "" || before.QuotedAmount == nil || *before.QuotedAmount != 12500 {
		t.Fatalf("unexpected details before deciding: %+v", before)
	}

	if _, err := f.processor.Decide(ctx, raw, "proceed", ""); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, err := f.processor.View(ctx, raw); err != nil {
		t.Fatalf("view: %v", err)
	}

	after, err := f.processor.Details(ctx, raw)
	if err != nil {
		t.Fatalf("details after deciding: %v", err)
	}
	if after.Decision != "proceed" || after.DecidedAt == nil || after.ViewedAt == nil {
		t.Fatalf("expected decision and view reported, got %+v", after)
	}
}
