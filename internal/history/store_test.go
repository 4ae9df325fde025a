package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phishguard/phishguard/internal/history"
	"github.com/phishguard/phishguard/internal/model"
)

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.NewStore(&history.Config{StoragePath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleVerdict(url string, at time.Time) *model.DetectionVerdict {
	return &model.DetectionVerdict{
		URL:            url,
		Classification: model.ClassPhishing,
		Confidence:     0.85,
		RiskScore:      72,
		Explanation:    "brand impersonation of \"paypal\" (edit_distance)",
		AnalysisMode:   model.ModeOffline,
		Signals: model.Signals{
			Typosquat: &model.TyposquatResult{
				IsTyposquat:       true,
				ImpersonatedBrand: "paypal",
				Method:            model.MethodEditDistance,
				SimilarityScore:   0.91,
				RiskIncrease:      54,
			},
		},
		AnalyzedAt: at,
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleVerdict("http://paypai.com/login", time.Now())
	id, err := s.Save(ctx, want)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned empty id")
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Verdict.URL != want.URL {
		t.Errorf("url = %q, want %q", rec.Verdict.URL, want.URL)
	}
	if rec.Verdict.Classification != model.ClassPhishing {
		t.Errorf("classification = %s, want phishing", rec.Verdict.Classification)
	}
	if rec.Verdict.RiskScore != 72 {
		t.Errorf("risk = %d, want 72", rec.Verdict.RiskScore)
	}
	ts := rec.Verdict.Signals.Typosquat
	if ts == nil || ts.ImpersonatedBrand != "paypal" {
		t.Errorf("typosquat signal = %+v, want paypal impersonation", ts)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		v := sampleVerdict("http://example.test/", base.Add(time.Duration(i)*time.Minute))
		if _, err := s.Save(ctx, v); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	recs, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Verdict.AnalyzedAt.Before(recs[i].Verdict.AnalyzedAt) {
			t.Errorf("records out of order: %v before %v",
				recs[i-1].Verdict.AnalyzedAt, recs[i].Verdict.AnalyzedAt)
		}
	}
}

func TestListByURL(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	if _, err := s.Save(ctx, sampleVerdict("http://a.test/", now)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save(ctx, sampleVerdict("http://b.test/", now)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save(ctx, sampleVerdict("http://a.test/", now.Add(time.Second))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	recs, err := s.ListByURL(ctx, "http://a.test/")
	if err != nil {
		t.Fatalf("ListByURL: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Verdict.URL != "http://a.test/" {
			t.Errorf("unexpected url %q", r.Verdict.URL)
		}
	}
}

func TestSaveNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.Save(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil verdict")
	}
}
