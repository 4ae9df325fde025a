package toolkit_test

import (
	"net/http"
	"testing"

	"github.com/phishguard/phishguard/internal/model"
	"github.com/phishguard/phishguard/internal/toolkit"
)

func newMatcher(t *testing.T) *toolkit.Matcher {
	t.Helper()
	m, err := toolkit.NewMatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	return m
}

func TestMatchNilObservation(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Match(nil)
	if res.Detected {
		t.Errorf("detected on nil observation: %+v", res)
	}
}

// A single high-weight signature suffices: the rid parameter alone
// identifies Gophish.
func TestMatchSingleHighWeightSignature(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Match(&model.ContentObservation{
		QueryParams: []string{"rid"},
	})
	if !res.Detected {
		t.Fatalf("not detected: %+v", res)
	}
	if res.ToolkitName != "Gophish" {
		t.Errorf("toolkit = %q, want Gophish", res.ToolkitName)
	}
}

func TestMatchHeaderAndParam(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	headers := http.Header{}
	headers.Set("X-Gophish-Contact", "someone@example.test")

	res := m.Match(&model.ContentObservation{
		QueryParams:     []string{"rid"},
		ResponseHeaders: headers,
	})
	if !res.Detected || res.ToolkitName != "Gophish" {
		t.Fatalf("result = %+v", res)
	}
	if len(res.SignaturesFound) != 2 {
		t.Errorf("signatures = %v, want 2", res.SignaturesFound)
	}
	if res.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want > 0.5 with two hits", res.Confidence)
	}
}

// A lone generic credential form stays below every kit's threshold.
func TestMatchGenericLoginFormAlone(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Match(&model.ContentObservation{
		HTMLTitle: "Sign in",
		Forms: []model.FormSummary{
			{Action: "/login", InputNames: []string{"username", "password"}},
		},
		HasPasswordInput: true,
	})
	if res.Detected {
		t.Errorf("generic login form alone triggered %q: %+v", res.ToolkitName, res)
	}
}

func TestMatchEvilginxCookie(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Match(&model.ContentObservation{
		Cookies: []model.Cookie{{Name: "ew_session"}},
	})
	if !res.Detected {
		t.Fatalf("not detected: %+v", res)
	}
	if res.ToolkitName != "Evilginx2" {
		t.Errorf("toolkit = %q, want Evilginx2", res.ToolkitName)
	}
}

func TestMatchConfidenceClamped(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	headers := http.Header{}
	headers.Set("X-Gophish-Contact", "a@b.test")
	headers.Set("X-Gophish-Signature", "sig")

	res := m.Match(&model.ContentObservation{
		QueryParams:     []string{"rid"},
		ResponseHeaders: headers,
		HTMLTitle:       "Document Portal",
		BodyExcerpt:     `<form action="/submit?rid=x"><input name="rid" type="hidden"></form>`,
		Forms: []model.FormSummary{
			{InputNames: []string{"rid", "username", "password"}},
		},
	})
	if !res.Detected {
		t.Fatal("not detected")
	}
	if res.Confidence > 1 {
		t.Errorf("confidence = %v, want <= 1", res.Confidence)
	}
}
