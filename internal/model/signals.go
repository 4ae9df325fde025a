package model

import "net/http"

// DetectionMethod identifies which typosquatting check produced a result.
// The fusion engine switches exhaustively over these values, so adding a
// method here requires updating the fusion logic as well.
type DetectionMethod string

const (
	MethodFaultyExtension  DetectionMethod = "faulty_extension"
	MethodInvalidExtension DetectionMethod = "invalid_extension"
	MethodBrandInDomain    DetectionMethod = "brand_in_domain"
	MethodEditDistance     DetectionMethod = "edit_distance"
	MethodHomoglyph        DetectionMethod = "homoglyph_substitution"
	MethodSubdomainAttack  DetectionMethod = "subdomain_attack"
	MethodNone             DetectionMethod = "none"
)

// Unambiguous reports whether the method alone justifies a phishing verdict
// without fetching any content (a broken or misspelled public suffix cannot
// belong to a working legitimate site).
func (m DetectionMethod) Unambiguous() bool {
	return m == MethodFaultyExtension || m == MethodInvalidExtension
}

// TyposquatResult is the outcome of the typosquatting/homograph analysis for
// a single URL. Immutable once returned.
type TyposquatResult struct {
	IsTyposquat       bool            `json:"is_typosquat"`
	ImpersonatedBrand string          `json:"impersonated_brand,omitempty"`
	Method            DetectionMethod `json:"detection_method"`
	SimilarityScore   float64         `json:"similarity_score"` // 0.0 - 1.0
	RiskIncrease      int             `json:"risk_increase"`    // 0 - 100
	Detail            string          `json:"detail,omitempty"`
}

// Cookie is the subset of cookie attributes the toolkit matcher inspects.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"-"`
}

// FormSummary describes one form on the page: its action target and the
// lowercase names of its inputs, in document order.
type FormSummary struct {
	Action     string   `json:"action"`
	InputNames []string `json:"input_names"`
}

// ContentObservation is the structured snapshot of a fetched page, supplied
// by the content fetcher and consumed read-only by the matcher and the fusion
// engine. The core never mutates it.
type ContentObservation struct {
	FinalURL         string        `json:"final_url"`
	HTMLTitle        string        `json:"html_title"`
	LinkCount        int           `json:"link_count"`
	ImageCount       int           `json:"image_count"`
	FormCount        int           `json:"form_count"`
	InputCount       int           `json:"input_count"`
	IframeCount      int           `json:"iframe_count"`
	HasPasswordInput bool          `json:"has_password_input"`
	Forms            []FormSummary `json:"forms,omitempty"`
	ResponseHeaders  http.Header   `json:"-"`
	Cookies          []Cookie      `json:"-"`
	QueryParams      []string      `json:"query_params,omitempty"`
	BodyText         string        `json:"-"`
	BodyExcerpt      string        `json:"-"`
	HTMLSize         int           `json:"html_size_bytes"`
	UsedTLS          bool          `json:"used_tls"`
}

// ToolkitMatchResult reports whether the observation matched a known phishing
// kit fingerprint. Confidence is the capped sum of matched signature weights,
// a relative strength score rather than a probability.
type ToolkitMatchResult struct {
	Detected        bool     `json:"detected"`
	ToolkitName     string   `json:"toolkit_name,omitempty"`
	Confidence      float64  `json:"confidence"` // 0.0 - 1.0
	SignaturesFound []string `json:"signatures_found,omitempty"`
}

// ClassifierVerdict is the external classifier's raw output, treated as
// opaque evidence by the fusion engine.
type ClassifierVerdict struct {
	Label       int     `json:"label"`       // 0 = legitimate, 1 = phishing
	Probability float64 `json:"probability"` // 0.0 - 1.0
}

// AITextSignal is the optional textual-analysis collaborator's assessment of
// page text.
type AITextSignal struct {
	IsAIGenerated bool     `json:"is_ai_generated"`
	Confidence    float64  `json:"confidence"`
	Indicators    []string `json:"indicators,omitempty"`
}
