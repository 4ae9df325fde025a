package fusion

// Weights holds every hand-tuned constant of the risk formulas. The values
// below were validated against a labeled URL set; treat them as tunable
// parameters rather than contracts.
type Weights struct {
	// Offline formula.
	ClassifierMax        int // classifier contributes up to this many points
	URLLengthThreshold   int // raw URL length over this adds URLLengthPenalty
	URLLengthPenalty     int
	PathLengthThreshold  int
	PathLengthPenalty    int
	GeneratedPenalty     int // looks-generated flag, offline only
	IPAddressPenalty     int
	NoTLSPenalty         int
	SuspiciousWordUnit   int // per keyword
	SuspiciousWordCap    int
	EntropyThreshold     float64
	EntropyPenalty       int
	DomainEntropyLimit   float64
	DomainEntropyPenalty int
	HyphenLimit          int
	HyphenPenalty        int
	SubdomainLimit       int
	SubdomainPenalty     int
	AtSignPenalty        int

	// Online formula.
	ImpersonationRisk     int // typosquat confirmed against a live site
	CredentialHarvestRisk int // password input on an impersonation site
	MinimalContentRisk    int
	ExcessiveInputsRisk   int
	IframeRisk            int
	OnlineClassifierMax   int     // high-confidence classifier contribution
	OnlineClassifierFloor float64 // minimum probability to count online
	CredibilityBonus      int     // subtracted for substantial content
	CredibilityMinLinks   int

	// Classification thresholds.
	PhishingThreshold int // risk at or above this is phishing
	WarnThreshold     int // online: risk at or above this is still phishing, lower confidence

	// Confidence policy.
	OfflineConfidenceScale float64 // offline verdicts are scaled down by this
	ReducedSignalCap       float64 // cap when the classifier is unavailable
}

// DefaultWeights returns the tuned constants.
func DefaultWeights() *Weights {
	return &Weights{
		ClassifierMax:        50,
		URLLengthThreshold:   75,
		URLLengthPenalty:     10,
		PathLengthThreshold:  50,
		PathLengthPenalty:    5,
		GeneratedPenalty:     45,
		IPAddressPenalty:     20,
		NoTLSPenalty:         10,
		SuspiciousWordUnit:   5,
		SuspiciousWordCap:    20,
		EntropyThreshold:     4.5,
		EntropyPenalty:       10,
		DomainEntropyLimit:   3.5,
		DomainEntropyPenalty: 15,
		HyphenLimit:          3,
		HyphenPenalty:        10,
		SubdomainLimit:       2,
		SubdomainPenalty:     10,
		AtSignPenalty:        15,

		ImpersonationRisk:     60,
		CredentialHarvestRisk: 30,
		MinimalContentRisk:    20,
		ExcessiveInputsRisk:   15,
		IframeRisk:            10,
		OnlineClassifierMax:   30,
		OnlineClassifierFloor: 0.9,
		CredibilityBonus:      40,
		CredibilityMinLinks:   10,

		PhishingThreshold: 70,
		WarnThreshold:     40,

		OfflineConfidenceScale: 0.9,
		ReducedSignalCap:       0.6,
	}
}
