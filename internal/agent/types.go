package agent

import "encoding/json"

// Envelope status values returned by the agent service.
const (
	EnvelopeSuccess = "success"
	EnvelopeError   = "error"
)

// Generation result status values.
const (
	StatusSuccess     = "success"
	StatusMissingInfo = "missing_info"
)

// Sentence verification status values (wire spellings).
const (
	VerificationVerified      = "VERIFIED"
	VerificationUnknown       = "UNKNOWN"
	VerificationContradiction = "CONTRADICTION"
)

// Sentence risk levels (wire spellings).
const (
	RiskSafe    = "safe"
	RiskWarning = "warning"
	RiskDanger  = "danger"
)

// Envelope is the outer response shape shared by every agent.
type Envelope struct {
	Status   string          `json:"status"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
}

// Metadata carries optional diagnostic fields. Both fields may be absent.
type Metadata struct {
	AgentName string `json:"agent_name,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Citation links a generated answer back to vault text.
type Citation struct {
	SourceText string `json:"source_text"`
	Relevance  string `json:"relevance"`
}

// GenerationResult is the generator agent's result payload.
type GenerationResult struct {
	Answer    string     `json:"answer"`
	Status    string     `json:"status"`
	Citations []Citation `json:"citations,omitempty"`
	Warning   string     `json:"warning,omitempty"`
}

// SentenceAnalysis is the auditor's verdict for a single sentence.
type SentenceAnalysis struct {
	Sentence       string `json:"sentence"`
	Status         string `json:"status"`
	RiskLevel      string `json:"risk_level"`
	Explanation    string `json:"explanation"`
	VaultReference string `json:"vault_reference,omitempty"`
}

// AuditResult is the auditor agent's result payload.
type AuditResult struct {
	ComplianceScore float64            `json:"compliance_score"`
	TotalSentences  int                `json:"total_sentences"`
	Analysis        []SentenceAnalysis `json:"analysis"`
	Summary         string             `json:"summary"`
}
