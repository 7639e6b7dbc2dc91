package validate

import (
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/groundcheck/groundcheck/internal/agent"
)

// DefaultGenerationWarning is shown when the generator's payload cannot be used.
const DefaultGenerationWarning = "Failed to generate answer. Please try again."

// generationPayload mirrors agent.GenerationResult but defers citation
// decoding so malformed elements can be handled one by one.
type generationPayload struct {
	Answer    string          `json:"answer"`
	Status    string          `json:"status"`
	Citations json.RawMessage `json:"citations"`
	Warning   string          `json:"warning"`
}

// Generation converts a raw generator payload plus transport error into a
// displayable result. It never fails: anything unusable degrades to a
// missing_info result carrying a warning.
func Generation(raw json.RawMessage, callErr error, log *zap.Logger) agent.GenerationResult {
	if log == nil {
		log = zap.NewNop()
	}

	fallback := agent.GenerationResult{
		Status:  agent.StatusMissingInfo,
		Warning: DefaultGenerationWarning,
	}

	if callErr != nil {
		log.Warn("generation call failed", zap.Error(callErr))
		return fallback
	}

	var payload generationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Warn("generation payload undecodable", zap.Error(err))
		return fallback
	}

	switch payload.Status {
	case agent.StatusSuccess, agent.StatusMissingInfo:
	default:
		log.Warn("generation payload has unknown status", zap.String("status", payload.Status))
		if payload.Warning != "" {
			fallback.Warning = payload.Warning
		}
		return fallback
	}

	result := agent.GenerationResult{
		Answer:    payload.Answer,
		Status:    payload.Status,
		Citations: decodeCitations(payload.Citations, log),
		Warning:   payload.Warning,
	}

	if result.Status == agent.StatusMissingInfo && result.Warning == "" {
		result.Warning = DefaultGenerationWarning
	}
	if result.Status == agent.StatusSuccess && result.Answer == "" {
		log.Warn("generation reported success with empty answer")
	}

	return result
}

// decodeCitations decodes the citations list element by element. A malformed
// element keeps whatever fields decoded so the citation count is preserved;
// a citations field that is not a list at all yields no citations.
func decodeCitations(raw json.RawMessage, log *zap.Logger) []agent.Citation {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		log.Warn("citations field is not a list", zap.Error(err))
		return nil
	}

	citations := make([]agent.Citation, 0, len(elems))
	for i, elem := range elems {
		var c agent.Citation
		if err := json.Unmarshal(elem, &c); err != nil {
			log.Warn("malformed citation kept with partial fields",
				zap.Int("index", i),
				zap.Error(err),
			)
		}
		citations = append(citations, c)
	}
	return citations
}

// Audit validates a raw auditor payload. Unlike generation there is no
// displayable fallback: a payload that cannot be decoded fails the audit
// and the reason is surfaced to the caller.
func Audit(raw json.RawMessage, callErr error, log *zap.Logger) (agent.AuditResult, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if callErr != nil {
		return agent.AuditResult{}, fmt.Errorf("audit call failed: %w", callErr)
	}

	var result agent.AuditResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return agent.AuditResult{}, fmt.Errorf("failed to decode audit payload: %w", err)
	}

	if result.ComplianceScore < 0 || result.ComplianceScore > 100 {
		clamped := math.Min(100, math.Max(0, result.ComplianceScore))
		log.Warn("compliance score out of range, clamping",
			zap.Float64("reported", result.ComplianceScore),
			zap.Float64("clamped", clamped),
		)
		result.ComplianceScore = clamped
	}

	// The analysis list drives rendering; the reported count is kept as-is.
	if result.TotalSentences != len(result.Analysis) {
		log.Warn("sentence count disagrees with analysis length",
			zap.Int("total_sentences", result.TotalSentences),
			zap.Int("analyzed", len(result.Analysis)),
		)
	}

	return result, nil
}
