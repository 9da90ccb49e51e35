package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
)

const (
	defaultAIConfidence      = 0.7
	defaultInsightConfidence = 0.5
	missingSummary           = "Summary not available"
)

type rawInsight struct {
	Point      string   `json:"point"`
	Frequency  *float64 `json:"frequency"`
	Confidence *float64 `json:"confidence"`
	Sources    []string `json:"sources"`
	Category   string   `json:"category"`
}

type rawMetadata struct {
	ConfidenceScore       *float64 `json:"confidence_score"`
	CoverageAssessment    string   `json:"coverage_assessment"`
	ConflictingViewpoints bool     `json:"conflicting_viewpoints"`
}

// ParseResponse extracts the JSON object embedded in an AI response. Fields
// are decoded one at a time so a malformed insight or event is skipped
// rather than failing the whole response. The error wraps
// apperr.ErrUnparsable when no object can be decoded.
func ParseResponse(text string, articleCount int, log *slog.Logger) (AnalysisResult, error) {
	log = logger.OrDefault(log)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return AnalysisResult{}, fmt.Errorf("%w: no json object found", apperr.ErrUnparsable)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", apperr.ErrUnparsable, err)
	}

	res := AnalysisResult{
		Origin:             OriginAI,
		Summary:            missingSummary,
		ConfidenceScore:    defaultAIConfidence,
		CoverageAssessment: CoveragePartial,
	}

	var summary string
	if raw, ok := fields["summary"]; ok && json.Unmarshal(raw, &summary) == nil && strings.TrimSpace(summary) != "" {
		res.Summary = strings.TrimSpace(summary)
	}

	res.Insights = parseInsights(fields["insights"], articleCount, log)
	res.TimelineEvents = parseTimelineEvents(fields["timeline_events"], log)

	if raw, ok := fields["source_analysis"]; ok {
		var sa SourceAnalysis
		if err := json.Unmarshal(raw, &sa); err == nil {
			res.SourceAnalysis = &sa
		} else {
			log.Warn("Failed to parse source analysis", "error", err)
		}
	}

	if raw, ok := fields["analysis_metadata"]; ok {
		var meta rawMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			log.Warn("Failed to parse analysis metadata", "error", err)
		} else {
			if meta.ConfidenceScore != nil {
				res.ConfidenceScore = clamp(*meta.ConfidenceScore, 0, 1)
			}
			switch meta.CoverageAssessment {
			case CoverageComprehensive, CoveragePartial, CoverageLimited:
				res.CoverageAssessment = meta.CoverageAssessment
			}
			res.ConflictingViewpoints = meta.ConflictingViewpoints
		}
	}

	return res, nil
}

func parseInsights(raw json.RawMessage, articleCount int, log *slog.Logger) []Insight {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	maxFrequency := max(1, articleCount)
	insights := make([]Insight, 0, len(items))
	for i, item := range items {
		var ri rawInsight
		if err := json.Unmarshal(item, &ri); err != nil {
			log.Warn("Failed to parse insight", "insight_index", i, "error", err)
			continue
		}
		point := strings.TrimSpace(ri.Point)
		if point == "" {
			log.Warn("Skipping insight without point", "insight_index", i)
			continue
		}

		in := Insight{
			Point:      point,
			Frequency:  1,
			Confidence: defaultInsightConfidence,
			Category:   CategoryGeneral,
		}
		if ri.Frequency != nil {
			in.Frequency = int(clamp(math.Round(*ri.Frequency), 1, float64(maxFrequency)))
		}
		if ri.Confidence != nil {
			in.Confidence = clamp(*ri.Confidence, 0, 1)
		}
		in.Sources = distinct(nonEmpty(ri.Sources), maxInsightSources)
		if cat := strings.ToLower(strings.TrimSpace(ri.Category)); knownCategories[cat] {
			in.Category = cat
		}
		insights = append(insights, in)
	}
	return insights
}

func parseTimelineEvents(raw json.RawMessage, log *slog.Logger) []TimelineEvent {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	events := make([]TimelineEvent, 0, len(items))
	for i, item := range items {
		var ev TimelineEvent
		if err := json.Unmarshal(item, &ev); err != nil {
			log.Warn("Failed to parse timeline event", "event_index", i, "error", err)
			continue
		}
		ev.Event = strings.TrimSpace(ev.Event)
		if ev.Event == "" {
			continue
		}
		ev.Timestamp = strings.TrimSpace(ev.Timestamp)
		events = append(events, ev)
	}
	return events
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(hi, v))
}
