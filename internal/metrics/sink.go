package metrics

import "github.com/rs/zerolog"

// Sink receives the per-sub-category saved counter after each sub-category's
// persistence completes. Implementations are external collaborators.
type Sink interface {
	ReportSaved(category, subCategory string, saved int)
}

// LogSink reports saved counters through the structured log.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) ReportSaved(category, subCategory string, saved int) {
	s.logger.Info().
		Str("category", category).
		Str("sub_category", subCategory).
		Int("saved", saved).
		Msg("sub-category persistence completed")
}
