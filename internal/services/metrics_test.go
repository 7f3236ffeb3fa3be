package services

import (
	"errors"
	"testing"

	"agenthub/internal/apperr"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Turn failures are counted under one label per error type, so every type in
// the taxonomy must land in its own bucket rather than the internal catch-all.
func TestRecordTurnErrorLabels(t *testing.T) {
	m := InitMetrics()
	svc := &ChatService{}

	cases := []struct {
		err   error
		label string
	}{
		{apperr.NotFound("session"), "not_found"},
		{apperr.Validation("temperature", "out of range"), "validation"},
		{apperr.Configuration("no endpoint", nil), "configuration"},
		{apperr.Upstream("chat completion", errors.New("503")), "upstream"},
		{apperr.Persistence("append turn", errors.New("connection reset")), "persistence"},
		{errors.New("something else"), "internal"},
	}

	for _, tc := range cases {
		if got := svc.recordTurnError(tc.err); got != tc.err {
			t.Errorf("recordTurnError should return its argument, got %v", got)
		}
		count := testutil.ToFloat64(m.MessageTurnErrors.WithLabelValues(tc.label))
		if count != 1 {
			t.Errorf("expected 1 turn error under %q, got %v", tc.label, count)
		}
	}
}
