package services

import (
	"strings"
	"time"

	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// screenContent trims text and rejects it when empty or blocked by the policy.
// kind labels the blocked-content metric.
func screenContent(policy contentpolicy.ContentPolicy, kind, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewValidationError("Content cannot be empty")
	}
	if policy != nil && policy.Classify(text).Blocked {
		metrics.ContentBlockedTotal.WithLabelValues(kind).Inc()
		return "", apperrors.NewValidationError("content contains prohibited language")
	}
	return text, nil
}

// excerpt shortens text for notification bodies
func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
