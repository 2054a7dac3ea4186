package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightlane/qaharbor/internal/domain"
)

func TestTestcaseStatus_OrdinalOrderingIsWorstFirst(t *testing.T) {
	assert.Less(t, int(domain.StatusError), int(domain.StatusFail))
	assert.Less(t, int(domain.StatusFail), int(domain.StatusPass))
	assert.Less(t, int(domain.StatusPass), int(domain.StatusSkip))
}

func TestTestcaseStatus_String(t *testing.T) {
	cases := map[domain.TestcaseStatus]string{
		domain.StatusError: "error",
		domain.StatusFail:  "fail",
		domain.StatusPass:  "pass",
		domain.StatusSkip:  "skip",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}

func TestParseTestcaseStatus_RoundTrips(t *testing.T) {
	for _, s := range []string{"error", "fail", "pass", "skip"} {
		status, ok := domain.ParseTestcaseStatus(s)
		assert.True(t, ok)
		assert.Equal(t, s, status.String())
	}
}

func TestParseTestcaseStatus_RejectsUnknown(t *testing.T) {
	_, ok := domain.ParseTestcaseStatus("bogus")
	assert.False(t, ok)
}
