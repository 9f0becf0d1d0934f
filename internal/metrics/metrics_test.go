package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"newsLedger/internal/model"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)

	IncSubmission(model.ChainNotConfigured)
	IncVerification(model.SourceNone)
	ObserveUpstream("extract", "fetch", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(SubmissionsTotal.WithLabelValues("notConfigured")); got < 1 {
		t.Fatalf("submission counter not incremented: %v", got)
	}
	if got := testutil.ToFloat64(VerificationsTotal.WithLabelValues("none")); got < 1 {
		t.Fatalf("verification counter not incremented: %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) < 3 {
		t.Fatalf("expected registered families, got %d", len(families))
	}
}
