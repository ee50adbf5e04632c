package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestCounterRender(t *testing.T) {
	Reset()
	IncCounter("insightgen_analyses_started_total")
	IncCounter("insightgen_analyses_started_total")
	IncCounter("insightgen_analyses_failed_total")

	out := Render()
	if !strings.Contains(out, "insightgen_analyses_started_total 2") {
		t.Fatalf("missing started counter in output:\n%s", out)
	}
	if !strings.Contains(out, "insightgen_analyses_failed_total 1") {
		t.Fatalf("missing failed counter in output:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE insightgen_analyses_started_total counter") {
		t.Fatalf("missing TYPE line in output:\n%s", out)
	}
}

func TestHistogramRender(t *testing.T) {
	Reset()
	ObserveDuration("insightgen_analysis_duration_seconds", 2*time.Second)
	ObserveDuration("insightgen_analysis_duration_seconds", 45*time.Second)

	out := Render()
	if !strings.Contains(out, `insightgen_analysis_duration_seconds_bucket{le="2.5"} 1`) {
		t.Fatalf("unexpected 2.5s bucket:\n%s", out)
	}
	if !strings.Contains(out, `insightgen_analysis_duration_seconds_bucket{le="+Inf"} 2`) {
		t.Fatalf("unexpected +Inf bucket:\n%s", out)
	}
	if !strings.Contains(out, "insightgen_analysis_duration_seconds_count 2") {
		t.Fatalf("unexpected count:\n%s", out)
	}
}
