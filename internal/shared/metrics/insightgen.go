package metrics

import "time"

// Domain counters exported at /metrics.

func IncAnalysisStarted()    { IncCounter("insightgen_analyses_started_total") }
func IncAnalysisCompleted()  { IncCounter("insightgen_analyses_completed_total") }
func IncAnalysisFailed()     { IncCounter("insightgen_analyses_failed_total") }
func IncForecastGenerated()  { IncCounter("insightgen_forecasts_generated_total") }
func IncForecastFailed()     { IncCounter("insightgen_forecasts_failed_total") }
func IncChatMessage()        { IncCounter("insightgen_chat_messages_total") }
func IncChatFailed()         { IncCounter("insightgen_chat_failed_total") }
func IncDataSourceSynced()   { IncCounter("insightgen_datasources_synced_total") }

func IncAnalysisJobsReceived()             { IncCounter("insightgen_analysis_jobs_received_total") }
func IncAnalysisJobsCompleted()            { IncCounter("insightgen_analysis_jobs_completed_total") }
func IncAnalysisJobsFailed()               { IncCounter("insightgen_analysis_jobs_failed_total") }
func IncAnalysisJobsDeletedUnrecoverable() { IncCounter("insightgen_analysis_jobs_deleted_unrecoverable_total") }

// ObserveAnalysisDuration records end-to-end pipeline latency.
func ObserveAnalysisDuration(d time.Duration) {
	ObserveDuration("insightgen_analysis_duration_seconds", d)
}
