package observability

const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MSnapshotIO          MetricKey = "snapshot_io_total"
	MSnapshotIODuration  MetricKey = "snapshot_io_duration_seconds"
)
