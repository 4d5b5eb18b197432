package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MStockLookups            MetricKey = "stock_lookups_total"
	MStockLookupDuration     MetricKey = "stock_lookup_duration_seconds"
	MCheckoutTransitions     MetricKey = "checkout_step_transitions_total"
	MOrderSubmissions        MetricKey = "order_submissions_total"
	MOrderSubmissionDuration MetricKey = "order_submission_duration_seconds"
)
