package log

import "rewards/internal/core"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldCustomerID    = "customer_id"
	FieldCustomers     = "customers"
	FieldTransactionID = "transaction_id"
	FieldTransactions  = "transactions"
	FieldTotalPoints   = "total_points"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldCacheHit      = "cache_hit"
	FieldBackend       = "backend"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentRewards = "rewards"
	ComponentStorage = "storage"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpRead    = "read"
	OpIngest  = "ingest"
	OpImport  = "import"
	OpPublish = "publish"
	OpMigrate = "migrate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDateRange adds the window bounds; a nil range adds nothing.
func (f LogFields) WithDateRange(r *core.DateRange) LogFields {
	if r != nil {
		f[FieldStartDate] = r.Start.String()
		f[FieldEndDate] = r.End.String()
	}
	return f
}

// WithSummary adds the headline figures of a reward summary.
func (f LogFields) WithSummary(s core.CustomerRewardSummary) LogFields {
	f[FieldCustomerID] = s.CustomerID
	f[FieldTotalPoints] = s.TotalPoints
	f[FieldTransactions] = len(s.Transactions)
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to key/value pairs for slog. The component key
// is left out because Logger adds it itself.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}
