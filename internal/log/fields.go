package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBudgetID    = "budget_id"
	FieldWorkspaceID = "workspace_id"
	FieldCategoryID  = "category_id"
	FieldItemID      = "item_id"
	FieldPeriodStart = "period_start"
	FieldPeriodEnd   = "period_end"
	FieldAmount      = "amount"
	FieldRefDate     = "ref_date"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentService  = "service"
	ComponentLedger   = "ledger"
	ComponentPeriod   = "period"
	ComponentEnvelope = "envelope"
)

// Operations defines standard operation names
const (
	OpView     = "view"
	OpResolve  = "resolve"
	OpSet      = "set"
	OpUpdate   = "update"
	OpExpand   = "expand"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
