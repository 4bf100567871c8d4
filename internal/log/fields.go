package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldSuccess     = "success"
	FieldDuration    = "duration_ms"
	FieldExpenseID   = "expense_id"
	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldPeriodDays  = "period_days"
	FieldPeriodLabel = "period_label"
	FieldRecordCount = "record_count"
	FieldFileName    = "file_name"
	FieldMimeType    = "mime_type"
	FieldFormat      = "format"
	FieldLocator     = "locator"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentReport  = "report"
	ComponentExport  = "export"
	ComponentEntry   = "entry"
	ComponentListing = "listing"
	ComponentAMQP    = "amqp"
	ComponentSink    = "sink"
	ComponentSheets  = "sheets"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpInsert   = "insert"
	OpDelete   = "delete"
	OpQuery    = "query"
	OpCompute  = "compute"
	OpObserve  = "observe"
	OpExport   = "export"
	OpShare    = "share"
	OpSave     = "save"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
