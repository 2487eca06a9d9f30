package log

// Common field names for structured logging.
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldSource         = "source"
	FieldFormat         = "format"
	FieldMunicipalities = "municipalities"
	FieldRows           = "rows"
	FieldKept           = "kept"
	FieldDropped        = "dropped"
	FieldCacheKey       = "cache_key"
	FieldDuration       = "duration_ms"
	FieldOutput         = "output"
)

// Components.
const (
	ComponentApp      = "app"
	ComponentLoader   = "loader"
	ComponentSource   = "source"
	ComponentCache    = "cache"
	ComponentPipeline = "pipeline"
	ComponentExport   = "export"
	ComponentChart    = "chart"
)

// Operations.
const (
	OpLoad      = "load"
	OpRead      = "read"
	OpAggregate = "aggregate"
	OpFilter    = "filter"
	OpExport    = "export"
	OpRender    = "render"
	OpEvict     = "evict"
)
