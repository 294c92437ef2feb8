package logging

// Field names used in diagnostic output.
const (
	FieldError      = "error"
	FieldCollection = "collection"
	FieldTarget     = "target"
	FieldOperation  = "operation"
	FieldCount      = "count"
	FieldField      = "field"
	FieldSuppressed = "suppressed"
	FieldDuration   = "duration_ms"
	FieldInputFile  = "input_file"
	FieldFormat     = "format"
	FieldImportID   = "import_id"
)
