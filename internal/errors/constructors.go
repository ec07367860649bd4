package errors

// Convenience functions for common error patterns

// Annotation errors

func AnnotationError(cause error, pos string) *WeaveError {
	return Wrap(cause, CategoryAnnotation, SeverityFatal, "invalid instrument directive").
		WithPosition(pos)
}

// Config errors

func ConfigNotFound(path string) *WeaveError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *WeaveError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Weave pipeline errors

func ParseFailed(pattern string, cause error) *WeaveError {
	return Wrap(cause, CategoryParse, SeverityFatal, "package load failed").
		WithContext("pattern", pattern)
}

func GenerateFailed(file string, cause error) *WeaveError {
	return Wrap(cause, CategoryGenerate, SeverityFatal, "code generation failed").
		WithContext("file", file)
}

func FileSystemError(operation string, cause error) *WeaveError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation)
}

// Cache errors are warnings: a broken cache degrades to a full weave.

func CacheError(operation string, cause error) *WeaveError {
	return Wrap(cause, CategoryCache, SeverityWarning, "weave cache operation failed").
		WithContext("operation", operation)
}

func WatchError(cause error) *WeaveError {
	return Wrap(cause, CategoryWatch, SeverityFatal, "source watcher failed")
}
