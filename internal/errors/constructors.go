package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *TrackerError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *TrackerError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *TrackerError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Storage errors

func StorageFailed(op string, cause error) *TrackerError {
	return Wrap(cause, CategoryStorage, SeverityError, "storage operation failed").
		WithContext("operation", op)
}

func StorageCorrupt(op string, cause error) *TrackerError {
	return Wrap(cause, CategoryStorage, SeverityError, "persisted record is corrupt").
		WithContext("operation", op)
}

// Core errors

func InvalidTask(task string) *TrackerError {
	return New(CategoryValidation, SeverityError, "unrecognized task identifier").
		WithContext("task", task)
}

// Telegram errors

func TelegramSendFailed(cause error) *TrackerError {
	return WrapRetryable(cause, CategoryTelegram, SeverityWarning, "telegram send failed")
}
