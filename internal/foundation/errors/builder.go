package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	hint     string
	cause    error
	context  ErrorContext
}

// NewError starts a builder for category with severity SeverityError.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError starts a builder around an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithHint attaches a remediation shown to CLI users below the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Build returns the ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		hint:     b.hint,
		cause:    b.cause,
		context:  b.context,
	}
}

// Build failures are fatal: the first one aborts the build.

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

// TraversalError reports an unsupported entry found during the tree walk.
func TraversalError(message string) *ErrorBuilder {
	return NewError(CategoryTraversal, message).Fatal()
}

// CollisionError reports two source entries that map to one uri.
func CollisionError(message string) *ErrorBuilder {
	return NewError(CategoryCollision, message).Fatal().
		WithHint("rename one of the conflicting entries or change naming.suffix_marker")
}

func RenderError(message string) *ErrorBuilder {
	return NewError(CategoryRender, message).Fatal()
}

// EncodingError reports content that cannot be decoded as UTF-8 text.
func EncodingError(message string) *ErrorBuilder {
	return NewError(CategoryEncoding, message).Fatal()
}

func SyncError(message string) *ErrorBuilder {
	return NewError(CategorySync, message).Fatal()
}

// NetworkError reports a failing external endpoint. It is not fatal to a build.
func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message)
}

func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
