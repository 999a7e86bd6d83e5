package errors

import "fmt"

// NotFoundError: a product, cart, order or catalog does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError: one input field, or the input as a whole, was rejected.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// WrapValidation reports err against field. Nil stays nil.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// StockError: more units were requested than the product has, or than one
// line may hold (Limited).
type StockError struct {
	ProductID string
	Requested int
	Available int
	Limited   bool
}

func NewStockError(productID string, requested, available int) *StockError {
	return &StockError{ProductID: productID, Requested: requested, Available: available}
}

// NewLimitError reports a quantity clamped to the per-line cap rather than
// to stock.
func NewLimitError(productID string, requested, limit int) *StockError {
	return &StockError{ProductID: productID, Requested: requested, Available: limit, Limited: true}
}

func (e *StockError) Error() string {
	if e.Limited {
		return fmt.Sprintf("at most %d of product %s per order, %d requested", e.Available, e.ProductID, e.Requested)
	}
	if e.Available == 0 {
		return fmt.Sprintf("product %s is out of stock", e.ProductID)
	}
	return fmt.Sprintf("product %s has %d in stock, %d requested", e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Is(target error) bool { return target == ErrOutOfStock }

// ConfigError: the storefront cannot start or serve with its settings.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	msg := "bad " + e.Component + " config: " + e.Message
	if e.Component == "" {
		msg = "bad config: " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseError: a catalog file, cart blob, filter or backend body could not
// be decoded. It counts as invalid input.
type ParseError struct {
	Format  string
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	where := e.File
	if where != "" && e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	if where == "" {
		return fmt.Sprintf("decoding %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("decoding %s %s: %s", e.Format, where, e.Message)
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrInvalidInput }

// WrapParse reports err as a decode failure. Nil stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// IOError: a file or stream operation failed.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return e.Operation + ": " + causeText(e.Err)
	}
	return e.Operation + " " + e.Path + ": " + causeText(e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WrapIO reports err against path. Nil stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ResourceError: an operation on a named storefront resource failed. The
// cause's kind shows through errors.Is.
type ResourceError struct {
	Operation string
	Resource  string
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	target := e.Resource
	if e.ID != "" {
		target += " " + e.ID
	}
	return fmt.Sprintf("cannot %s %s: %s", e.Operation, target, causeText(e.Err))
}

func (e *ResourceError) Unwrap() error { return e.Err }

// WrapResource reports err against a resource. Nil stays nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}
