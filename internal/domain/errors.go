package domain

import (
	"fmt"
	"time"
)

// Códigos de error del núcleo de gobernanza. Viajan hasta el cliente HTTP
// sin reinterpretación.
const (
	CodeUnknownCommand        = "UNKNOWN_COMMAND"
	CodePermissionDenied      = "PERMISSION_DENIED"
	CodeExecutionNotFound     = "EXECUTION_NOT_FOUND"
	CodeRollbackWindowExpired = "ROLLBACK_WINDOW_EXPIRED"
	CodeRollbackConflict      = "ROLLBACK_CONFLICT"
	CodeHandlerFailed         = "HANDLER_FAILED"
	CodeInvalidPayload        = "INVALID_PAYLOAD"
	CodeInternal              = "INTERNAL"
)

// ExecutionError error genérico del ejecutor con código estable.
// Envuelve la causa original cuando existe (handler, storage).
type ExecutionError struct {
	Code    string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError construye un ExecutionError con código y mensaje.
func NewExecutionError(code, format string, args ...any) *ExecutionError {
	return &ExecutionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapExecutionError construye un ExecutionError que envuelve una causa.
func WrapExecutionError(code string, err error, format string, args ...any) *ExecutionError {
	return &ExecutionError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// PermissionDeniedError el rol del actor no está habilitado para el comando.
// La ausencia en allowed_roles es un rechazo duro, nunca un no-op silencioso.
type PermissionDeniedError struct {
	Role        string
	CommandType string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s: el rol %q no puede ejecutar %q", CodePermissionDenied, e.Role, e.CommandType)
}

// RollbackWindowExpiredError la ventana fija de reversión ya transcurrió.
// Aplica uniformemente a todos los roles, incluido super_admin.
type RollbackWindowExpiredError struct {
	ExecutionID string
	Elapsed     time.Duration
	Window      time.Duration
}

func (e *RollbackWindowExpiredError) Error() string {
	return fmt.Sprintf("%s: la ejecución %s superó la ventana de reversión (%s > %s)",
		CodeRollbackWindowExpired, e.ExecutionID, e.Elapsed.Round(time.Second), e.Window)
}
