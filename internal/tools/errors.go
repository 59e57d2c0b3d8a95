package tools

import "errors"

// Sentinels surfaced by Register and Execute. Execution errors reach the model
// as function-response errors, so the messages stay short and plain.
var (
	// ErrToolNotFound: the model or `nansc tools run` named an unknown tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty rejects a registration without a name.
	ErrToolNameEmpty = errors.New("tool name is required")

	// ErrToolExecuteNil rejects a registration without a handler.
	ErrToolExecuteNil = errors.New("tool has no handler")

	// ErrToolAlreadyRegistered: ops and research share one registry, so
	// names must be unique across both.
	ErrToolAlreadyRegistered = errors.New("tool name already taken")

	// ErrMissingRequiredArg: a schema-required argument such as icao_code was
	// absent or empty.
	ErrMissingRequiredArg = errors.New("required argument missing")

	// ErrInvalidArgType: an argument could not be read as its schema type.
	ErrInvalidArgType = errors.New("argument has the wrong type")
)
