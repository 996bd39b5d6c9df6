package codecreg

import "errors"

var (
	ErrLimitExceeded      = errors.New("codecreg: max in-memory size exceeded")
	ErrUnsupportedType    = errors.New("codecreg: unsupported target type")
	ErrUnsupportedContent = errors.New("codecreg: unsupported content type")
	ErrInvalidMessage     = errors.New("codecreg: invalid message payload")
)
