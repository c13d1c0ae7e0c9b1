package cel

import "errors"

var (
	ErrInvalidMagic = errors.New("invalid CEL1 magic")
	ErrCorruptFile  = errors.New("corrupt CEL1 file")
	ErrInvalidGrid  = errors.New("invalid CEL1 grid geometry")
)
