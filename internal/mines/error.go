package mines

import "errors"

var ErrInvalidParams = errors.New("invalid game params")

type ParamsError struct {
	Params  GameParams
	message string
}

// [*ParamsError] implements [error]
func (e *ParamsError) Error() string {
	return "invalid game params " + e.Params.Seed() + ": " + e.message
}

func (e *ParamsError) Is(target error) bool {
	return target == ErrInvalidParams
}

type LayoutError struct {
	message string
}

// [*LayoutError] implements [error]
func (e *LayoutError) Error() string {
	return "invalid mine layout: " + e.message
}
