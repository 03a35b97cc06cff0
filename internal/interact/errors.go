package interact

import (
	"errors"
	"fmt"

	"github.com/fbmac/flarumbot/internal/progress"
)

// ErrInvalidRequest reports a Request that cannot be executed as given.
var ErrInvalidRequest = errors.New("invalid interaction request")

// StageError tags a failure with the step that produced it. The cause stays
// reachable through errors.Is and errors.As.
type StageError struct {
	Stage   progress.Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
