package builder

import "github.com/cockroachdb/errors"

var (
	ErrNotJava         = errors.New("not a java file")
	ErrNotConstruction = errors.New("no constructor call on this line")
	ErrClassNotFound   = errors.New("class not found")
	ErrNoMembers       = errors.New("no members found")
	ErrCancelled       = errors.New("generation cancelled")
)

// IsUserFacing reports whether err is an expected outcome of user input
// rather than a failure of the tool.
func IsUserFacing(err error) bool {
	return errors.IsAny(err, ErrNotJava, ErrNotConstruction, ErrClassNotFound, ErrNoMembers)
}
