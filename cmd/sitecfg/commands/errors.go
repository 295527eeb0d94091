package commands

import (
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// errorMessage is the short, user-facing text of err.
func errorMessage(err error) string {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.Message()
	}
	return err.Error()
}
