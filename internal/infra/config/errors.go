package config

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Error agrupa todos los problemas de configuración de una invocación.
type Error struct {
	Missing []string
	errs    *multierror.Error
}

func newError(missing []string, errs *multierror.Error) *Error {
	errs.ErrorFormat = func(es []error) string {
		parts := make([]string, 0, len(es))
		for _, e := range es {
			parts = append(parts, e.Error())
		}
		return strings.Join(parts, "; ")
	}
	return &Error{Missing: missing, errs: errs}
}

func (e *Error) Error() string {
	return "invalid configuration: " + e.errs.Error()
}

func (e *Error) Unwrap() error { return e.errs }

// MissingConnection indica si falta alguna de las variables de conexión
// (contact points, usuario o password).
func (e *Error) MissingConnection() bool {
	for _, m := range e.Missing {
		switch m {
		case EnvContactPoints, EnvUsername, EnvPassword:
			return true
		}
	}
	return false
}

// Errors devuelve cada problema por separado.
func (e *Error) Errors() []error { return e.errs.WrappedErrors() }
