package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const name = "janitor"

type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // json|text
	Output io.Writer
}

// New arma el logger del proceso. Nivel inválido => info.
func New(o Options) hclog.Logger {
	lvl := hclog.LevelFromString(o.Level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	out := o.Output
	if out == nil {
		out = os.Stdout
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		Output:     out,
		JSONFormat: !strings.EqualFold(o.Format, "text"),
		// CloudWatch ya pone su propio timestamp, pero lo dejamos para corridas locales
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// Init crea el logger y lo deja como default de hclog.
func Init(o Options) hclog.Logger {
	l := New(o)
	hclog.SetDefault(l)
	return l
}
