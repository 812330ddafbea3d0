package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/keyspaces-janitor/internal/infra/logging"
)

type logMsg struct {
	Level   string `json:"@level"`
	Message string `json:"@message"`
	Module  string `json:"@module"`
	Table   string `json:"table"`
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Options{Level: "info", Output: &buf})

	l.Info("Cleanup successful.", "table", "events")

	var msg logMsg
	require.NoError(t, json.Unmarshal(buf.Bytes(), &msg))
	assert.Equal(t, "info", msg.Level)
	assert.Equal(t, "Cleanup successful.", msg.Message)
	assert.Equal(t, "janitor", msg.Module)
	assert.Equal(t, "events", msg.Table)
}

func TestNewLevels(t *testing.T) {
	cases := []struct {
		desc    string
		level   string
		debug   bool
		info    bool
		errorOn bool
	}{
		{desc: "default is info", level: "", debug: false, info: true, errorOn: true},
		{desc: "unknown falls back to info", level: "verbose", debug: false, info: true, errorOn: true},
		{desc: "debug", level: "debug", debug: true, info: true, errorOn: true},
		{desc: "error only", level: "ERROR", debug: false, info: false, errorOn: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			l := logging.New(logging.Options{Level: tc.level, Output: &bytes.Buffer{}})
			assert.Equal(t, tc.debug, l.IsDebug())
			assert.Equal(t, tc.info, l.IsInfo())
			assert.Equal(t, tc.errorOn, l.IsError())
		})
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Options{Format: "TEXT", Output: &buf})

	l.Error("Cleanup failed: boom")
	assert.Contains(t, buf.String(), "[ERROR] janitor: Cleanup failed: boom")
}

func TestInitSetsDefault(t *testing.T) {
	prev := hclog.Default()
	t.Cleanup(func() { hclog.SetDefault(prev) })

	var buf bytes.Buffer
	l := logging.Init(logging.Options{Format: "text", Output: &buf})
	assert.Same(t, l, hclog.Default())

	hclog.Default().Info("from default")
	assert.Contains(t, buf.String(), "from default")
}
