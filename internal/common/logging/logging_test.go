package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithStacktrace(t *testing.T) {
	logger := log.New()
	buffer := &bytes.Buffer{}
	logger.SetOutput(buffer)

	err := errors.Wrap(errors.New("backend unavailable"), "submitting circuit")
	entry := WithStacktrace(log.NewEntry(logger), err)

	assert.Equal(t, err, entry.Data[log.ErrorKey])
	assert.NotNil(t, entry.Data[Stacktrace])
}

func TestWithStacktrace_PlainError(t *testing.T) {
	entry := WithStacktrace(log.NewEntry(log.New()), plainError("no stack"))
	_, ok := entry.Data[Stacktrace]
	assert.False(t, ok)
}

func TestExtractStack_SearchesAccumulatedErrors(t *testing.T) {
	var result error
	result = multierror.Append(result, plainError("first attempt"))
	result = multierror.Append(result, errors.WithMessage(errors.New("second attempt"), "attempt 2"))

	assert.NotNil(t, ExtractStack(result))
	assert.Nil(t, ExtractStack(multierror.Append(nil, plainError("only"))))
	assert.Nil(t, ExtractStack(nil))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{Level: "debug", Format: "json"}.Validate())
	assert.Error(t, Config{Level: "loud", Format: "text"}.Validate())
	assert.Error(t, Config{Level: "info", Format: "xml"}.Validate())
}

func TestCommandLineFormatter(t *testing.T) {
	formatter := &CommandLineFormatter{}

	formatted, err := formatter.Format(&log.Entry{Level: log.InfoLevel, Message: "Using simulator backend"})
	require.NoError(t, err)
	assert.Equal(t, "Using simulator backend\n", string(formatted))

	formatted, err = formatter.Format(&log.Entry{
		Level:   log.ErrorLevel,
		Message: "Giving up on circuit",
		Data:    log.Fields{log.ErrorKey: plainError("backend unavailable")},
	})
	require.NoError(t, err)
	assert.Equal(t, "error: Giving up on circuit: backend unavailable\n", string(formatted))
}

type plainError string

func (e plainError) Error() string {
	return string(e)
}

func TestConfigureCommandLineLogging(t *testing.T) {
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{})
	}()

	out := &bytes.Buffer{}
	require.NoError(t, ConfigureCommandLineLogging(Config{Level: "warn", Format: "text"}, out))
	log.Info("Using simulator backend")
	log.WithError(plainError("backend unavailable")).Warn("Retrying")
	assert.Equal(t, "warning: Retrying: backend unavailable\n", out.String())

	out.Reset()
	require.NoError(t, ConfigureCommandLineLogging(Config{Level: "info", Format: "json"}, out))
	log.Info("Using simulator backend")
	assert.Contains(t, out.String(), `"msg":"Using simulator backend"`)

	assert.Error(t, ConfigureCommandLineLogging(Config{Level: "loud", Format: "text"}, out))
}
