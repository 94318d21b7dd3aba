package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pushdown/internal/engine"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, ErrCodeNotFound, "missing")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, ErrCodeNotFound, "missing"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitFailure, ErrCodeStore, "writing graph", cause)

	assert.Equal(t, "writing graph: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "missing", NewExitError(ExitCommandError, ErrCodeNotFound, "missing").Error())
}

type greeting struct{ Name string }

func (g greeting) renderText(w io.Writer) { fmt.Fprintf(w, "hello %s\n", g.Name) }

func TestOutputFormatter_Success(t *testing.T) {
	t.Run("text uses renderer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, f.Success(greeting{Name: "marko"}))
		assert.Equal(t, "hello marko\n", buf.String())
	})

	t.Run("text falls back to Println", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, f.Success("done"))
		assert.Equal(t, "done\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, f.Success(greeting{Name: "marko"}))

		var resp struct {
			Status string
			Data   greeting
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "marko", resp.Data.Name)
	})
}

func TestOutputFormatter_Fail(t *testing.T) {
	cause := &engine.ExecError{Code: engine.ErrCodeUnsupportedStep, Message: "no", Step: 1}

	t.Run("json carries the query code", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}
		err := f.Fail(WrapExitError(ExitFailure, ErrCodeExecute, "executing pipeline", cause))

		assert.Equal(t, ExitFailure, GetExitCode(err))
		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeExecute, resp.Error.Code)
		assert.Equal(t, string(engine.ErrCodeUnsupportedStep), resp.Error.QueryCode)
	})

	t.Run("text goes to the error writer", func(t *testing.T) {
		out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}
		_ = f.Fail(NewExitError(ExitCommandError, ErrCodeNotFound, "database not found: x.db"))

		assert.Empty(t, out.String())
		assert.Equal(t, "Error [E005]: database not found: x.db\n", errOut.String())
	})

	t.Run("plain errors become generic failures", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}
		err := f.Fail(errors.New("boom"))

		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, buf.String(), "Error [E001]: command failed: boom")
	})
}
