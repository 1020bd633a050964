package cmds

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aixcyberchallenge/data-form/internal/form"
)

// Renders the form on a terminal. Fields come from flags, statuses go to out or errOut.
type terminalUI struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	fields form.Fields
}

var _ form.UI = (*terminalUI)(nil)

func newTerminalUI(out, errOut io.Writer, l *slog.Logger, fields form.Fields) *terminalUI {
	return &terminalUI{out: out, errOut: errOut, logger: l, fields: fields}
}

func (u *terminalUI) Fields() form.Fields {
	return u.fields
}

// nothing to disable on a terminal, keep a trace of it for debugging
func (u *terminalUI) SetSubmitEnabled(enabled bool) {
	u.logger.Debug("submit control", "enabled", enabled)
}

func (u *terminalUI) ShowStatus(kind form.StatusKind, message string) {
	w := u.out
	if kind == form.StatusError {
		w = u.errOut
	}
	fmt.Fprintln(w, message)
}

func (u *terminalUI) Reset() {
	u.fields = form.Fields{}
}
