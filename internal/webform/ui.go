package webform

import (
	"github.com/aixcyberchallenge/data-form/internal/form"
)

type statusView struct {
	Kind    form.StatusKind
	Message string
}

// Page state for one request. Implements form.UI and is handed to the template as is.
type pageUI struct {
	Status        *statusView
	Environment   string
	Values        form.Fields
	SubmitEnabled bool
}

var _ form.UI = (*pageUI)(nil)

func newPageUI(environment string, values form.Fields) *pageUI {
	return &pageUI{
		Environment:   environment,
		Values:        values,
		SubmitEnabled: true,
	}
}

func (p *pageUI) Fields() form.Fields {
	return p.Values
}

func (p *pageUI) SetSubmitEnabled(enabled bool) {
	p.SubmitEnabled = enabled
}

func (p *pageUI) ShowStatus(kind form.StatusKind, message string) {
	p.Status = &statusView{Kind: kind, Message: message}
}

func (p *pageUI) Reset() {
	p.Values = form.Fields{}
}
