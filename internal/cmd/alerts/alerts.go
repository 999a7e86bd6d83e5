// Package alerts prints command outcomes and reconciliation notices as
// short status lines.
package alerts

import (
	"github.com/vyfood/storefront/internal/cmd/emoji"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// Alert is one status line with optional detail lines.
type Alert struct {
	Level   Level
	Icon    string
	Message string
	Details []string
	Err     error
}

// New returns an alert using the level's icon.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Icon: level.Icon(), Message: message}
}

// NewSuccess is New(LevelSuccess, message).
func NewSuccess(message string) *Alert { return New(LevelSuccess, message) }

// NewError is New(LevelError, message).
func NewError(message string) *Alert { return New(LevelError, message) }

// FromNotice is a warning showing the notice's own symbol.
func FromNotice(n reconcile.Notice) *Alert {
	a := New(LevelWarning, n.Text)
	a.Icon = emoji.ForNotice(n.Kind)
	return a
}

// FromResult summarizes a reconciliation. An untouched cart is a success.
// Otherwise each notice becomes a detail line prefixed with its symbol.
func FromResult(res *reconcile.Result) *Alert {
	if !res.Changed && !res.Reset {
		return NewSuccess(res.Summary())
	}
	a := New(LevelWarning, res.Summary())
	for _, n := range res.Notices {
		a.Details = append(a.Details, FromNotice(n).String())
	}
	return a
}

// WithError attaches the cause printed after the message.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails appends detail lines.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String is the headline: icon, message and cause, without details.
func (a *Alert) String() string {
	s := a.Icon + " " + a.Message
	if a.Err != nil {
		s += ": " + a.Err.Error()
	}
	return s
}
