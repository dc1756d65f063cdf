package workbench

import (
	"context"

	"github.com/repolens/backend/pkg/common"
)

// Notification types reported to the host application.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

// Notification is one feedback event for the host notification interface
// (import/export/publish feedback). The host owns presentation.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Notifier receives workbench feedback events.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// PublishFunc is the one-shot hand-off to the read-only viewer surface.
// Last write wins; there are no merge semantics.
type PublishFunc func(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error

// DocumentSource is the external document collaborator supplying raw
// manual markdown per case.
type DocumentSource interface {
	FetchManual(ctx context.Context, caseID string) (string, error)
}
