package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/smylay/absence-engine/absence"
)

// LogNotifier writes notifications to the log instead of sending mail.
// Used when no SMTP server is configured.
type LogNotifier struct {
	Log logrus.FieldLogger
}

var _ absence.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) NotifyApproved(_ context.Context, owner absence.Employee, req absence.Request) error {
	n.Log.WithFields(logrus.Fields{
		"employee": owner.ID,
		"request":  req.ID,
	}).Info("notify: absence request approved")
	return nil
}

func (n *LogNotifier) NotifyDenied(_ context.Context, owner absence.Employee, req absence.Request) error {
	n.Log.WithFields(logrus.Fields{
		"employee": owner.ID,
		"request":  req.ID,
	}).Info("notify: absence request denied")
	return nil
}

func (n *LogNotifier) NotifySubmitted(_ context.Context, moderators []absence.Employee, owner absence.Employee, req absence.Request) error {
	n.Log.WithFields(logrus.Fields{
		"employee":   owner.ID,
		"request":    req.ID,
		"moderators": len(moderators),
	}).Info("notify: new absence request submitted")
	return nil
}
