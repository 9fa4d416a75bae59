package form

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/i18n"
	"github.com/goliatone/go-formsession/pkg/notify"
)

func (c *Controller) text(key string) string {
	return c.localizer.Localize(key)
}

// toast shows message, or the localized key when message is blank.
func (c *Controller) toast(ctx context.Context, message, key string) {
	if strings.TrimSpace(message) == "" {
		message = c.text(key)
	}
	c.notifier.Toast(ctx, message)
}

func (c *Controller) alert(ctx context.Context, message string) {
	if err := c.notifier.Alert(ctx, c.text(i18n.KeyAlertTitle), message); err != nil {
		c.log.Warn("alert failed", zap.Error(err))
	}
}

// confirm asks a yes/no/cancel question. Only yes returns true; a dialog
// failure counts as cancel.
func (c *Controller) confirm(ctx context.Context, titleKey, messageKey string) bool {
	answer, err := c.notifier.Confirm(ctx, c.text(titleKey), c.text(messageKey))
	if err != nil {
		c.log.Warn("confirmation failed", zap.Error(err))
		return false
	}
	c.log.Debug("confirmation answered", zap.Stringer("answer", answer))
	return answer == notify.AnswerYes
}
