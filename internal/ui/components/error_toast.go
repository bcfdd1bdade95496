// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// =============================================================================
// ERROR TOAST COMPONENT
// =============================================================================

// ToastDuration is how long a toast stays visible.
const ToastDuration = 6 * time.Second

// ErrorToast is a transient error banner above the input line.
type ErrorToast struct {
	message  string
	shownAt  time.Time
	visible  bool
	theme    *styles.Theme
}

// NewErrorToast creates an empty, hidden toast.
func NewErrorToast(theme *styles.Theme) *ErrorToast {
	return &ErrorToast{theme: theme}
}

// Show displays an error, translating known failures to friendly text.
func (t *ErrorToast) Show(err error) {
	t.message = friendlyError(err)
	t.shownAt = time.Now()
	t.visible = true
}

// ShowMessage displays a raw message.
func (t *ErrorToast) ShowMessage(msg string) {
	t.message = msg
	t.shownAt = time.Now()
	t.visible = true
}

// Dismiss hides the toast.
func (t *ErrorToast) Dismiss() {
	t.visible = false
}

// Visible reports whether the toast should render; it self-expires.
func (t *ErrorToast) Visible() bool {
	if t.visible && time.Since(t.shownAt) > ToastDuration {
		t.visible = false
	}
	return t.visible
}

// View renders the toast.
func (t *ErrorToast) View() string {
	if !t.Visible() {
		return ""
	}
	return t.theme.ErrorTitle.Render(styles.StatusIndicators.Error) + " " +
		t.theme.ErrorMessage.Render(t.message)
}

// friendlyError maps API failures to actionable one-liners.
func friendlyError(err error) string {
	var rateErr *api.RateLimitError
	switch {
	case errors.Is(err, api.ErrNotConfigured):
		return "No server configured. Run `doctalk config set server.base_url <url>`."
	case errors.Is(err, api.ErrNoProject):
		return "No project selected. Pick one with /projects or `doctalk projects`."
	case errors.As(err, &rateErr):
		return "Rate limited by the server. Wait a moment and retry."
	case errors.Is(err, api.ErrServerError):
		return "The server had a problem. Your message was kept; retry to resend."
	case errors.Is(err, api.ErrNotFound):
		return "That resource no longer exists on the server."
	case err != nil:
		return err.Error()
	default:
		return "Unknown error."
	}
}
