// Package uiutil provides the status messages shared by the grid views.
package uiutil

import (
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultTTL is how long a status message stays up.
const DefaultTTL = 3 * time.Second

func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

func ReportError(err error) tea.Cmd {
	slog.Error("Error reported", "error", err)
	return CmdHandler(InfoMsg{
		Type: InfoTypeError,
		Msg:  err.Error(),
		TTL:  DefaultTTL,
	})
}

type InfoType int

const (
	InfoTypeInfo InfoType = iota
	InfoTypeSuccess
	InfoTypeWarn
	InfoTypeError
)

func (t InfoType) String() string {
	switch t {
	case InfoTypeSuccess:
		return "success"
	case InfoTypeWarn:
		return "warn"
	case InfoTypeError:
		return "error"
	}
	return "info"
}

func ReportInfo(info string) tea.Cmd {
	return CmdHandler(InfoMsg{
		Type: InfoTypeInfo,
		Msg:  info,
		TTL:  DefaultTTL,
	})
}

func ReportSuccess(msg string) tea.Cmd {
	return CmdHandler(InfoMsg{
		Type: InfoTypeSuccess,
		Msg:  msg,
		TTL:  DefaultTTL,
	})
}

func ReportWarn(warn string) tea.Cmd {
	return CmdHandler(InfoMsg{
		Type: InfoTypeWarn,
		Msg:  warn,
		TTL:  DefaultTTL,
	})
}

// ClearAfter clears the status message with the given id once ttl passed.
// A zero ttl keeps the message.
func ClearAfter(id int, ttl time.Duration) tea.Cmd {
	if ttl <= 0 {
		return nil
	}
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}

type (
	InfoMsg struct {
		Type InfoType
		Msg  string
		TTL  time.Duration
	}
	// ClearStatusMsg clears the status message with a matching ID.
	ClearStatusMsg struct {
		ID int
	}
)
