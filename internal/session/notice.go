package session

import (
	"time"

	"github.com/julianstephens/solace/internal/constants"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a transient, severity-tagged message for the user
type Notice struct {
	Level NoticeLevel
	Text  string
	TTL   time.Duration
}

// NewNotice builds a notice with the fixed display time for its level
func NewNotice(level NoticeLevel, text string) Notice {
	return Notice{Level: level, Text: text, TTL: NoticeTTL(level)}
}

// NoticeTTL returns how long a notice of the given level stays on screen
func NoticeTTL(level NoticeLevel) time.Duration {
	switch level {
	case NoticeSuccess:
		return constants.NoticeSuccessTTL
	case NoticeWarning:
		return constants.NoticeWarningTTL
	default:
		return constants.NoticeInfoTTL
	}
}
