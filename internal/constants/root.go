package constants

import "time"

const (
	AppName            = "solace"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/solace/solace.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Environment
	EnvDBConnection = "SOLACE_DB_CONNECTION"

	// Plan constants
	PlanDurationLabel = "30 days"
	PlanDurationDays  = 30

	// Interview constants
	AnswerAdvanceDelay = 500 * time.Millisecond

	// Session runtime constants
	ProgressStep           = 1
	FastTickInterval       = 100 * time.Millisecond
	CompletionFeedbackTime = 1500 * time.Millisecond
	CompletionResetDelay   = 2 * time.Second
	PersistTimeout         = 10 * time.Second
	HistoryFetchLimit      = 100

	// PlanRefreshInterval re-reads runtime state so an open screen notices a new day
	PlanRefreshInterval = time.Minute

	// Notice TTLs
	NoticeSuccessTTL = 3 * time.Second
	NoticeInfoTTL    = 3 * time.Second
	NoticeWarningTTL = 5 * time.Second

	// Notify constants
	NotifierLockfileName   = "solace-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.solace"
	TrayExecutable         = "solace-tray"
	TraySecretHeader       = "X-Solace-Secret"
	NotifyRequestTimeout   = 5 * time.Second
)
