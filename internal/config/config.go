package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Cycle/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Cycle"
	AppID             = "com.github.tartampluch.go-cycle"
	KeyringService    = "com.github.tartampluch.go-cycle"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvFileName       = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Environment
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"

	// EnvAPIURL overrides the stored backend URL at startup.
	EnvAPIURL = "GO_CYCLE_API_URL"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 1000
	MainWindowHeight    = 720
	SettingsWindowWidth = 560
	CalendarColumns     = 7
	DayCellMinHeight    = 72
	SidebarWidth        = 280
	PeriodDialogWidth   = 420
	StickerTextSize     = 10
	LegendSwatchSize    = 16

	// Preference Keys
	PrefTheme           = "theme"
	PrefLanguage        = "language"
	PrefAPIURL          = "api_url"
	PrefUsername        = "username"
	PrefServerPort      = "server_port"
	PrefFeedEnabled     = "feed_enabled"
	PrefReminderEnabled = "reminder_enabled"
	PrefReminderDays    = "reminder_days"
	PrefLastRun         = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle     = "win_title"
	TKeyWinSettings  = "win_settings_title"
	TKeyAppSubtitle  = "app_subtitle"
	TKeyBtnPrev      = "btn_prev"
	TKeyBtnNext      = "btn_next"
	TKeyBtnToday     = "btn_today"
	TKeyBtnSettings  = "btn_settings"
	TKeyBtnDismiss   = "btn_dismiss"
	TKeyLblLoading   = "lbl_loading"
	TKeyLblToday     = "lbl_today"
	TKeyLblTheme     = "lbl_theme"
	TKeyFormatMonth  = "format_month_title" // Requires Month, Year
	TKeyFormatDate   = "format_date_short"  // Date layout pattern (e.g., "2006-01-02")
	TKeyWeekdayShort = "weekday_short_"     // Suffixed with 0..6 (Sunday first)
	TKeyMonthName    = "month_"             // Suffixed with 1..12

	// Day Stickers
	TKeyStickerPeriod    = "sticker_period"
	TKeyStickerExpected  = "sticker_expected"
	TKeyStickerOvulation = "sticker_ovulation"
	TKeyStickerFertile   = "sticker_fertile"
	TKeyStickerNotes     = "sticker_notes"

	// Period Form
	TKeyModalTitleNew   = "modal_title_new"
	TKeyModalTitleEdit  = "modal_title_edit"
	TKeyLblStartDate    = "lbl_start_date"
	TKeyLblEndDate      = "lbl_end_date"
	TKeyLblFlow         = "lbl_flow"
	TKeyLblNotes        = "lbl_notes"
	TKeyPhEndDate       = "ph_end_date"
	TKeyPhNotes         = "ph_notes"
	TKeyBtnUsePredicted = "btn_use_predicted" // Requires Date
	TKeyBtnSavePeriod   = "btn_save_period"
	TKeyBtnUpdatePeriod = "btn_update_period"
	TKeyBtnCancel       = "btn_cancel"
	TKeyFlowLight       = "flow_light"
	TKeyFlowMedium      = "flow_medium"
	TKeyFlowHeavy       = "flow_heavy"

	// Sidebar
	TKeyQuickAddTitle     = "quick_add_title"
	TKeyQuickAddNote      = "quick_add_note"
	TKeyInsightsTitle     = "insights_title"
	TKeyInsightAvgCycle   = "insight_avg_cycle"
	TKeyInsightAvgValue   = "insight_avg_value" // Requires Days
	TKeyInsightRegularity = "insight_regularity"
	TKeyInsightNextPeriod = "insight_next_period"
	TKeyInsightNextOvul   = "insight_next_ovulation"
	TKeyLegendTitle       = "legend_title"
	TKeyLegendLight       = "legend_light"
	TKeyLegendMedium      = "legend_medium"
	TKeyLegendHeavy       = "legend_heavy"
	TKeyLegendPredicted   = "legend_predicted"
	TKeyLegendOvulation   = "legend_ovulation"
	TKeyLegendFertile     = "legend_fertile"
	TKeyRegRegular        = "regularity_regular"
	TKeyRegSomewhat       = "regularity_somewhat"
	TKeyRegIrregular      = "regularity_irregular"
	TKeyRegUnknown        = "regularity_unknown"
	TKeyThemeDescPrefix   = "theme_desc_" // Suffixed with the theme key
	TKeyThemeNamePrefix   = "theme_name_" // Suffixed with the theme key

	// Notifications
	TKeyErrLoadCalendar = "err_load_calendar"
	TKeyErrSaveGeneric  = "err_save_generic"
	TKeyErrInvalidForm  = "err_invalid_form"

	// Settings
	TKeyLblGeneral     = "lbl_general"
	TKeyLblConnection  = "lbl_connection"
	TKeyLblFeed        = "lbl_feed"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblAPIURL      = "lbl_api_url"
	TKeyHelpAPIURL     = "help_api_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblEnableFeed  = "lbl_enable_feed"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblEnableRem   = "lbl_enable_reminders"
	TKeyLblReminder    = "lbl_reminder_days"
	TKeyHelpReminder   = "help_reminder_days"
	TKeyLblRestartNote = "lbl_restart_note"
	TKeyBtnSave        = "btn_save"
	TKeyLblFooter      = "lbl_footer"
	TKeyErrPortReq     = "err_port_required"
	TKeyErrPortNum     = "err_port_number"
	TKeyErrPortRange   = "err_port_range"

	// Feed Event Summaries
	TKeyEvtPeriod          = "event_period"
	TKeyEvtPredictedPeriod = "event_predicted_period"
	TKeyEvtOvulation       = "event_ovulation"
	TKeyEvtFertile         = "event_fertile_window"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort         = "18081"
	DefaultAPIURL       = "http://localhost:5000"
	DefaultLanguage     = "en"
	DefaultThemeKey     = "default"
	DefaultReminderDays = 2

	// PredictedPeriodOffsetDays is added to a new start date to suggest an end date,
	// which assumes a five day period.
	PredictedPeriodOffsetDays = 4

	// QuickAddNote is the note attached to records created by the quick add control.
	QuickAddNote = "Quick add"

	UIDSalt = "go-cycle-v1-" // Salt for deterministic feed UID generation
)

// ISO8601 Duration Components for Reminders
const (
	ISONegativePrefix = "-P"
	ISODay            = "D"
)

// -----------------------------------------------------------------------------
// Backend REST API
// -----------------------------------------------------------------------------

const (
	APIPrefix        = "api"
	APICalendarPath  = "calendar"
	APIPeriodsPath   = "periods"
	MaxErrorBodySize = 64 * 1024
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Cycle//Feed//EN"
	ICalCalName   = "Cycle"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocycle"

	// iCal Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropCategories  = "CATEGORIES"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	DateLayout = "2006-01-02"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"

	PlaceholderDate = "YYYY-MM-DD"
	PlaceholderURL  = "http://localhost:5000"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 15 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 8 * 1024 * 1024 // 8MB, a month payload is a few KB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteFeed           = "/cycle.ics"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeJSON            = "application/json"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrAPIURLEmpty      = "configuration error: API URL is empty"
	ErrRequestBuild     = "failed to create request"
	ErrNetwork          = "network error"
	ErrEncodeBody       = "failed to encode request body"
	ErrUnexpectedStatus = "server returned unexpected status"
	ErrMalformedPayload = "malformed server payload"
	ErrInvalidDate      = "invalid date"
	ErrEndBeforeStart   = "end date is before start date"
	ErrUnknownFlow      = "unknown flow intensity"
	ErrStartRequired    = "start date is required"
	ErrFormClosed       = "period form is not open"
	ErrDuplicateDate    = "duplicate annotation for date"
	ErrUnknownTheme     = "unknown theme"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrFeedBuild        = "failed to build prediction feed"
	ErrFetchFailed      = "calendar fetch failed"
	ErrSaveFailed       = "period save failed"
	ErrKeyringSave      = "failed to save credentials to keyring"
	ErrEnvFile          = "failed to load environment file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackEvtPeriod          = "Period"
	FallbackEvtPredictedPeriod = "Expected period"
	FallbackEvtOvulation       = "Ovulation"
	FallbackEvtFertile         = "Fertile window"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s: %v\n"
	MsgEnvLoaded       = "Environment file loaded"
	MsgEnvOverride     = "API URL overridden from environment"
	MsgFetchStart      = "Fetching calendar month"
	MsgFetchDone       = "Calendar month loaded"
	MsgFetchStale      = "Discarding stale calendar response"
	MsgSaveStart       = "Saving period"
	MsgSaveDone        = "Period saved"
	MsgNavigate        = "Month changed"
	MsgThemeApplied    = "Theme applied"
	MsgFormOpened      = "Period form opened"
	MsgFeedGenerated   = "Prediction feed generated"
	MsgSettingsSaved   = "Saving preferences"
	MsgFeedDisabled    = "Prediction feed disabled"
	MsgRequestFailed   = "Server returned error status"
	MsgInvalidFormSave = "Period form rejected input"
	MsgRequestServed   = "Feed request served"
	MsgSettingsOpen    = "Opening settings window"
	MsgSettingsFocus   = "Settings window already open, requesting focus"
	MsgRemindersOff    = "Reminders disabled via settings (no day count)"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyUser      = "user"
	LogKeyMonth     = "month"
	LogKeyDate      = "date"
	LogKeyFlow      = "flow_intensity"
	LogKeyDays      = "days"
	LogKeySeq       = "seq"
	LogKeyTheme     = "theme"
	LogKeyEdit      = "edit"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompTracker = "tracker"
	CompEngine  = "engine"
	CompServer  = "server"
	CompClient  = "api_client"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	LayoutColumnsTriple = 3
)
