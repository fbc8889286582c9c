package setup

// ActionKind identifies one step of the setup sequence.
type ActionKind int

// The zero value is not a valid action.
const (
	ActionSelfUpdate ActionKind = iota + 1
	ActionDownloadGame
	ActionDownloadEngine
	ActionDownloadLobby
	ActionDownloadExtra
	ActionStart
)

// Display labels for the manual trigger.
const (
	LabelSelfUpdate = "Self-update"
	LabelDownload   = "Download"
	LabelLaunch     = "Launch"
)

// DefaultSequence returns the fixed setup order.
func DefaultSequence() []ActionKind {
	return []ActionKind{
		ActionSelfUpdate,
		ActionDownloadGame,
		ActionDownloadEngine,
		ActionDownloadLobby,
		ActionDownloadExtra,
		ActionStart,
	}
}

// String returns a stable identifier used in logs and metric labels.
func (k ActionKind) String() string {
	switch k {
	case ActionSelfUpdate:
		return "self_update"
	case ActionDownloadGame:
		return "download_game"
	case ActionDownloadEngine:
		return "download_engine"
	case ActionDownloadLobby:
		return "download_lobby"
	case ActionDownloadExtra:
		return "download_extra"
	case ActionStart:
		return "start"
	default:
		return "unknown"
	}
}

// Label returns the text shown on the manual trigger when this action is next.
func (k ActionKind) Label() string {
	switch k {
	case ActionSelfUpdate:
		return LabelSelfUpdate
	case ActionDownloadGame, ActionDownloadEngine, ActionDownloadLobby, ActionDownloadExtra:
		return LabelDownload
	case ActionStart:
		return LabelLaunch
	default:
		return ""
	}
}

// Valid reports whether k is one of the defined actions.
func (k ActionKind) Valid() bool {
	return k >= ActionSelfUpdate && k <= ActionStart
}

