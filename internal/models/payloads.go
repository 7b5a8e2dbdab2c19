package models

// These structs define the JSON payloads exchanged with the split-session
// function.

// Session actions.
const (
	ActionLoad       = "load"
	ActionToggle     = "toggle"
	ActionSelectAll  = "selectAll"
	ActionSelectNone = "selectNone"
	ActionInvert     = "invert"
	ActionSplit      = "split"
	ActionReset      = "reset"
	ActionClose      = "close"
	ActionStatus     = "status"
)

// SessionRequest is the input for the split-session function.
type SessionRequest struct {
	SessionID  string `json:"sessionId,omitempty"`
	Action     string `json:"action"`
	FileName   string `json:"fileName,omitempty"`
	FileBase64 string `json:"fileBase64,omitempty"`
	Index      int    `json:"index,omitempty"`
	// Force confirms a close that the unload guard would otherwise block.
	Force bool `json:"force,omitempty"`
}

// SessionResponse is the output of the split-session function.
type SessionResponse struct {
	SessionID    string                `json:"sessionId"`
	Phase        string                `json:"phase"`
	File         *SessionFileMetadata  `json:"file,omitempty"`
	PageCount    int                   `json:"pageCount"`
	Pages        []PageEntry           `json:"pages"`
	Busy         bool                  `json:"busy"`
	Error        string                `json:"error,omitempty"`
	Guarded      bool                  `json:"guarded"`
	GuardMessage string                `json:"guardMessage,omitempty"`
	Closed       bool                  `json:"closed,omitempty"`
	Handoff      string                `json:"handoff,omitempty"`
	SuccessURL   string                `json:"successUrl,omitempty"`
	StoredFiles  []SessionFileMetadata `json:"storedFiles,omitempty"`
}
