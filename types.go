package amino

import "encoding/json"

// --------------------------------------------------------------------------
// REST envelopes
// --------------------------------------------------------------------------

// apiStatus is the status block every REST response carries.
type apiStatus struct {
	Code     *int   `json:"api:statuscode"`
	Message  string `json:"api:message"`
	Duration string `json:"api:duration"`
}

// --------------------------------------------------------------------------
// Auth
// --------------------------------------------------------------------------

type loginRequest struct {
	Email      string `json:"email"`
	Secret     string `json:"secret"`
	ClientType int    `json:"clientType"`
	Action     string `json:"action"`
	DeviceID   string `json:"deviceID"`
	V          int    `json:"v"`
	Timestamp  int64  `json:"timestamp"`
}

type logoutRequest struct {
	DeviceID   string `json:"deviceID"`
	ClientType int    `json:"clientType"`
	Timestamp  int64  `json:"timestamp"`
}

// Login is the result of a password login.
type Login struct {
	UserID  string          `json:"auid"`
	SID     string          `json:"sid"`
	Secret  string          `json:"secret"`
	Account Account         `json:"account"`
	Profile json.RawMessage `json:"userProfile"`
}

// --------------------------------------------------------------------------
// Account
// --------------------------------------------------------------------------

// Account is the global account of the logged-in user.
type Account struct {
	UserID       string `json:"uid"`
	Email        string `json:"email"`
	AminoID      string `json:"aminoId"`
	Nickname     string `json:"nickname"`
	Icon         string `json:"icon"`
	PhoneNumber  string `json:"phoneNumber"`
	Role         int    `json:"role"`
	Status       int    `json:"status"`
	Activation   int    `json:"activation"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
}

type accountResponse struct {
	Account Account `json:"account"`
}

// --------------------------------------------------------------------------
// Chat
// --------------------------------------------------------------------------

// Message types for SendMessage.
const (
	MessageText    = 0
	MessageSticker = 3
	MessageSystem  = 100
)

type mention struct {
	UserID string `json:"uid"`
}

type messageExtensions struct {
	MentionedArray []mention `json:"mentionedArray,omitempty"`
}

type messageRequest struct {
	Type           int               `json:"type"`
	Content        string            `json:"content"`
	Extensions     messageExtensions `json:"extensions"`
	ClientRefID    int64             `json:"clientRefId"`
	ReplyMessageID string            `json:"replyMessageId,omitempty"`
	Timestamp      int64             `json:"timestamp"`
}

// SentMessage is the server's copy of a message the client sent.
type SentMessage struct {
	MessageID   string `json:"messageId"`
	ThreadID    string `json:"threadId"`
	Type        int    `json:"type"`
	Content     string `json:"content"`
	ClientRefID int64  `json:"clientRefId"`
	CreatedTime string `json:"createdTime"`
}

type sentMessageResponse struct {
	Message SentMessage `json:"message"`
}
