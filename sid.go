package amino

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionInfo is the decoded body of a session id.
type SessionInfo struct {
	UserID     string
	IP         string
	ClientType int
	Created    time.Time
	Raw        map[string]any
}

// DecodeSID decodes a session id, with or without its "sid=" prefix. The
// payload sits between a one-byte header and a 20-byte signature.
func DecodeSID(sid string) (*SessionInfo, error) {
	sid = strings.TrimPrefix(strings.TrimSpace(sid), "sid=")
	sid = strings.TrimRight(sid, "=")
	raw, err := base64.RawURLEncoding.DecodeString(sid)
	if err != nil {
		return nil, fmt.Errorf("%w: sid is not base64: %v", ErrValidation, err)
	}
	if len(raw) < 1+20+2 {
		return nil, fmt.Errorf("%w: sid too short", ErrValidation)
	}

	var body map[string]any
	if err := json.Unmarshal(raw[1:len(raw)-20], &body); err != nil {
		return nil, fmt.Errorf("%w: sid payload: %v", ErrValidation, err)
	}

	info := &SessionInfo{Raw: body}
	info.UserID, _ = body["2"].(string)
	info.IP, _ = body["4"].(string)
	if v, ok := body["5"].(float64); ok {
		info.Created = time.Unix(int64(v), 0)
	}
	if v, ok := body["6"].(float64); ok {
		info.ClientType = int(v)
	}
	if info.UserID == "" {
		return nil, fmt.Errorf("%w: sid carries no user id", ErrValidation)
	}
	return info, nil
}
