package amino

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/k-amino/amino-go/frame"
	"github.com/k-amino/amino-go/wire"
)

// Join roles for live rooms.
const (
	RoleParticipant = 1
	RoleSpectator   = 2 // also leaves the room when sent by a participant
)

// Channel types for channel frames.
const (
	ChannelVoice = 1
	ChannelVideo = 5
)

const (
	voiceJoinID   = "37549515"
	videoChatID   = "2154531"
	spectatorID   = "72446"
	threadJoinID  = "10335106"
	channelJoinID = "10335436"
	playlistID    = "3423239"
)

func (s *Socket) sendRole(comID int, chatID string, role int, id string) error {
	return s.SendFrame(frame.TypeVoiceRole, wire.VoiceRolePayload{
		ComID:    comID,
		ThreadID: chatID,
		JoinRole: role,
		ID:       id,
	})
}

func (s *Socket) sendChannel(comID int, chatID string, role, channelType int, id string) error {
	return s.SendFrame(frame.TypeChannelSignal, wire.ChannelPayload{
		ComID:       comID,
		ThreadID:    chatID,
		JoinRole:    role,
		ChannelType: channelType,
		ID:          id,
	})
}

// JoinVoiceChat joins the voice room of a chat in role.
func (s *Socket) JoinVoiceChat(comID int, chatID string, role int) error {
	return s.sendRole(comID, chatID, role, voiceJoinID)
}

// JoinVideoChat joins the video room of a chat in role.
func (s *Socket) JoinVideoChat(comID int, chatID string, role int) error {
	return s.sendChannel(comID, chatID, role, ChannelVideo, videoChatID)
}

// StartVoiceChat opens a voice room: a role frame, then a voice channel
// frame.
func (s *Socket) StartVoiceChat(comID int, chatID string, role int) error {
	if err := s.sendRole(comID, chatID, role, videoChatID); err != nil {
		return err
	}
	return s.sendChannel(comID, chatID, 0, ChannelVoice, videoChatID)
}

// EndVoiceChat leaves or ends a voice room. role is normally RoleSpectator.
func (s *Socket) EndVoiceChat(comID int, chatID string, role int) error {
	return s.sendRole(comID, chatID, role, videoChatID)
}

// JoinVideoChatAsSpectator watches a video room without a seat.
func (s *Socket) JoinVideoChatAsSpectator(comID int, chatID string) error {
	return s.sendRole(comID, chatID, RoleSpectator, spectatorID)
}

// ThreadJoin joins a chat's live thread as a participant.
func (s *Socket) ThreadJoin(comID int, chatID string) error {
	return s.sendRole(comID, chatID, RoleParticipant, threadJoinID)
}

// ChannelJoin joins a chat's video channel.
func (s *Socket) ChannelJoin(comID int, chatID string) error {
	return s.sendChannel(comID, chatID, 0, ChannelVideo, channelJoinID)
}

// --------------------------------------------------------------------------
// Presence topics
// --------------------------------------------------------------------------

// UsersTopic selects what GetUsersActions subscribes to.
type UsersTopic int

const (
	TopicUsersChatting UsersTopic = iota
	TopicOnlineMembers
	TopicTypingStart
	TopicTypingEnd
	TopicRecordingStart
	TopicRecordingEnd
)

func (t UsersTopic) String() string {
	switch t {
	case TopicOnlineMembers:
		return "online-members"
	case TopicTypingStart:
		return "users-start-typing-at"
	case TopicTypingEnd:
		return "users-end-typing-at"
	case TopicRecordingStart:
		return "users-start-recording-at"
	case TopicRecordingEnd:
		return "users-end-recording-at"
	default:
		return "users-chatting"
	}
}

// TopicName returns the full topic string, e.g.
// "ndtopic:x123:users-start-typing-at:<chatID>".
func TopicName(comID int, topic UsersTopic, chatID string) string {
	name := fmt.Sprintf("ndtopic:x%d:%s", comID, topic)
	if chatID != "" {
		name += ":" + chatID
	}
	return name
}

// GetUsersActions subscribes to a presence topic and returns the first
// reply carrying the request id or the same topic. It is safe to call from
// an event handler or bot command: handlers run off the read goroutine, so
// the reply is still read while the handler waits.
func (s *Socket) GetUsersActions(ctx context.Context, comID int, topic UsersTopic, chatID string) (*wire.UsersActions, error) {
	id := s.nextID()
	name := TopicName(comID, topic, chatID)
	match := func(f frame.Frame) bool {
		if got, ok := f.String("id"); ok && got == id {
			return true
		}
		got, ok := f.String("topic")
		return ok && got == name
	}

	data, err := s.Request(ctx, frame.TypeSubscribe, wire.TopicPayload{ComID: comID, Topic: name, ID: id}, match)
	if err != nil {
		return nil, err
	}
	f, err := frame.Decode(data)
	if err != nil {
		return nil, err
	}
	ua := &wire.UsersActions{Raw: f.Payload}
	if err := json.Unmarshal(f.Payload, ua); err != nil {
		return nil, fmt.Errorf("decode users actions: %w", err)
	}
	return ua, nil
}

// --------------------------------------------------------------------------
// Screening room
// --------------------------------------------------------------------------

// VideoItem is a video announced to a screening room.
type VideoItem struct {
	Path       string  // file path on the streaming device
	Title      string
	Background string  // uploaded media URL shown before playback
	Duration   float64 // seconds
}

// PlayVideo announces item in a chat's screening room: it enters the chat,
// joins the thread and video channel, publishes the playlist item and marks
// it done after SocketConfig.PlaylistSettle.
func (s *Socket) PlayVideo(ctx context.Context, comID int, chatID string, item VideoItem) error {
	act, err := s.Actions(comID, chatID).Chatting(ThreadPublic)
	if err != nil {
		return err
	}
	if err := act.Start(); err != nil {
		return err
	}
	if err := s.ThreadJoin(comID, chatID); err != nil {
		return err
	}
	if err := s.ChannelJoin(comID, chatID); err != nil {
		return err
	}

	payload := wire.PlaylistPayload{
		ComID:    comID,
		ThreadID: chatID,
		Playlist: wire.Playlist{
			CurrentItemIndex:  0,
			CurrentItemStatus: 1,
			Items: []wire.PlaylistItem{{
				Duration:  item.Duration,
				MediaList: [][]any{{100, item.Background, nil}},
				Title:     item.Title,
				Type:      1,
				URL:       "file://" + item.Path,
			}},
		},
		ID: playlistID,
	}
	if err := s.SendFrame(frame.TypePlaylist, payload); err != nil {
		return err
	}

	t := time.NewTimer(s.cfg.PlaylistSettle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	payload.Playlist.CurrentItemStatus = 2
	payload.Playlist.Items[0].IsDone = true
	return s.SendFrame(frame.TypePlaylist, payload)
}
