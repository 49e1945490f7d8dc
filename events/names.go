package events

// Event names. They match the names used by other Amino bot libraries so
// handlers can be ported without renaming.
const (
	Default = "default"

	// Chat messages, keyed by "type:mediaType".
	TextMessage                         = "on_text_message"
	ImageMessage                        = "on_image_message"
	YoutubeMessage                      = "on_youtube_message"
	StrikeMessage                       = "on_strike_message"
	VoiceMessage                        = "on_voice_message"
	StickerMessage                      = "on_sticker_message"
	ShareExURL                          = "TYPE_USER_SHARE_EXURL"
	ShareUser                           = "TYPE_USER_SHARE_USER"
	VoiceChatNotAnswered                = "on_voice_chat_not_answered"
	VoiceChatNotCancelled               = "on_voice_chat_not_cancelled"
	VoiceChatNotDeclined                = "on_voice_chat_not_declined"
	VideoChatNotAnswered                = "on_video_chat_not_answered"
	VideoChatNotCancelled               = "on_video_chat_not_cancelled"
	VideoChatNotDeclined                = "on_video_chat_not_declined"
	AvatarChatNotAnswered               = "on_avatar_chat_not_answered"
	AvatarChatNotCancelled              = "on_avatar_chat_not_cancelled"
	AvatarChatNotDeclined               = "on_avatar_chat_not_declined"
	DeleteMessage                       = "on_delete_message"
	GroupMemberJoin                     = "on_group_member_join"
	GroupMemberLeave                    = "on_group_member_leave"
	ChatInvite                          = "on_chat_invite"
	ChatBackgroundChanged               = "on_chat_background_changed"
	ChatTitleChanged                    = "on_chat_title_changed"
	ChatIconChanged                     = "on_chat_icon_changed"
	VoiceChatStart                      = "on_voice_chat_start"
	VideoChatStart                      = "on_video_chat_start"
	AvatarChatStart                     = "on_avatar_chat_start"
	VoiceChatEnd                        = "on_voice_chat_end"
	VideoChatEnd                        = "on_video_chat_end"
	AvatarChatEnd                       = "on_avatar_chat_end"
	ChatContentChanged                  = "on_chat_content_changed"
	ScreenRoomStart                     = "on_screen_room_start"
	ScreenRoomEnd                       = "on_screen_room_end"
	ChatHostTransfered                  = "on_chat_host_transfered"
	TextMessageForceRemoved             = "on_text_message_force_removed"
	ChatRemovedMessage                  = "on_chat_removed_message"
	TextMessageRemovedByAdmin           = "on_text_message_removed_by_admin"
	ChatTip                             = "on_chat_tip"
	ChatPinAnnouncement                 = "on_chat_pin_announcement"
	VoiceChatPermissionOpenToEveryone   = "on_voice_chat_permission_open_to_everyone"
	VoiceChatPermissionInvitedRequested = "on_voice_chat_permission_invited_and_requested"
	VoiceChatPermissionInviteOnly       = "on_voice_chat_permission_invite_only"
	ChatViewOnlyEnabled                 = "on_chat_view_only_enabled"
	ChatViewOnlyDisabled                = "on_chat_view_only_disabled"
	ChatUnpinAnnouncement               = "on_chat_unpin_announcement"
	ChatTippingEnabled                  = "on_chat_tipping_enabled"
	ChatTippingDisabled                 = "on_chat_tipping_disabled"
	TimestampMessage                    = "on_timestamp_message"
	WelcomeMessage                      = "on_welcome_message"
	InviteMessage                       = "on_invite_message"

	// Notifications, keyed by payload.notifType.
	Alert                 = "on_alert"
	MemberSetYouHost      = "on_member_set_you_host"
	MemberSetYouCohost    = "on_member_set_you_cohost"
	MemberRemoveYouCohost = "on_member_remove_you_cohost"

	// Chat actions and topics.
	FetchChannel      = "on_fetch_channel"
	UserTypingStart   = "on_user_typing_start"
	UserTypingEnd     = "on_user_typing_end"
	OnlineUsersUpdate = "on_online_users_update"

	// ReconnectError carries the error of an automatic reconnect that ran
	// out of attempts. It is emitted by the client, not resolved from frames.
	ReconnectError = "on_reconnect_error"
)

var chatMessageEvents = map[string]string{
	"0:0":     TextMessage,
	"0:100":   ImageMessage,
	"0:103":   YoutubeMessage,
	"1:0":     StrikeMessage,
	"2:110":   VoiceMessage,
	"3:113":   StickerMessage,
	"50:0":    ShareExURL,
	"51:0":    ShareUser,
	"52:0":    VoiceChatNotAnswered,
	"53:0":    VoiceChatNotCancelled,
	"54:0":    VoiceChatNotDeclined,
	"55:0":    VideoChatNotAnswered,
	"56:0":    VideoChatNotCancelled,
	"57:0":    VideoChatNotDeclined,
	"58:0":    AvatarChatNotAnswered,
	"59:0":    AvatarChatNotCancelled,
	"60:0":    AvatarChatNotDeclined,
	"100:0":   DeleteMessage,
	"101:0":   GroupMemberJoin,
	"102:0":   GroupMemberLeave,
	"103:0":   ChatInvite,
	"104:0":   ChatBackgroundChanged,
	"105:0":   ChatTitleChanged,
	"106:0":   ChatIconChanged,
	"107:0":   VoiceChatStart,
	"108:0":   VideoChatStart,
	"109:0":   AvatarChatStart,
	"110:0":   VoiceChatEnd,
	"111:0":   VideoChatEnd,
	"112:0":   AvatarChatEnd,
	"113:0":   ChatContentChanged,
	"114:0":   ScreenRoomStart,
	"115:0":   ScreenRoomEnd,
	"116:0":   ChatHostTransfered,
	"117:0":   TextMessageForceRemoved,
	"118:0":   ChatRemovedMessage,
	"119:0":   TextMessageRemovedByAdmin,
	"120:0":   ChatTip,
	"121:0":   ChatPinAnnouncement,
	"122:0":   VoiceChatPermissionOpenToEveryone,
	"123:0":   VoiceChatPermissionInvitedRequested,
	"124:0":   VoiceChatPermissionInviteOnly,
	"125:0":   ChatViewOnlyEnabled,
	"126:0":   ChatViewOnlyDisabled,
	"127:0":   ChatUnpinAnnouncement,
	"128:0":   ChatTippingEnabled,
	"129:0":   ChatTippingDisabled,
	"65281:0": TimestampMessage,
	"65282:0": WelcomeMessage,
	"65283:0": InviteMessage,
}

var notificationEvents = map[string]string{
	"18": Alert,
	"53": MemberSetYouHost,
	"67": MemberSetYouCohost,
	"68": MemberRemoveYouCohost,
}

var chatActionEvents = map[string]string{
	"fetch-channel": FetchChannel,
	"Typing-start":  UserTypingStart,
	"Typing-end":    UserTypingEnd,
}

var topicEvents = map[string]string{
	"online-members":           OnlineUsersUpdate,
	"users-start-typing-at":    UserTypingStart,
	"users-end-typing-at":      UserTypingEnd,
	"users-start-recording-at": VoiceChatStart,
	"users-end-recording-at":   VoiceChatEnd,
}
