package amino

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the client wraps exactly one of these,
// so callers can match with errors.Is.
var (
	ErrAuthentication = errors.New("amino: authentication failed")
	ErrPermission     = errors.New("amino: permission denied")
	ErrNotFound       = errors.New("amino: not found")
	ErrRateLimited    = errors.New("amino: rate limited")
	ErrValidation     = errors.New("amino: invalid request")
	ErrConflict       = errors.New("amino: conflict")
	ErrTransport      = errors.New("amino: transport failure")
	ErrUnknownService = errors.New("amino: unknown service error")
)

var (
	ErrNotConnected           = fmt.Errorf("%w: not connected", ErrTransport)
	ErrAuthenticationRequired = fmt.Errorf("%w: session id required", ErrAuthentication)
)

// Kind classifies an upstream failure.
type Kind int

const (
	KindUnknownService Kind = iota
	KindAuthentication
	KindPermission
	KindNotFound
	KindRateLimited
	KindValidation
	KindConflict
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	default:
		return "unknown_service"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthentication:
		return ErrAuthentication
	case KindPermission:
		return ErrPermission
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindTransport:
		return ErrTransport
	default:
		return ErrUnknownService
	}
}

// APIError is a failed REST call. Code is the api:statuscode of the
// response body, or 0 when the body carried none.
type APIError struct {
	Kind       Kind
	Code       int
	Name       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Code != 0 {
		return fmt.Sprintf("amino: %s (%d): %s", e.Name, e.Code, msg)
	}
	return fmt.Sprintf("amino: %s (http %d): %s", e.Name, e.HTTPStatus, msg)
}

func (e *APIError) Unwrap() error { return e.Kind.sentinel() }

// TransportError is a realtime connection failure. It wraps ErrTransport
// and the underlying cause.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "amino: " + e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

type statusCode struct {
	kind Kind
	name string
}

// statusCodes maps api:statuscode values to kinds and upstream error names.
var statusCodes = map[int]statusCode{
	100:  {KindValidation, "UnsupportedService"},
	102:  {KindValidation, "FileTooLarge"},
	103:  {KindValidation, "InvalidRequest"},
	104:  {KindValidation, "InvalidRequest"},
	105:  {KindAuthentication, "InvalidSession"},
	106:  {KindPermission, "AccessDenied"},
	107:  {KindNotFound, "UnexistentData"},
	110:  {KindPermission, "ActionNotAllowed"},
	113:  {KindValidation, "MessageNeeded"},
	200:  {KindAuthentication, "InvalidAccountOrPassword"},
	201:  {KindAuthentication, "AccountDisabled"},
	210:  {KindAuthentication, "AccountDisabled"},
	213:  {KindValidation, "InvalidEmail"},
	214:  {KindAuthentication, "InvalidPassword"},
	215:  {KindConflict, "EmailAlreadyTaken"},
	216:  {KindAuthentication, "AccountDoesntExist"},
	218:  {KindAuthentication, "InvalidDevice"},
	219:  {KindRateLimited, "TooManyRequests"},
	221:  {KindValidation, "CantFollowYourself"},
	225:  {KindNotFound, "UserUnavailable"},
	229:  {KindAuthentication, "YouAreBanned"},
	230:  {KindPermission, "UserNotMemberOfCommunity"},
	235:  {KindPermission, "RequestRejected"},
	238:  {KindAuthentication, "ActivateAccount"},
	239:  {KindPermission, "CantLeaveCommunity"},
	240:  {KindValidation, "ReachedTitleLength"},
	241:  {KindValidation, "EmailFlaggedAsSpam"},
	246:  {KindAuthentication, "AccountDeleted"},
	251:  {KindAuthentication, "EmailNoPassword"},
	257:  {KindPermission, "CommunityUserCreatedCommunitiesVerify"},
	262:  {KindValidation, "ReachedMaxTitles"},
	270:  {KindAuthentication, "VerificationRequired"},
	271:  {KindAuthentication, "InvalidAuthNewDeviceLink"},
	291:  {KindRateLimited, "CommandCooldown"},
	293:  {KindAuthentication, "UserBannedByTeamAmino"},
	300:  {KindValidation, "BadImage"},
	313:  {KindValidation, "InvalidThemepack"},
	314:  {KindValidation, "InvalidVoiceNote"},
	500:  {KindNotFound, "RequestedNoLongerExist"},
	503:  {KindRateLimited, "PageRepostedTooRecently"},
	551:  {KindPermission, "InsufficientLevel"},
	700:  {KindNotFound, "RequestedNoLongerExist"},
	702:  {KindPermission, "WallCommentingDisabled"},
	801:  {KindNotFound, "CommunityNoLongerExists"},
	802:  {KindValidation, "InvalidCodeOrLink"},
	805:  {KindConflict, "CommunityNameAlreadyTaken"},
	806:  {KindRateLimited, "CommunityCreateLimitReached"},
	814:  {KindPermission, "CommunityDisabled"},
	833:  {KindNotFound, "CommunityDeleted"},
	1002: {KindValidation, "ReachedMaxCategories"},
	1501: {KindValidation, "DuplicatePollOption"},
	1507: {KindValidation, "ReachedMaxPollOptions"},
	1600: {KindNotFound, "RequestedNoLongerExist"},
	1602: {KindRateLimited, "TooManyChats"},
	1605: {KindValidation, "ChatFull"},
	1606: {KindRateLimited, "TooManyInviteUsers"},
	1611: {KindPermission, "ChatInvitesDisabled"},
	1612: {KindPermission, "RemovedFromChat"},
	1613: {KindPermission, "UserNotJoined"},
	1627: {KindValidation, "ChatVVChatNoMoreReputations"},
	1637: {KindPermission, "MemberKickedByOrganizer"},
	1661: {KindPermission, "LevelFiveRequiredToEnableProps"},
	1663: {KindPermission, "ChatViewOnly"},
	1664: {KindValidation, "ChatMessageTooBig"},
	1900: {KindNotFound, "InviteCodeNotFound"},
	2001: {KindConflict, "AlreadyRequestedJoinCommunity"},
	2501: {KindRateLimited, "PushServerLimitationApart"},
	2502: {KindRateLimited, "PushServerLimitationCount"},
	2503: {KindRateLimited, "PushServerLinkNotInCommunity"},
	2504: {KindRateLimited, "PushServerLimitationTime"},
	2601: {KindConflict, "AlreadyCheckedIn"},
	2611: {KindConflict, "AlreadyUsedMonthlyRepair"},
	2800: {KindConflict, "AccountAlreadyRestored"},
	3102: {KindAuthentication, "IncorrectVerificationCode"},
	3905: {KindPermission, "NotOwnerOfChatBubble"},
	4300: {KindValidation, "NotEnoughCoins"},
	4400: {KindConflict, "AlreadyPlayedLottery"},
	4500: {KindValidation, "CannotSendCoins"},
	4501: {KindValidation, "CannotSendCoins"},
	6001: {KindConflict, "AminoIDAlreadyChanged"},
	6002: {KindValidation, "InvalidAminoID"},
	9901: {KindValidation, "InvalidName"},
}

// httpStatuses classifies responses without an api:statuscode.
var httpStatuses = map[int]statusCode{
	403: {KindRateLimited, "TemporaryIPBan"},
	413: {KindValidation, "PayloadTooLarge"},
	500: {KindUnknownService, "InternalServerError"},
	502: {KindUnknownService, "BadGateway"},
	503: {KindUnknownService, "ServiceUnavailable"},
}

// NewAPIError classifies an api:statuscode. Unmapped codes keep the raw
// code under KindUnknownService.
func NewAPIError(code int, message string) *APIError {
	sc, ok := statusCodes[code]
	if !ok {
		sc = statusCode{KindUnknownService, "APIError"}
	}
	return &APIError{Kind: sc.kind, Code: code, Name: sc.name, Message: message}
}

func newHTTPError(status int, message string) *APIError {
	sc, ok := httpStatuses[status]
	if !ok {
		sc = statusCode{KindUnknownService, "ServerError"}
	}
	return &APIError{Kind: sc.kind, Name: sc.name, Message: message, HTTPStatus: status}
}
