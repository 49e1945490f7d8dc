package amino

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestAPIErrorKinds(t *testing.T) {
	tests := []struct {
		code int
		want error
		name string
	}{
		{105, ErrAuthentication, "InvalidSession"},
		{106, ErrPermission, "AccessDenied"},
		{107, ErrNotFound, "UnexistentData"},
		{219, ErrRateLimited, "TooManyRequests"},
		{102, ErrValidation, "FileTooLarge"},
		{805, ErrConflict, "CommunityNameAlreadyTaken"},
		{123456, ErrUnknownService, "APIError"},
	}
	for _, tt := range tests {
		err := NewAPIError(tt.code, "msg")
		if !errors.Is(err, tt.want) {
			t.Errorf("%d: %v does not match %v", tt.code, err, tt.want)
		}
		if err.Name != tt.name {
			t.Errorf("%d: name %q, want %q", tt.code, err.Name, tt.name)
		}
		if !strings.Contains(err.Error(), fmt.Sprint(tt.code)) {
			t.Errorf("%d: code missing from %q", tt.code, err.Error())
		}
	}
}

func TestAPIErrorKeepsOnlyItsKind(t *testing.T) {
	err := fmt.Errorf("join chat: %w", NewAPIError(230, ""))
	if errors.Is(err, ErrAuthentication) {
		t.Error("permission error matched authentication")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindPermission {
		t.Fatalf("errors.As: %v", err)
	}
	if !strings.Contains(apiErr.Error(), KindPermission.String()) {
		t.Errorf("empty message not replaced by kind: %q", apiErr.Error())
	}
}

func TestHTTPErrors(t *testing.T) {
	if err := newHTTPError(403, ""); !errors.Is(err, ErrRateLimited) {
		t.Errorf("403: %v", err)
	}
	if err := newHTTPError(413, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("413: %v", err)
	}
	err := newHTTPError(418, "teapot")
	if !errors.Is(err, ErrUnknownService) || err.HTTPStatus != 418 {
		t.Errorf("418: %+v", err)
	}
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: "connect", Err: net.ErrClosed}
	if !errors.Is(err, ErrTransport) || !errors.Is(err, net.ErrClosed) {
		t.Errorf("unwrap: %v", err)
	}
	if !errors.Is(ErrNotConnected, ErrTransport) {
		t.Error("ErrNotConnected is not a transport error")
	}
	if !errors.Is(ErrAuthenticationRequired, ErrAuthentication) {
		t.Error("ErrAuthenticationRequired is not an authentication error")
	}
}
