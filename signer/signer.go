// Package signer derives Amino device identifiers and request signatures.
//
// Device id layout (41 bytes, upper-case hex encoded):
//
//	[0]      prefix      0x19
//	[1-20]   seed        20 random bytes
//	[21-40]  checksum    HMAC-SHA1(deviceKey, prefix||seed)
//
// Signature layout (21 bytes, standard base64 encoded):
//
//	[0]      prefix      0x19
//	[1-20]   mac         HMAC-SHA1(sigKey, payload)
package signer

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Prefix   byte = 0x19
	SeedSize      = 20
	// DeviceIDLen is the hex length of a derived device id.
	DeviceIDLen = 2 * (1 + SeedSize + sha1.Size)
)

var (
	sigKey    = mustHex("dfa5ed192dda6e88a12fe12130dc6206b1251e44")
	deviceKey = mustHex("e7309ecc0953c6fa60005b2765f99dbbc965c8e9")
)

var ErrBadDevice = errors.New("signer: malformed device id")

// DeriveDeviceID builds a device id from seed. A nil seed draws 20 random bytes.
func DeriveDeviceID(seed []byte) string {
	if seed == nil {
		seed = make([]byte, SeedSize)
		rand.Read(seed)
	}
	info := make([]byte, 0, 1+SeedSize+sha1.Size)
	info = append(info, Prefix)
	info = append(info, seed...)

	mac := hmac.New(sha1.New, deviceKey)
	mac.Write(info)
	return strings.ToUpper(hex.EncodeToString(mac.Sum(info)))
}

// UpdateDevice strips prefix and checksum from an existing device id and
// re-derives it, so ids generated with an outdated key become valid again.
func UpdateDevice(deviceID string) (string, error) {
	raw, err := hex.DecodeString(deviceID)
	if err != nil {
		return "", ErrBadDevice
	}
	if len(raw) < 1+SeedSize {
		return "", ErrBadDevice
	}
	return DeriveDeviceID(raw[1 : 1+SeedSize]), nil
}

// Verify reports whether deviceID carries a valid prefix and checksum.
func Verify(deviceID string) bool {
	raw, err := hex.DecodeString(deviceID)
	if err != nil || len(raw) != 1+SeedSize+sha1.Size || raw[0] != Prefix {
		return false
	}
	mac := hmac.New(sha1.New, deviceKey)
	mac.Write(raw[:1+SeedSize])
	return hmac.Equal(mac.Sum(nil), raw[1+SeedSize:])
}

// Sign returns the NDC-MSG-SIG value for payload.
func Sign(payload []byte) string {
	mac := hmac.New(sha1.New, sigKey)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum([]byte{Prefix}))
}

// HandshakeBody returns the "{deviceId}|{unixMillis}" string signed when
// opening the realtime connection.
func HandshakeBody(deviceID string, at time.Time) string {
	return deviceID + "|" + strconv.FormatInt(at.UnixMilli(), 10)
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
