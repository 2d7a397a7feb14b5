package protocol

import "errors"

// Error is a transport error carrying the numeric code reported on the
// display and in the diagnostic log.
type Error struct {
	Code int32
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Link codes count up from ESP_ERR_WIFI_BASE + 100 like ESP-NOW's.
const espnowBase = 0x3000 + 100

var (
	ErrFail           = &Error{Code: -1, Msg: "generic failure"}
	ErrTimeout        = &Error{Code: 0x107, Msg: "operation timed out"}
	ErrNotInit        = &Error{Code: espnowBase + 1, Msg: "transport not initialised"}
	ErrInvalidArg     = &Error{Code: espnowBase + 2, Msg: "invalid argument"}
	ErrNoMem          = &Error{Code: espnowBase + 3, Msg: "outbound queue full"}
	ErrPeerListFull   = &Error{Code: espnowBase + 4, Msg: "peer list full"}
	ErrPeerNotFound   = &Error{Code: espnowBase + 5, Msg: "peer not found"}
	ErrInternal       = &Error{Code: espnowBase + 6, Msg: "internal error"}
	ErrPeerExists     = &Error{Code: espnowBase + 7, Msg: "peer already exists"}
	ErrInterface      = &Error{Code: espnowBase + 8, Msg: "radio interface error"}
	ErrInvalidChannel = &Error{Code: espnowBase + 9, Msg: "invalid channel (valid range: 0-125)"}
	ErrInvalidPayload = &Error{Code: espnowBase + 2, Msg: "invalid payload size"}
	ErrInvalidAddr    = &Error{Code: espnowBase + 2, Msg: "invalid hardware address"}
)

// Code returns the numeric code of err: 0 for nil, the code of the first
// *Error in its chain, -1 for anything else.
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrFail.Code
}
