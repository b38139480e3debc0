package ubx

import (
	"errors"
	"fmt"
)

var (
	ErrFramingDesync            = errors.New("ubx: framing desync")
	ErrChecksumMismatch         = errors.New("ubx: checksum mismatch")
	ErrPayloadTooLarge          = errors.New("ubx: payload too large")
	ErrUnsupportedPayloadLength = errors.New("ubx: unsupported payload length")
	ErrUnknownIdentity          = errors.New("ubx: unknown identity")
)

// ProtocolError ties one of the sentinel errors to the offending message.
type ProtocolError struct {
	ID  Identity
	Len int
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %s len=%d", e.Err, Name(e.ID), e.Len)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
