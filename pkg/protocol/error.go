package protocol

// ErrorCode identifies a FrameError message.
type ErrorCode uint16

const (
	ErrUnknown          ErrorCode = 0x0000
	ErrInvalidFrame     ErrorCode = 0x0001 // Malformed frame
	ErrBadEvent         ErrorCode = 0x0002 // Malformed event
	ErrListenerNotFound ErrorCode = 0x0003 // Event for a listener that is gone
	ErrHandshake        ErrorCode = 0x0004 // Handshake sent on an open session
	ErrServerError      ErrorCode = 0x0100 // Reconcile pass failed
)

func (ec ErrorCode) String() string {
	switch ec {
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrBadEvent:
		return "BadEvent"
	case ErrListenerNotFound:
		return "ListenerNotFound"
	case ErrHandshake:
		return "Handshake"
	case ErrServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// ErrorMessage is a FrameError payload.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool // the sender closes the connection after this frame
}

// NewError returns a non-fatal error message.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError returns a fatal error message.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// EncodeErrorMessage encodes em as a FrameError payload.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes a FrameError payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	message, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: message, Fatal: fatal}, nil
}

func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code.String() + ": " + em.Message
	}
	return em.Code.String() + ": " + em.Message
}
