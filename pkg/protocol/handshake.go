package protocol

// HandshakeStatus is the server's answer to a ClientHello.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeServerBusy      HandshakeStatus = 0x04
	HandshakeInvalidFormat   HandshakeStatus = 0x06
	HandshakeInternalError   HandshakeStatus = 0x08
)

func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ProtocolVersion is a major.minor pair. Peers with different majors
// cannot talk.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the version this package speaks.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// Compatible reports whether a peer speaking v can talk to this package.
func (v ProtocolVersion) Compatible() bool {
	return v.Major == CurrentVersion.Major
}

// ClientHello opens a connection.
type ClientHello struct {
	Version ProtocolVersion
	Client  string // free-form client name, logged by the server
}

// ServerHello answers a ClientHello. On HandshakeOK the next mutation
// batch the client receives has sequence NextSeq and mounts the whole
// document under RootID.
type ServerHello struct {
	Status   HandshakeStatus
	Document string
	NextSeq  uint64
}

// NewClientHello returns a hello for CurrentVersion.
func NewClientHello(client string) *ClientHello {
	return &ClientHello{Version: CurrentVersion, Client: client}
}

// EncodeClientHello encodes ch as a FrameHandshake payload.
func EncodeClientHello(ch *ClientHello) []byte {
	e := NewEncoder()
	e.WriteByte(ch.Version.Major)
	e.WriteByte(ch.Version.Minor)
	e.WriteString(ch.Client)
	return e.Bytes()
}

// DecodeClientHello decodes a FrameHandshake payload sent by a client.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)
	ch := &ClientHello{}
	var err error
	if ch.Version.Major, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if ch.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if ch.Client, err = d.ReadString(); err != nil {
		return nil, err
	}
	return ch, nil
}

// EncodeServerHello encodes sh as a FrameHandshake payload.
func EncodeServerHello(sh *ServerHello) []byte {
	e := NewEncoder()
	e.WriteByte(byte(sh.Status))
	e.WriteString(sh.Document)
	e.WriteUvarint(sh.NextSeq)
	return e.Bytes()
}

// DecodeServerHello decodes a FrameHandshake payload sent by a server.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	sh := &ServerHello{}
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	sh.Status = HandshakeStatus(status)
	if sh.Document, err = d.ReadString(); err != nil {
		return nil, err
	}
	if sh.NextSeq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return sh, nil
}
