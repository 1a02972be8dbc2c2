package at

// ResponseType is the classified outcome of one reply token.
type ResponseType int

const (
	// TypeData indicates a payload follows, introduced by '+'.
	TypeData ResponseType = iota
	// TypeOK is the final success token.
	TypeOK
	// TypeError is the modem's ERROR token.
	TypeError
	// TypeTimeout means no byte arrived within the deadline.
	TypeTimeout
	// TypeUnknown is a byte that matches no known token start.
	TypeUnknown
)

// String returns a human-readable name for the response type.
func (t ResponseType) String() string {
	switch t {
	case TypeData:
		return "DATA"
	case TypeOK:
		return "OK"
	case TypeError:
		return "ERROR"
	case TypeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// TimeoutByte is the reader's timeout sentinel. It sits outside the 7-bit
// ASCII range so it can never collide with a real reply byte.
const TimeoutByte byte = 255

// Reply token start bytes.
const (
	dataByte  = '+'
	okByte    = 'O'
	errorByte = 'E'
)

// DecodeByte maps the first significant byte of a reply token to its
// ResponseType.
//
// Note the looseness inherited from the shield firmware's framing: any token
// merely starting with 'O' decodes as OK and any starting with 'E' as ERROR.
// The caller is expected to consume the rest of the line.
func DecodeByte(c byte) ResponseType {
	switch c {
	case TimeoutByte:
		return TypeTimeout
	case dataByte:
		return TypeData
	case okByte:
		return TypeOK
	case errorByte:
		return TypeError
	default:
		return TypeUnknown
	}
}
