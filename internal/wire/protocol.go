package wire

// Command tags, in ordinal order; EncodeTag(CmdX) is the tag byte the driver
// sends to select command X.
const (
	CmdShutdown = iota
	CmdGetClass
	CmdFreeObject
	CmdGetMethod
	CmdToString
	CmdCreateString
	CmdInvokeStaticMethod
)

// CommandName returns a short diagnostic name for a command ordinal, used
// only for the optional debug echo to standard error.
func CommandName(ordinal int) string {
	switch ordinal {
	case CmdShutdown:
		return "SHUTDOWN"
	case CmdGetClass:
		return "GET_CLASS"
	case CmdFreeObject:
		return "FREE_OBJECT"
	case CmdGetMethod:
		return "GET_METHOD"
	case CmdToString:
		return "TO_STRING"
	case CmdCreateString:
		return "CREATE_STRING"
	case CmdInvokeStaticMethod:
		return "INVOKE_STATIC_METHOD"
	default:
		return "UNKNOWN"
	}
}

// Result tags, in ordinal order.
const (
	ResShutdown = iota
	ResPrintOut
	ResIntResult
	ResErrorResult
	ResVoidResult
	ResStringResult
)
