package stomp

import "strings"

const (
	CmdAbort       = "ABORT"
	CmdAck         = "ACK"
	CmdBegin       = "BEGIN"
	CmdCommit      = "COMMIT"
	CmdConnect     = "CONNECT"
	CmdConnected   = "CONNECTED"
	CmdDisconnect  = "DISCONNECT"
	CmdError       = "ERROR"
	CmdMessage     = "MESSAGE"
	CmdNack        = "NACK"
	CmdReceipt     = "RECEIPT"
	CmdSend        = "SEND"
	CmdStomp       = "STOMP"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
)

// Canonical returns the wire-canonical spelling of a command. Commands are
// case-insensitive on the wire; the decoder keeps them as received, so
// dispatch code should compare Canonical(fr.Command) against the Cmd constants.
func Canonical(command string) string {
	return strings.ToUpper(command)
}
