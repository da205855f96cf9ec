package codec

// ErrorFrame builds the Error frame this codec sends when it must refuse a
// connection — unknown opcode, handshake mismatch, authorization denial —
// per §4.1 and §4.2.
func ErrorFrame(message string) Frame {
	return Frame{Op: OpError, Error: message}
}

// HandshakeFrame builds a Handshake frame carrying the compile-time
// protocol version.
func HandshakeFrame() Frame {
	return Frame{Op: OpHandshake, Handshake: HandshakePayload{ProtocolVersion: ProtocolVersion}}
}
