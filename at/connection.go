package at

// connectionDescriptions maps the bareword connection-error codes assigned
// by Grammar.ConnectionErrors back to their token, for diagnostics.
var connectionDescriptions = map[byte]string{
	1: NoCarrier,
	2: NoDialtone,
	3: Busy,
	4: NoAnswer,
}

// ConnectionDescription returns the token text for a connection-error code
// as assigned by DefaultGrammar, or false if the code is unrecognized.
func ConnectionDescription(code byte) (string, bool) {
	s, ok := connectionDescriptions[code]
	return s, ok
}
