// Package at implements the wire grammar of the AT command protocol: a
// stateless digester that locates response boundaries in a byte buffer and
// classifies them, plus the flat error taxonomy and reference code tables
// used by the rest of the driver.
//
// # Protocol overview
//
// AT commands follow a structured pattern:
//  1. Commands are sent CRLF-terminated.
//  2. Responses arrive as CRLF-terminated lines, optionally preceded by an
//     echo of the command.
//  3. Commands conclude with a final result code (OK, ERROR, +CME/+CMS
//     ERROR, or a connection-error token).
//  4. Intermediate "information response" lines may appear before the final
//     result.
//  5. Unsolicited Result Codes (URCs) can arrive at any time, interleaved
//     with solicited traffic.
//  6. A single prompt byte (commonly '>' or '@') signals readiness for a
//     raw data payload (e.g. SMS text entry).
package at

// CRLF is the line terminator used in both directions of the wire protocol.
const CRLF = "\r\n"

// CtrlZ is the SMS body terminator sent after the prompt byte in text mode.
const CtrlZ = "\x1A"

// Default response codes recognized by Grammar.
const (
	OK         = "OK"
	ErrorToken = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeTag     = "+CME ERROR:"
	CmsTag     = "+CMS ERROR:"
)

// Grammar configures the variable parts of the AT grammar: prompt bytes,
// the error tags that introduce a semantic error code, and the set of
// bareword connection-error tokens. The zero value is not usable; use
// DefaultGrammar.
type Grammar struct {
	// PromptBytes are single bytes that, seen at the head of the buffer,
	// signal "modem ready for raw data" (e.g. SMS text entry). Default: '>' '@'.
	PromptBytes []byte

	// ConnectionErrors maps a bareword final result to a ConnectionError code.
	ConnectionErrors map[string]byte

	// CustomErrorTags maps an implementer-supplied error tag (e.g. "+EXT ERROR:")
	// to true, causing Digest to classify a matching terminator line as a
	// Custom error frame carrying the raw tag+text.
	CustomErrorTags map[string]bool
}

// DefaultGrammar returns the grammar described in spec.md §4.1/§6: prompt
// bytes '>' and '@', and the four bareword connection-error tokens mapped to
// small stable codes.
func DefaultGrammar() Grammar {
	return Grammar{
		PromptBytes: []byte{'>', '@'},
		ConnectionErrors: map[string]byte{
			NoCarrier:  1,
			NoDialtone: 2,
			Busy:       3,
			NoAnswer:   4,
		},
		CustomErrorTags: map[string]bool{},
	}
}

func (g Grammar) isPrompt(b byte) bool {
	for _, p := range g.PromptBytes {
		if p == b {
			return true
		}
	}
	return false
}
