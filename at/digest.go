package at

import (
	"bytes"
	"strconv"
)

// URCMatchFunc is a command-specific hook that can classify a candidate URC
// line before the default "not followed by a response terminator" rule is
// applied. It receives the line content (without the trailing CRLF). A
// return of (matched=false) falls through to the default disambiguation.
//
// This replaces the whole-buffer "custom URC matcher" API of the original
// implementation (deprecated per spec.md §9) with a simpler per-token hook.
type URCMatchFunc func(line []byte) (matched bool, isURC bool)

func isWS(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// echoSuffixAllowed reports whether the byte immediately following a bare
// "AT" prefix looks like the start of a genuine command echo rather than
// response/URC text that merely happens to begin with the letters A, T
// (e.g. "AT version:..." in a GMR-style banner). Real AT command tokens
// begin with '+', '&', '^', '\', '=', '?', a digit, or are followed
// immediately by a line ending (the bare "AT" ping); free text continues
// with a space or lowercase letter.
func echoSuffixAllowed(b byte) bool {
	switch {
	case b == '\r' || b == '\n':
		return true
	case b >= '0' && b <= '9':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b == '+' || b == '&' || b == '^' || b == '\\' || b == '=' || b == '?' || b == '#' || b == '$' || b == '%' || b == '*' || b == '/' || b == ':':
		return true
	default:
		return false
	}
}

// matchEcho reports the length of a leading echo (AT-prefixed line,
// including its trailing CR/LF run) at the head of buf, or 0 if none.
// Returns (length, complete): complete is false if the echo looks like it
// is starting but the line ending hasn't arrived yet (wait for more data).
func matchEcho(buf []byte) (n int, complete bool) {
	if len(buf) < 2 || buf[0] != 'A' || buf[1] != 'T' {
		return 0, true
	}
	i := 2
	if i < len(buf) && !echoSuffixAllowed(buf[i]) {
		return 0, true
	}
	for i < len(buf) && buf[i] != '\r' && buf[i] != '\n' {
		i++
	}
	if i >= len(buf) {
		return 0, false // suffix not yet terminated; wait for more
	}
	for i < len(buf) && (buf[i] == '\r' || buf[i] == '\n') {
		i++
	}
	return i, true
}

// findUnquotedCRLF returns the index of the next "\r\n" in buf starting at
// offset, skipping over any bytes inside a double-quoted region. A quote is
// toggled by an unescaped '"'. Returns -1 if no unquoted CRLF is found.
func findUnquotedCRLF(buf []byte, offset int) int {
	inQuote := false
	for i := offset; i+1 < len(buf); i++ {
		b := buf[i]
		if b == '"' && (i == 0 || buf[i-1] != '\\') {
			inQuote = !inQuote
			continue
		}
		if !inQuote && b == '\r' && buf[i+1] == '\n' {
			return i
		}
	}
	return -1
}

type terminatorKind int

const (
	termNone terminatorKind = iota
	termOK
	termGenericError
	termCme
	termCms
	termConnection
	termCustom
)

// classifyTerminatorLine checks whether line (without its trailing CRLF)
// is one of the recognized response-terminator lines.
func classifyTerminatorLine(line []byte, g Grammar) (kind terminatorKind, code uint16, codeKnown bool, connCode byte, tag string) {
	trimmed := bytes.TrimRight(bytes.TrimLeft(line, " \t"), " \t")
	upper := bytes.ToUpper(trimmed)

	if bytes.Equal(upper, []byte(OK)) {
		return termOK, 0, false, 0, ""
	}
	if bytes.Equal(upper, []byte(ErrorToken)) {
		return termGenericError, 0, false, 0, ""
	}
	if cc, ok := g.ConnectionErrors[string(trimmed)]; ok {
		return termConnection, 0, false, cc, string(trimmed)
	}
	if bytes.HasPrefix(upper, []byte(CmeTag)) {
		rest := bytes.TrimSpace(trimmed[len(CmeTag):])
		n, err := strconv.ParseUint(string(rest), 10, 16)
		if err != nil {
			return termCme, 0, false, 0, ""
		}
		return termCme, uint16(n), true, 0, ""
	}
	if bytes.HasPrefix(upper, []byte(CmsTag)) {
		rest := bytes.TrimSpace(trimmed[len(CmsTag):])
		n, err := strconv.ParseUint(string(rest), 10, 16)
		if err != nil {
			return termCms, 0, false, 0, ""
		}
		return termCms, uint16(n), true, 0, ""
	}
	for customTag := range g.CustomErrorTags {
		if bytes.HasPrefix(upper, bytes.ToUpper([]byte(customTag))) {
			return termCustom, 0, false, 0, customTag
		}
	}
	return termNone, 0, false, 0, ""
}

func errorFromTerminator(kind terminatorKind, code uint16, codeKnown bool, connCode byte, tag string, lineBody []byte) *Error {
	switch kind {
	case termGenericError:
		return &Error{Kind: KindGenericError}
	case termCme:
		return &Error{Kind: KindCmeError, Code: code, CodeKnown: codeKnown}
	case termCms:
		return &Error{Kind: KindCmsError, Code: code, CodeKnown: codeKnown}
	case termConnection:
		return &Error{Kind: KindConnectionError, Code: uint16(connCode)}
	case termCustom:
		return &Error{Kind: KindCustom, Tag: tag, Raw: truncate(lineBody)}
	default:
		return nil
	}
}

// Digest locates at most one semantic unit at the head of buf and reports
// how many leading bytes it accounts for. It is stateless: its output
// depends only on the bytes currently in buf, per spec.md §4.1.
//
// match, if non-nil, is consulted for each URC-candidate line before the
// default disambiguation rule is applied (spec.md §4.1 "Custom" strategy).
func Digest(buf []byte, g Grammar, match URCMatchFunc) (Result, int) {
	total := 0
	sawEcho := false

	for {
		for total < len(buf) && isWS(buf[total]) {
			total++
		}
		n, complete := matchEcho(buf[total:])
		if !complete {
			return Result{Kind: ResultNone}, total
		}
		if n == 0 {
			break
		}
		total += n
		sawEcho = true
	}

	head := buf[total:]
	if len(head) == 0 {
		return Result{Kind: ResultNone}, total
	}

	if g.isPrompt(head[0]) {
		return Result{Kind: ResultPrompt, Prompt: head[0]}, total + 1
	}

	looksURCish := head[0] == '+'
	if looksURCish {
		lineEnd := findUnquotedCRLF(head, 0)
		if lineEnd < 0 {
			return Result{Kind: ResultNone}, total
		}
		line := head[:lineEnd]

		// A "+CME ERROR:"/"+CMS ERROR:" (or custom-tagged) line is itself a
		// terminator, not a candidate URC awaiting a terminator lookahead:
		// go straight to scanResponse so it resolves even with nothing
		// following it.
		if kind, _, _, _, _ := classifyTerminatorLine(line, g); kind != termNone {
			sawEcho = true
			goto scanResponse
		}

		if match != nil {
			if handled, isURC := match(line); handled {
				if isURC {
					return Result{Kind: ResultURC, URC: trimCopy(line)}, total + lineEnd + 2
				}
				// explicitly classified as not-a-URC: fall through to
				// response-terminator scanning starting at this head. The
				// matcher has already vouched for this line, so it must not
				// be reclassified as garbage by the !sawEcho check below.
				sawEcho = true
				goto scanResponse
			}
		}

		// Default disambiguation: a "+TAG: ..." line is a URC only if the
		// bytes that follow it are not a response terminator. Blank lines
		// in between (e.g. a lone CRLF before "OK") are skipped.
		nextStart := lineEnd + 2
		isTerminatorAhead := false
		for {
			nextLineEnd := findUnquotedCRLF(head, nextStart)
			if nextLineEnd < 0 {
				return Result{Kind: ResultNone}, total
			}
			nextLine := head[nextStart:nextLineEnd]
			if len(nextLine) == 0 {
				nextStart = nextLineEnd + 2
				continue
			}
			kind, _, _, _, _ := classifyTerminatorLine(nextLine, g)
			isTerminatorAhead = kind != termNone
			break
		}
		if !isTerminatorAhead {
			return Result{Kind: ResultURC, URC: trimCopy(line)}, total + lineEnd + 2
		}
		// a terminator follows (possibly after blank lines): this "+TAG:"
		// line is an information response that belongs to the response
		// body, not a URC. The lookahead already proved forward progress
		// exists, so the no-echo garbage rule below must not reclaim it.
		sawEcho = true
	}

scanResponse:
	// Rule 5: response_body (ok_terminator | error_terminator). Scan
	// forward line by line (quote-aware) for the first terminator line.
	pos := 0
	for {
		lineEnd := findUnquotedCRLF(head, pos)
		if lineEnd < 0 {
			if !sawEcho && pos == 0 {
				// Never saw an echo this call and the very first line of
				// this head hasn't even completed: nothing to garbage-URC
				// yet, just wait.
				return Result{Kind: ResultNone}, total
			}
			return Result{Kind: ResultNone}, total
		}
		line := head[pos:lineEnd]
		kind, code, codeKnown, connCode, tag := classifyTerminatorLine(line, g)
		if kind != termNone {
			bodyEnd := pos
			if bodyEnd >= 2 && head[bodyEnd-2] == '\r' && head[bodyEnd-1] == '\n' {
				bodyEnd -= 2
			} else if bodyEnd >= 1 && (head[bodyEnd-1] == '\r' || head[bodyEnd-1] == '\n') {
				bodyEnd--
			}
			body := bytes.TrimRight(head[:bodyEnd], " \t")
			consumed := total + lineEnd + 2
			if kind == termOK {
				return Result{Kind: ResultResponse, Response: append([]byte(nil), body...)}, consumed
			}
			err := errorFromTerminator(kind, code, codeKnown, connCode, tag, append([]byte(nil), line...))
			return Result{Kind: ResultResponse, Response: append([]byte(nil), body...), Err: err}, consumed
		}

		if pos == 0 && !sawEcho {
			// Garbage edge case (spec.md §4.1 edge cases): a head that is
			// neither echo, prompt, URC, nor the start of a recognizable
			// response (we never consumed an echo to justify waiting for a
			// later terminator) becomes an unrecognized URC once
			// CRLF-terminated.
			return Result{Kind: ResultURC, URC: trimCopy(line)}, total + lineEnd + 2
		}

		pos = lineEnd + 2
		if pos >= len(head) {
			return Result{Kind: ResultNone}, total
		}
	}
}

func trimCopy(b []byte) []byte {
	out := bytes.TrimRight(bytes.TrimLeft(b, " \t\r\n"), " \t\r\n")
	return append([]byte(nil), out...)
}
