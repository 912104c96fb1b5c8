package at_test

import (
	"bytes"
	"testing"

	"i4.energy/across/atmodem/at"
)

func TestDigestBareOK(t *testing.T) {
	buf := []byte("AT\r\r\n\r\nOK\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err != nil {
		t.Fatalf("got %+v, want empty OK response", res)
	}
	if len(res.Response) != 0 {
		t.Fatalf("body = %q, want empty", res.Response)
	}
}

func TestDigestTypedResponse(t *testing.T) {
	buf := []byte("AT+USORD=3,16\r\n+USORD: 3,16,\"16 bytes of data\"\r\nOK\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err != nil {
		t.Fatalf("got %+v, want OK response", res)
	}
	want := `+USORD: 3,16,"16 bytes of data"`
	if string(res.Response) != want {
		t.Fatalf("body = %q, want %q", res.Response, want)
	}
}

func TestDigestCmeError(t *testing.T) {
	buf := []byte("AT+USORD=3,16\r\n+USORD: 3,16,\"16 bytes of data\"\r\n+CME ERROR: 123\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err == nil {
		t.Fatalf("got %+v, want error response", res)
	}
	if res.Err.Kind != at.KindCmeError || !res.Err.CodeKnown || res.Err.Code != 123 {
		t.Fatalf("err = %+v, want CmeError(123)", res.Err)
	}
}

func TestDigestURCBeforeResponse(t *testing.T) {
	buf := []byte("+UUSORD: 0,5\r\nAT+USORD=0,4\r\r\n+USORD: 0,4,\"90030002\"\r\nOK\r\n")

	res1, n1 := at.Digest(buf, at.DefaultGrammar(), nil)
	if res1.Kind != at.ResultURC {
		t.Fatalf("first result = %+v, want URC", res1)
	}
	want := "+UUSORD: 0,5"
	if string(res1.URC) != want {
		t.Fatalf("urc = %q, want %q", res1.URC, want)
	}

	res2, n2 := at.Digest(buf[n1:], at.DefaultGrammar(), nil)
	if n1+n2 != len(buf) {
		t.Fatalf("total consumed = %d, want %d", n1+n2, len(buf))
	}
	if res2.Kind != at.ResultResponse || res2.Err != nil {
		t.Fatalf("second result = %+v, want OK response", res2)
	}
	wantBody := `+USORD: 0,4,"90030002"`
	if string(res2.Response) != wantBody {
		t.Fatalf("body = %q, want %q", res2.Response, wantBody)
	}
}

func TestDigestPrompt(t *testing.T) {
	buf := []byte("AT+USECMNG=0,0,\"Verisign\",1758\r>")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if res.Kind != at.ResultPrompt {
		t.Fatalf("got %+v, want Prompt", res)
	}
	if res.Prompt != '>' {
		t.Fatalf("prompt byte = %q, want '>'", res.Prompt)
	}
	if n != 32 {
		t.Fatalf("consumed = %d, want 32", n)
	}
}

func TestDigestCPINDisambiguation(t *testing.T) {
	buf := []byte("AT+CPIN?\r\r\n+CPIN: READY\r\n\r\nOK\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err != nil {
		t.Fatalf("got %+v, want OK response (not URC)", res)
	}
	want := "+CPIN: READY\r\n"
	if string(res.Response) != want {
		t.Fatalf("body = %q, want %q", res.Response, want)
	}
}

func TestDigestIncompleteEchoReturnsNoProgressPastWhitespace(t *testing.T) {
	buf := []byte("  \r\nAT+CSQ")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if res.Kind != at.ResultNone {
		t.Fatalf("got %+v, want None (incomplete)", res)
	}
	if n != 4 {
		t.Fatalf("consumed = %d, want 4 (whitespace only, echo line not yet terminated)", n)
	}
}

func TestDigestGenericError(t *testing.T) {
	buf := []byte("AT+CFUN=1\r\r\nERROR\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err == nil || res.Err.Kind != at.KindGenericError {
		t.Fatalf("got %+v, want generic ERROR", res)
	}
}

func TestDigestConnectionError(t *testing.T) {
	buf := []byte("ATD123\r\r\nNO CARRIER\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err == nil || res.Err.Kind != at.KindConnectionError {
		t.Fatalf("got %+v, want ConnectionError", res)
	}
	if res.Err.Code != 1 {
		t.Fatalf("code = %d, want 1 (NO CARRIER)", res.Err.Code)
	}
}

func TestDigestQuotedOKIsNotATerminator(t *testing.T) {
	buf := []byte("AT+CMGR=1\r\r\n+CMGR: \"REC READ\",\"+15551234\",\"Hello\r\nOK\r\nworld\"\r\nOK\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err != nil {
		t.Fatalf("got %+v, want OK response", res)
	}
	if !bytes.Contains(res.Response, []byte("\"Hello\r\nOK\r\nworld\"")) {
		t.Fatalf("body = %q, want it to retain the embedded OK-like text", res.Response)
	}
}

func TestDigestGarbageBecomesUnrecognizedURC(t *testing.T) {
	buf := []byte("spurious line\r\nAT\r\r\nOK\r\n")
	res1, n1 := at.Digest(buf, at.DefaultGrammar(), nil)
	if res1.Kind != at.ResultURC {
		t.Fatalf("got %+v, want unrecognized URC for garbage line", res1)
	}
	if string(res1.URC) != "spurious line" {
		t.Fatalf("urc = %q", res1.URC)
	}
	res2, n2 := at.Digest(buf[n1:], at.DefaultGrammar(), nil)
	if n1+n2 != len(buf) {
		t.Fatalf("total consumed = %d, want %d", n1+n2, len(buf))
	}
	if res2.Kind != at.ResultResponse {
		t.Fatalf("got %+v, want OK response", res2)
	}
}

func TestDigestInformationResponseWithoutEchoIsNotGarbage(t *testing.T) {
	// No echo precedes this head (e.g. echo disabled via ATE0), but the
	// "+CMGS:" line is followed by OK, so the lookahead must classify it as
	// response body rather than letting the no-echo garbage rule reclaim it.
	buf := []byte("+CMGS: 7\r\nOK\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err != nil {
		t.Fatalf("got %+v, want OK response", res)
	}
	if string(res.Response) != "+CMGS: 7" {
		t.Fatalf("body = %q, want %q", res.Response, "+CMGS: 7")
	}
}

func TestDigestStandaloneCmsErrorWithoutEchoResolves(t *testing.T) {
	// "+CMS ERROR:" is itself a terminator line, not a "+TAG:" body line
	// awaiting one; it must resolve even as the very first line with no
	// preceding echo and nothing following it.
	buf := []byte("+CMS ERROR: 304\r\n")
	res, n := at.Digest(buf, at.DefaultGrammar(), nil)
	if n != len(buf) {
		t.Fatalf("consumed = %d, want %d", n, len(buf))
	}
	if res.Kind != at.ResultResponse || res.Err == nil || res.Err.Kind != at.KindCmsError {
		t.Fatalf("got %+v, want CmsError", res)
	}
	if !res.Err.CodeKnown || res.Err.Code != 304 {
		t.Fatalf("err = %+v, want CmsError(304)", res.Err)
	}
}

func TestDigestCustomURCMatcherOverridesDefault(t *testing.T) {
	buf := []byte("+CIEV: 1,5\r\nOK\r\n")
	match := func(line []byte) (bool, bool) {
		if bytes.HasPrefix(line, []byte("+CIEV:")) {
			return true, true
		}
		return false, false
	}
	res, n := at.Digest(buf, at.DefaultGrammar(), match)
	if res.Kind != at.ResultURC {
		t.Fatalf("got %+v, want URC via custom matcher", res)
	}
	if n != len("+CIEV: 1,5\r\n") {
		t.Fatalf("consumed = %d", n)
	}
}
