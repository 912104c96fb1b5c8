package atcmd_test

import (
	"testing"

	"i4.energy/across/atmodem/atcodec"
	"i4.energy/across/atmodem/atcmd"
)

func TestCFUNEncodeOmitsAbsentReset(t *testing.T) {
	line, err := atcodec.Encode(atcmd.CFUN{Fun: 1})
	if err != nil {
		t.Fatal(err)
	}
	if line != "AT+CFUN=1" {
		t.Fatalf("got %q", line)
	}
}

func TestCFUNEncodeIncludesReset(t *testing.T) {
	rst := uint8(0)
	line, err := atcodec.Encode(atcmd.CFUN{Fun: 4, Rst: &rst})
	if err != nil {
		t.Fatal(err)
	}
	if line != "AT+CFUN=4,0" {
		t.Fatalf("got %q", line)
	}
}

func TestCPINStatusDecode(t *testing.T) {
	var s atcmd.CPINStatus
	if err := s.FromBytes([]byte("+CPIN: READY")); err != nil {
		t.Fatal(err)
	}
	if !s.Ready() {
		t.Fatalf("got %+v, want Ready() == true", s)
	}
}

func TestCPINEnterEncode(t *testing.T) {
	line, err := atcodec.Encode(atcmd.CPINEnter{PIN: "1234"})
	if err != nil {
		t.Fatal(err)
	}
	if line != `AT+CPIN="1234"` {
		t.Fatalf("got %q", line)
	}
}

func TestCSQResultDecode(t *testing.T) {
	var r atcmd.CSQResult
	if err := r.FromBytes([]byte("+CSQ: 21,99")); err != nil {
		t.Fatal(err)
	}
	if r.RSSI != 21 || r.BER != 99 {
		t.Fatalf("got %+v", r)
	}
}

func TestUSORDResultDecode(t *testing.T) {
	var r atcmd.USORDResult
	if err := r.FromBytes([]byte(`+USORD: 0,4,"90030002"`)); err != nil {
		t.Fatal(err)
	}
	if r.Socket != 0 || r.Length != 4 || r.Data != "90030002" {
		t.Fatalf("got %+v", r)
	}
}

func TestCMGSEncode(t *testing.T) {
	line, err := atcodec.Encode(atcmd.CMGS{Recipient: "+15551234567"})
	if err != nil {
		t.Fatal(err)
	}
	if line != `AT+CMGS="+15551234567"` {
		t.Fatalf("got %q", line)
	}
}

func TestCMGSResultDecode(t *testing.T) {
	var r atcmd.CMGSResult
	if err := r.FromBytes([]byte("+CMGS: 42")); err != nil {
		t.Fatal(err)
	}
	if r.Reference != 42 {
		t.Fatalf("got %+v", r)
	}
}

func TestDecodeURCMessageIndication(t *testing.T) {
	u, err := atcmd.DecodeURC([]byte(`+CMTI: "SM",3`))
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind != atcmd.UrcMessageIndication || u.Storage != "SM" || u.Index != 3 {
		t.Fatalf("got %+v", u)
	}
}

func TestDecodeURCSignalQuality(t *testing.T) {
	u, err := atcmd.DecodeURC([]byte("+CSQ: 18,0"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind != atcmd.UrcSignalQuality || u.RSSI != 18 || u.BER != 0 {
		t.Fatalf("got %+v", u)
	}
}

func TestDecodeURCRing(t *testing.T) {
	u, err := atcmd.DecodeURC([]byte("RING"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind != atcmd.UrcRing {
		t.Fatalf("got %+v", u)
	}
}

func TestDecodeURCSocketDataAvailable(t *testing.T) {
	u, err := atcmd.DecodeURC([]byte("+UUSORD: 0,5"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind != atcmd.UrcSocketDataAvailable || u.Socket != 0 || u.Length != 5 {
		t.Fatalf("got %+v", u)
	}
}

func TestDecodeURCUnknownDoesNotError(t *testing.T) {
	u, err := atcmd.DecodeURC([]byte("+UNKNOWNTAG: 1,2,3"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind != atcmd.UrcUnknown {
		t.Fatalf("got %+v", u)
	}
}
