package at

// cmsDescriptions maps +CMS ERROR codes (3GPP TS 27.005 SMS errors) to their
// text, for diagnostics only.
var cmsDescriptions = map[uint16]string{
	1:   "unassigned number",
	8:   "operator determined barring",
	10:  "call barred",
	21:  "short message transfer rejected",
	27:  "destination out of order",
	28:  "unidentified subscriber",
	30:  "facility rejected",
	38:  "network out of order",
	41:  "temporary failure",
	42:  "congestion",
	47:  "resources unavailable",
	50:  "requested facility not subscribed",
	69:  "requested facility not implemented",
	81:  "invalid short message transfer reference value",
	95:  "invalid message unspecified",
	96:  "invalid mandatory information",
	97:  "message type non existent or not implemented",
	98:  "message not compatible with short message protocol state",
	99:  "information element non-existent or not implemented",
	111: "protocol error, unspecified",
	127: "interworking, unspecified",
	128: "telematic interworking not supported",
	129: "short message type 0 not supported",
	130: "cannot replace short message",
	143: "unspecified TP-PID error",
	144: "data coding scheme (alphabet) not supported",
	145: "message class not supported",
	159: "unspecified TP-DCS error",
	160: "command cannot be actioned",
	161: "command unsupported",
	175: "unspecified TP-command error",
	176: "TPDU not supported",
	192: "SC busy",
	193: "no SC subscription",
	194: "SC system failure",
	195: "invalid SME address",
	196: "destination SME barred",
	197: "SM rejected-duplicate SM",
	198: "TP-VPF not supported",
	199: "TP-VP not supported",
	208: "(U)SIM SMS storage full",
	209: "no SMS storage capability in (U)SIM",
	210: "error in MS",
	211: "memory capacity exceeded",
	212: "(U)SIM application toolkit busy",
	213: "(U)SIM data download error",
	255: "unspecified error cause",
	300: "ME failure",
	301: "SMS service of ME reserved",
	302: "operation not allowed",
	303: "operation not supported",
	304: "invalid PDU mode parameter",
	305: "invalid text mode parameter",
	310: "SIM not inserted",
	311: "SIM PIN required",
	312: "PH-SIM PIN required",
	313: "SIM failure",
	314: "SIM busy",
	315: "SIM wrong",
	316: "SIM PUK required",
	317: "SIM PIN2 required",
	318: "SIM PUK2 required",
	320: "memory failure",
	321: "invalid memory index",
	322: "memory full",
	330: "SMSC address unknown",
	331: "no network service",
	332: "network timeout",
	340: "no +CNMA acknowledgement expected",
	500: "unknown error",
}

// CmsDescription returns the diagnostic text for a +CMS ERROR code, or false
// if the code is not in the reference table.
func CmsDescription(code uint16) (string, bool) {
	s, ok := cmsDescriptions[code]
	return s, ok
}
