package amhs

// nationalityPRMD maps ICAO nationality prefixes to the PRMD name used in
// the console's AMHS addresses. Read-only.
var nationalityPRMD = map[string]string{
	"HE": "EGYPT",
	"OJ": "JORDAN",
	"EG": "UK",
	"LF": "FRANCE",
	"K":  "USA",
	"EH": "NETHERLANDS",
	"ED": "GERMANY",
	"ZB": "CHINA",
	"RJ": "JAPAN",
	"YS": "AUSTRALIA",
	"FA": "SOUTH AFRICA",
	"OM": "UAE",
	"VH": "HONG KONG",
}

// PRMDFor returns the PRMD for a location indicator using the longest
// matching nationality prefix (two letters, then one).
func PRMDFor(location string) string {
	for n := 2; n >= 1; n-- {
		if len(location) < n {
			continue
		}
		if prmd, ok := nationalityPRMD[location[:n]]; ok {
			return prmd
		}
	}
	return UnknownPRMD
}
