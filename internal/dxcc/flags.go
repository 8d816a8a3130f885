package dxcc

import "strings"

// FlagEmojis maps the primary prefix of common entities to an emoji flag.
var FlagEmojis = map[string]string{
	// North America
	"K":   "🇺🇸", // United States
	"VE":  "🇨🇦", // Canada
	"XE":  "🇲🇽", // Mexico
	"CO":  "🇨🇺", // Cuba
	"KG4": "🇺🇸", // Guantanamo Bay
	"KP4": "🇵🇷", // Puerto Rico
	"TI":  "🇨🇷", // Costa Rica
	"HP":  "🇵🇦", // Panama

	// South America
	"LU": "🇦🇷", // Argentina
	"PY": "🇧🇷", // Brazil
	"CX": "🇺🇾", // Uruguay
	"CE": "🇨🇱", // Chile
	"HK": "🇨🇴", // Colombia
	"OA": "🇵🇪", // Peru
	"YV": "🇻🇪", // Venezuela
	"HC": "🇪🇨", // Ecuador
	"8R": "🇬🇾", // Guyana
	"ZP": "🇵🇾", // Paraguay
	"FY": "🇬🇫", // French Guiana

	// Europe
	"PA": "🇳🇱", // Netherlands
	"OE": "🇦🇹", // Austria
	"ON": "🇧🇪", // Belgium
	"OK": "🇨🇿", // Czech Republic
	"OZ": "🇩🇰", // Denmark
	"OH": "🇫🇮", // Finland
	"F":  "🇫🇷", // France
	"DL": "🇩🇪", // Fed. Rep. of Germany
	"SV": "🇬🇷", // Greece
	"HA": "🇭🇺", // Hungary
	"TF": "🇮🇸", // Iceland
	"EI": "🇮🇪", // Ireland
	"I":  "🇮🇹", // Italy
	"3A": "🇲🇨", // Monaco
	"LA": "🇳🇴", // Norway
	"SP": "🇵🇱", // Poland
	"CT": "🇵🇹", // Portugal
	"UA": "🇷🇺", // European Russia
	"EA": "🇪🇸", // Spain
	"SM": "🇸🇪", // Sweden
	"HB": "🇨🇭", // Switzerland
	"UR": "🇺🇦", // Ukraine
	"G":  "🇬🇧", // England
	"LZ": "🇧🇬", // Bulgaria
	"YO": "🇷🇴", // Romania
	"S5": "🇸🇮", // Slovenia
	"9A": "🇭🇷", // Croatia
	"LY": "🇱🇹", // Lithuania
	"ES": "🇪🇪", // Estonia
	"YL": "🇱🇻", // Latvia

	// Asia
	"JA":  "🇯🇵", // Japan
	"BY":  "🇨🇳", // China
	"HL":  "🇰🇷", // Republic of Korea
	"VU":  "🇮🇳", // India
	"HS":  "🇹🇭", // Thailand
	"3W":  "🇻🇳", // Vietnam
	"YB":  "🇮🇩", // Indonesia
	"DU":  "🇵🇭", // Philippines
	"9V":  "🇸🇬", // Singapore
	"9M2": "🇲🇾", // West Malaysia
	"BV":  "🇹🇼", // Taiwan
	"VR":  "🇭🇰", // Hong Kong
	"UA9": "🇷🇺", // Asiatic Russia
	"4X":  "🇮🇱", // Israel

	// Oceania
	"VK":  "🇦🇺", // Australia
	"ZL":  "🇳🇿", // New Zealand
	"3D2": "🇫🇯", // Fiji
	"P2":  "🇵🇬", // Papua New Guinea
	"YJ":  "🇻🇺", // Vanuatu
	"FK":  "🇳🇨", // New Caledonia
	"FO":  "🇵🇫", // French Polynesia
	"KH6": "🇺🇸", // Hawaii

	// Africa
	"ZS": "🇿🇦", // South Africa
	"SU": "🇪🇬", // Egypt
	"5Z": "🇰🇪", // Kenya
	"5N": "🇳🇬", // Nigeria
	"CN": "🇲🇦", // Morocco
	"3V": "🇹🇳", // Tunisia
	"5R": "🇲🇬", // Madagascar
	"FR": "🇷🇪", // Reunion Island
}

// Flag returns the emoji flag for a primary prefix, or "" when none is known.
func Flag(primaryPrefix string) string {
	return FlagEmojis[strings.ToUpper(strings.TrimPrefix(primaryPrefix, "*"))]
}
