package cty_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user00265/ctydatapi/internal/cty"
)

const finland = `Finland:                  15:  18:  EU:   61.38:   -24.82:    -2.0:  OH:
    OF,OG,OH,OI,OJ,=OH/RX3AMI/LH,
    =OF100FI/1/LH,=OF1AD/S,=OF1LD/S,=OF1TX/S,=OH0HG/1,=OH0J/1,=OH0JJS/1,=OH0MDR/1,=OH0MRR/1,=OH1AD/S,
    =OH1AF/LH,=OH1AH/LH,=OH1AH/LT,=OH1AM/LH,=OH1BGG/S,=OH1BGG/SA,=OH1BS/SA,=OH1CM/S,=OH1F/LGT,
    =OH2ET/LH,=OH2ET/LS,=OH2ET/S,=OH0KAG/9,=OH9AR/S,=OH9TM/S,=OH9TO/S;
`

const multi = `Sov Mil Order of Malta:   15:  28:  EU:   41.90:   -12.43:    -1.0:  1A:
    1A;
Spratly Islands:          26:  50:  AS:    9.88:  -114.23:    -8.0:  1S:
    1S,9M0,BM9S,BN9S,BO9S,BP9S,BQ9S,BU9S,BV9S,BW9S,BX9S;
United States:            05:  08:  NA:   37.53:    91.67:     5.0:  K:
    AA,AB,AC,AD,AE,AF,AG,AI,AJ,AK,K,N,W,
    =AH2BW(3)[6],KH6(31)[61]<21.12/157.48>{OC}~10.0~,
    =K1A/KH7Z(4)[7];
`

func TestParse_Finland(t *testing.T) {
	countries, err := cty.Parse(finland)
	require.NoError(t, err)
	require.Len(t, countries, 1)

	c := countries[0]
	assert.Equal(t, "Finland", c.Name)
	assert.Equal(t, uint8(15), c.CQZone)
	assert.Equal(t, uint8(18), c.ITUZone)
	assert.Equal(t, "EU", c.Continent)
	assert.Equal(t, float32(61.38), c.Latitude)
	assert.Equal(t, float32(-24.82), c.Longitude)
	assert.Equal(t, float32(-2.0), c.TimeOffset)
	assert.Equal(t, "OH", c.PrimaryPrefix)

	require.Len(t, c.Aliases, 32)
	assert.Equal(t, cty.Alias{Kind: cty.PrefixToken, Token: "OF"}, c.Aliases[0])
	assert.Equal(t, cty.Alias{Kind: cty.ExactCallsign, Token: "OH/RX3AMI/LH"}, c.Aliases[5])
	assert.Equal(t, cty.Alias{Kind: cty.ExactCallsign, Token: "OH9TO/S"}, c.Aliases[31])
}

func TestParse_SingleLineRecord(t *testing.T) {
	countries, err := cty.Parse("Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH,=OH2ET/SA;\n")
	require.NoError(t, err)
	require.Len(t, countries, 1)

	c := countries[0]
	assert.Equal(t, "Finland", c.Name)
	assert.Equal(t, uint8(15), c.CQZone)
	assert.Equal(t, uint8(18), c.ITUZone)
	assert.Equal(t, "EU", c.Continent)
	assert.Equal(t, float32(61.38), c.Latitude)
	assert.Equal(t, float32(-24.82), c.Longitude)
	assert.Equal(t, float32(-2.0), c.TimeOffset)
	assert.Equal(t, []cty.Alias{
		{Kind: cty.PrefixToken, Token: "OH"},
		{Kind: cty.ExactCallsign, Token: "OH2ET/SA"},
	}, c.Aliases)
}

func TestParse_MultipleRecords(t *testing.T) {
	countries, err := cty.Parse(multi)
	require.NoError(t, err)
	require.Len(t, countries, 3)

	assert.Equal(t, "Sov Mil Order of Malta", countries[0].Name)
	assert.Equal(t, "Spratly Islands", countries[1].Name)
	assert.Len(t, countries[1].Aliases, 11)
	assert.Equal(t, float32(-114.23), countries[1].Longitude)

	us := countries[2]
	assert.Equal(t, "United States", us.Name)
	assert.Equal(t, uint8(5), us.CQZone)
	assert.Equal(t, uint8(8), us.ITUZone)
	require.Len(t, us.Aliases, 16)

	assert.Equal(t, cty.Alias{
		Kind:      cty.ExactCallsign,
		Token:     "AH2BW",
		Overrides: []cty.Override{cty.CQZoneOverride(3), cty.ITUZoneOverride(6)},
	}, us.Aliases[13])

	assert.Equal(t, cty.Alias{
		Kind:  cty.PrefixToken,
		Token: "KH6",
		Overrides: []cty.Override{
			cty.CQZoneOverride(31),
			cty.ITUZoneOverride(61),
			cty.CoordinatesOverride{Latitude: 21.12, Longitude: 157.48},
			cty.ContinentOverride("OC"),
			cty.TimeOffsetOverride(10.0),
		},
	}, us.Aliases[14])

	assert.Equal(t, "=K1A/KH7Z(4)[7]", us.Aliases[15].String())
}

func TestParse_OverrideDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		want  []cty.Override
	}{
		{"parentheses are CQ zone", "KH6(31)", []cty.Override{cty.CQZoneOverride(31)}},
		{"brackets are ITU zone", "KH6[61]", []cty.Override{cty.ITUZoneOverride(61)}},
		{"braces are continent", "KH6{OC}", []cty.Override{cty.ContinentOverride("OC")}},
		{"tildes are time offset", "KH6~-10.5~", []cty.Override{cty.TimeOffsetOverride(-10.5)}},
		{"angles are coordinates", "KH6<21.12/-157.48>", []cty.Override{cty.CoordinatesOverride{Latitude: 21.12, Longitude: -157.48}}},
		{"any order", "KH6~10~[61](31)", []cty.Override{cty.TimeOffsetOverride(10), cty.ITUZoneOverride(61), cty.CQZoneOverride(31)}},
		{"repeated kind kept in order", "KH6(1)(2)", []cty.Override{cty.CQZoneOverride(1), cty.CQZoneOverride(2)}},
		{"no overrides", "KH6", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countries, err := cty.Parse("Hawaii: 31: 61: OC: 21.12: 157.48: 10.0: KH6: " + tt.alias + ";\n")
			require.NoError(t, err)
			require.Len(t, countries, 1)
			require.Len(t, countries[0].Aliases, 1)
			assert.Equal(t, "KH6", countries[0].Aliases[0].Token)
			assert.Equal(t, tt.want, countries[0].Aliases[0].Overrides)
		})
	}
}

func TestParse_Whitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"CRLF line breaks", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH:\r\n    OH,\r\n    =OH2ET;\r\n"},
		{"blank lines between records", "\n\nFinland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH, =OH2ET;\n\n\n"},
		{"tabs around separators", "Finland:\t15\t:\t18:\tEU:\t61.38:\t-24.82:\t-2.0:\tOH:\tOH ,\t=OH2ET ;\n"},
		{"no final line break", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH,=OH2ET;"},
		{"trailing blanks after terminator", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH,=OH2ET;   \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countries, err := cty.Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, countries, 1)
			assert.Equal(t, "Finland", countries[0].Name)
			assert.Equal(t, "OH", countries[0].PrimaryPrefix)
			assert.Equal(t, []cty.Alias{
				{Kind: cty.PrefixToken, Token: "OH"},
				{Kind: cty.ExactCallsign, Token: "OH2ET"},
			}, countries[0].Aliases)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "\n", "  \r\n\t"} {
		countries, err := cty.Parse(input)
		assert.NoError(t, err, "input %q", input)
		assert.Empty(t, countries, "input %q", input)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		label  string
		line   int
		column int
	}{
		{"missing terminator", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH,=OH2ET\n", "',' or ';'", 2, 1},
		{"non-numeric CQ zone", "Finland: XV: 18: EU: 61.38: -24.82: -2.0: OH: OH;\n", "CQ zone", 1, 10},
		{"CQ zone overflow", "Finland: 300: 18: EU: 61.38: -24.82: -2.0: OH: OH;\n", "CQ zone", 1, 10},
		{"non-numeric ITU zone", "Finland: 15: ?: EU: 61.38: -24.82: -2.0: OH: OH;\n", "ITU zone", 1, 14},
		{"short continent", "Finland: 15: 18: E: 61.38: -24.82: -2.0: OH: OH;\n", "Continent", 1, 19},
		{"long continent", "Finland: 15: 18: EUR: 61.38: -24.82: -2.0: OH: OH;\n", "':'", 1, 20},
		{"malformed latitude", "Finland: 15: 18: EU: 61.3.8: -24.82: -2.0: OH: OH;\n", "Latitude", 1, 22},
		{"missing longitude", "Finland: 15: 18: EU: 61.38: : -2.0: OH: OH;\n", "Longitude", 1, 29},
		{"malformed time offset", "Finland: 15: 18: EU: 61.38: -24.82: --2: OH: OH;\n", "Time offset", 1, 37},
		{"name too short", "Fin: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH;\n", "Country name", 1, 1},
		{"missing separator", "Finland: 15 18: EU: 61.38: -24.82: -2.0: OH: OH;\n", "':'", 1, 13},
		{"empty alias", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH,,OG;\n", "DXCC prefix", 1, 50},
		{"empty exact callsign", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH,=;\n", "Exact callsign", 1, 51},
		{"unterminated override", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH(15;\n", "')'", 1, 52},
		{"coordinates without slash", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH<60.1>;\n", "'/'", 1, 54},
		{"numeric continent override", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH{12};\n", "Continent override", 1, 50},
		{"garbage after terminator", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH; x\n", "line break", 1, 51},
		{"second record broken", "Finland: 15: 18: EU: 61.38: -24.82: -2.0: OH: OH;\nAland Islands: 15: 18\n", "':'", 2, 22},
		{"record cut after continent", "Finland: 15: 18: EU\n", "':'", 1, 20},
		{"separator missing before next line", "Finland: 15: 18: EU\n  61.38: -24.82: -2.0: OH: OH;\n", "':'", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countries, err := cty.Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, countries)

			var perr *cty.ParseError
			require.True(t, errors.As(err, &perr), "expected *cty.ParseError, got %T", err)
			assert.Equal(t, tt.label, perr.Label)
			assert.Equal(t, tt.line, perr.Line, "line")
			assert.Equal(t, tt.column, perr.Column, "column")
			assert.Contains(t, err.Error(), "expected "+tt.label)
		})
	}
}

func TestParseError_EmptyNameNamesOffendingByte(t *testing.T) {
	tests := []struct {
		name  string
		input string
		found string
	}{
		{"leading separator", ": 15: 18: EU: 61.38: -24.82: -2.0: OH: OH;\n", `":"`},
		{"non-ascii first byte", "\xc3\x85land Islands: 15: 18: EU: 60.13: -20.37: -2.0: OH0: OH0;\n", `"\xc3"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cty.Parse(tt.input)
			var perr *cty.ParseError
			require.True(t, errors.As(err, &perr), "expected *cty.ParseError, got %v", err)
			assert.Equal(t, "Country name", perr.Label)
			assert.Equal(t, 1, perr.Column)
			assert.Equal(t, tt.found, perr.Found)
		})
	}
}

func TestParseError_WrapsConversionError(t *testing.T) {
	_, err := cty.Parse("Finland: 300: 18: EU: 61.38: -24.82: -2.0: OH: OH;\n")
	require.Error(t, err)

	var numErr *strconv.NumError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, strconv.ErrRange, numErr.Err)
	assert.True(t, strings.HasPrefix(err.Error(), "line 1, column 10: expected CQ zone, found \"300\""))
}

func TestCountry_IsWAE(t *testing.T) {
	countries, err := cty.Parse("Sicily: 15: 28: EU: 37.50: -14.00: -1.0: *IT9: IT9,IG9;\nItaly: 15: 28: EU: 42.82: -12.58: -1.0: I: I;\n")
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.True(t, countries[0].IsWAE())
	assert.False(t, countries[1].IsWAE())
}
