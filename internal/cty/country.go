// Package cty parses the CTY.DAT country file format.
//
// See https://www.country-files.com/cty-dat-format/ for the published format.
package cty

import (
	"fmt"
	"strconv"
	"strings"
)

// Country is a single entity record from the country file.
type Country struct {
	// Name is the country or entity name.
	Name string `json:"country" msgpack:"country"`
	// CQZone is the CQ zone of the entity.
	CQZone uint8 `json:"cqz" msgpack:"cqz"`
	// ITUZone is the ITU zone of the entity.
	ITUZone uint8 `json:"ituz" msgpack:"ituz"`
	// Continent is the 2-letter continent abbreviation.
	Continent string `json:"cont" msgpack:"cont"`
	// Latitude in degrees, + for North.
	Latitude float32 `json:"lat" msgpack:"lat"`
	// Longitude in degrees, + for West.
	Longitude float32 `json:"long" msgpack:"long"`
	// TimeOffset is the local time offset from GMT in hours.
	TimeOffset float32 `json:"time_offset" msgpack:"time_offset"`
	// PrimaryPrefix is the primary DXCC prefix. A leading '*' marks a WAE-only entity.
	PrimaryPrefix string `json:"prefix" msgpack:"prefix"`
	// Aliases lists the alias prefixes and exact callsigns, normally including
	// the primary prefix. The index detaches this list when it is built.
	Aliases []Alias `json:"-" msgpack:"-"`
}

// IsWAE reports whether the entity is only on the WAE list and not a DXCC entity.
func (c Country) IsWAE() bool {
	return strings.HasPrefix(c.PrimaryPrefix, "*")
}

// AliasKind distinguishes prefix aliases from exact callsign aliases.
type AliasKind int

const (
	// PrefixToken matches any callsign starting with the token.
	PrefixToken AliasKind = iota
	// ExactCallsign matches only a callsign equal to the token.
	ExactCallsign
)

func (k AliasKind) String() string {
	if k == ExactCallsign {
		return "callsign"
	}
	return "prefix"
}

// Alias is one entry of a country's alias list.
type Alias struct {
	Kind      AliasKind
	Token     string
	Overrides []Override
}

// String renders the alias the way it is written in the country file.
func (a Alias) String() string {
	var b strings.Builder
	if a.Kind == ExactCallsign {
		b.WriteByte('=')
	}
	b.WriteString(a.Token)
	for _, o := range a.Overrides {
		b.WriteString(o.String())
	}
	return b.String()
}

// Override corrects one field of the country record for a single alias.
type Override interface {
	// Apply writes the overridden field into c.
	Apply(c *Country)
	// String renders the override annotation as written in the file.
	String() string
}

// CQZoneOverride is written as (#).
type CQZoneOverride uint8

func (o CQZoneOverride) Apply(c *Country) { c.CQZone = uint8(o) }
func (o CQZoneOverride) String() string   { return fmt.Sprintf("(%d)", uint8(o)) }

// ITUZoneOverride is written as [#].
type ITUZoneOverride uint8

func (o ITUZoneOverride) Apply(c *Country) { c.ITUZone = uint8(o) }
func (o ITUZoneOverride) String() string   { return fmt.Sprintf("[%d]", uint8(o)) }

// CoordinatesOverride is written as <lat/long>.
type CoordinatesOverride struct {
	Latitude  float32
	Longitude float32
}

func (o CoordinatesOverride) Apply(c *Country) {
	c.Latitude = o.Latitude
	c.Longitude = o.Longitude
}

func (o CoordinatesOverride) String() string {
	return "<" + formatFloat(o.Latitude) + "/" + formatFloat(o.Longitude) + ">"
}

// ContinentOverride is written as {aa}.
type ContinentOverride string

func (o ContinentOverride) Apply(c *Country) { c.Continent = string(o) }
func (o ContinentOverride) String() string   { return "{" + string(o) + "}" }

// TimeOffsetOverride is written as ~#~.
type TimeOffsetOverride float32

func (o TimeOffsetOverride) Apply(c *Country) { c.TimeOffset = float32(o) }
func (o TimeOffsetOverride) String() string   { return "~" + formatFloat(float32(o)) + "~" }

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
