package cty

import (
	"strconv"
	"strings"
)

// minNameLength is the length of the shortest real entity names (Peru, Fiji).
const minNameLength = 4

// Parse parses the full text of a country file into its records, in file order.
//
// Each record has the form
//
//	name: cq: itu: cont: lat: long: offset: primary: alias,alias,...;
//
// followed by a line break. The alias list may span several lines. Any field
// that does not match its grammar aborts the parse with a *ParseError; no
// partial result is returned.
func Parse(text string) ([]Country, error) {
	p := &parser{src: text}
	var countries []Country
	for {
		p.skipSpace()
		if p.eof() {
			return countries, nil
		}
		c, err := p.country()
		if err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) country() (Country, error) {
	var c Country
	steps := []func() error{
		func() (err error) { c.Name, err = p.name(); return },
		p.separator,
		func() (err error) { c.CQZone, err = p.zone("CQ zone"); return },
		p.separator,
		func() (err error) { c.ITUZone, err = p.zone("ITU zone"); return },
		p.separator,
		func() (err error) { c.Continent, err = p.continent("Continent"); return },
		p.separator,
		func() (err error) { c.Latitude, err = p.float("Latitude"); return },
		p.separator,
		func() (err error) { c.Longitude, err = p.float("Longitude"); return },
		p.separator,
		func() (err error) { c.TimeOffset, err = p.float("Time offset"); return },
		p.separator,
		func() (err error) { c.PrimaryPrefix, err = p.primaryPrefix(); return },
		p.separator,
		func() (err error) { c.Aliases, err = p.aliasList(); return },
		p.lineEnd,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Country{}, err
		}
	}
	return c, nil
}

func (p *parser) name() (string, error) {
	start := p.pos
	tok := p.takeWhile(isFieldChar)
	name := strings.TrimRight(tok, " ")
	if name == "" {
		return "", p.fail(start, "Country name", nil)
	}
	if len(name) < minNameLength {
		return "", p.failToken(start, "Country name", name, nil)
	}
	return name, nil
}

func (p *parser) separator() error {
	start := p.pos
	p.skipSpace()
	if p.eof() || p.peek() != ':' {
		// A record cut short is reported where its last field ends, not on
		// the following line.
		if p.eof() || strings.IndexByte(p.src[start:p.pos], '\n') >= 0 {
			return p.fail(start, "':'", nil)
		}
		return p.fail(p.pos, "':'", nil)
	}
	p.pos++
	p.skipSpace()
	return nil
}

func (p *parser) zone(label string) (uint8, error) {
	start := p.pos
	tok := p.takeWhile(isDigit)
	if tok == "" {
		return 0, p.fail(start, label, nil)
	}
	v, err := strconv.ParseUint(tok, 10, 8)
	if err != nil {
		return 0, p.failToken(start, label, tok, err)
	}
	return uint8(v), nil
}

func (p *parser) continent(label string) (string, error) {
	start := p.pos
	for i := 0; i < 2; i++ {
		if p.eof() || !isFieldChar(p.peek()) || p.peek() == ' ' {
			return "", p.fail(p.pos, label, nil)
		}
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) float(label string) (float32, error) {
	start := p.pos
	tok := p.takeWhile(isFloatChar)
	if tok == "" {
		return 0, p.fail(start, label, nil)
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, p.failToken(start, label, tok, err)
	}
	return float32(v), nil
}

func (p *parser) primaryPrefix() (string, error) {
	start := p.pos
	prefix := strings.TrimRight(p.takeWhile(isFieldChar), " ")
	if prefix == "" {
		return "", p.fail(start, "Primary prefix", nil)
	}
	return prefix, nil
}

func (p *parser) aliasList() ([]Alias, error) {
	var aliases []Alias
	for {
		p.skipSpace()
		a, err := p.alias()
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, a)

		p.skipSpace()
		if p.eof() {
			return nil, p.fail(p.pos, "',' or ';'", nil)
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ';':
			p.pos++
			return aliases, nil
		default:
			return nil, p.fail(p.pos, "',' or ';'", nil)
		}
	}
}

func (p *parser) alias() (Alias, error) {
	a := Alias{Kind: PrefixToken}
	label := "DXCC prefix"
	if !p.eof() && p.peek() == '=' {
		a.Kind = ExactCallsign
		label = "Exact callsign"
		p.pos++
	}
	start := p.pos
	a.Token = p.takeWhile(isCallChar)
	if a.Token == "" {
		return Alias{}, p.fail(start, label, nil)
	}
	for {
		o, err := p.override()
		if err != nil {
			return Alias{}, err
		}
		if o == nil {
			return a, nil
		}
		a.Overrides = append(a.Overrides, o)
	}
}

// override parses one annotation following an alias token. It returns a nil
// Override when the next byte does not open an annotation.
func (p *parser) override() (Override, error) {
	if p.eof() {
		return nil, nil
	}
	switch p.peek() {
	case '(':
		p.pos++
		z, err := p.zone("CQ zone override")
		if err != nil {
			return nil, err
		}
		return CQZoneOverride(z), p.expect(')')
	case '[':
		p.pos++
		z, err := p.zone("ITU zone override")
		if err != nil {
			return nil, err
		}
		return ITUZoneOverride(z), p.expect(']')
	case '{':
		p.pos++
		start := p.pos
		cont, err := p.continent("Continent override")
		if err != nil {
			return nil, err
		}
		if !isLetter(cont[0]) || !isLetter(cont[1]) {
			return nil, p.failToken(start, "Continent override", cont, nil)
		}
		return ContinentOverride(cont), p.expect('}')
	case '~':
		p.pos++
		f, err := p.float("Time offset override")
		if err != nil {
			return nil, err
		}
		return TimeOffsetOverride(f), p.expect('~')
	case '<':
		p.pos++
		lat, err := p.float("Latitude override")
		if err != nil {
			return nil, err
		}
		if err := p.expect('/'); err != nil {
			return nil, err
		}
		long, err := p.float("Longitude override")
		if err != nil {
			return nil, err
		}
		return CoordinatesOverride{Latitude: lat, Longitude: long}, p.expect('>')
	}
	return nil, nil
}

// lineEnd consumes the line break that terminates a record. End of input
// counts as the final line break.
func (p *parser) lineEnd() error {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
	switch {
	case p.eof():
		return nil
	case p.peek() == '\n':
		p.pos++
		return nil
	case strings.HasPrefix(p.src[p.pos:], "\r\n"):
		p.pos += 2
		return nil
	}
	return p.fail(p.pos, "line break", nil)
}

func (p *parser) expect(ch byte) error {
	if p.eof() || p.peek() != ch {
		return p.fail(p.pos, "'"+string(ch)+"'", nil)
	}
	p.pos++
	return nil
}

func (p *parser) takeWhile(accept func(byte) bool) string {
	start := p.pos
	for !p.eof() && accept(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) skipSpace() {
	p.takeWhile(isSpace)
}

func (p *parser) eof() bool  { return p.pos >= len(p.src) }
func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) fail(offset int, label string, err error) *ParseError {
	return newParseError(p.src, offset, label, describeAt(p.src, offset), err)
}

func (p *parser) failToken(offset int, label, token string, err error) *ParseError {
	return newParseError(p.src, offset, label, strconv.Quote(token), err)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// isFieldChar accepts printable ASCII other than the field separator.
func isFieldChar(c byte) bool {
	return c >= 0x20 && c < 0x7f && c != ':'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isFloatChar(c byte) bool {
	return isDigit(c) || c == '-' || c == '.'
}

func isCallChar(c byte) bool {
	return isDigit(c) || isLetter(c) || c == '/'
}
