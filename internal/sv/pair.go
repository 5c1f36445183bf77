package sv

import "fmt"

// LinkedPair joins breakends of two different SVs facing each other, forming
// a templated insertion within a chain.
type LinkedPair struct {
	first    *Breakend
	second   *Breakend
	inferred bool
}

// NewLinkedPair creates a pair in chain order and registers it on both
// breakends.
func NewLinkedPair(first, second *Breakend, inferred bool) *LinkedPair {
	p := &LinkedPair{first: first, second: second, inferred: inferred}
	first.links = append(first.links, p)
	second.links = append(second.links, p)
	return p
}

// First returns the breakend entered first when walking the chain forward.
func (p *LinkedPair) First() *Breakend { return p.first }

// Second returns the breakend left from when walking the chain forward.
func (p *LinkedPair) Second() *Breakend { return p.second }

// Lower returns the breakend with the lower position.
func (p *LinkedPair) Lower() *Breakend {
	if p.first.Position <= p.second.Position {
		return p.first
	}
	return p.second
}

// Upper returns the breakend with the higher position.
func (p *LinkedPair) Upper() *Breakend {
	if p.first.Position <= p.second.Position {
		return p.second
	}
	return p.first
}

// Length returns the distance between the two breakends.
func (p *LinkedPair) Length() int64 {
	return p.Upper().Position - p.Lower().Position
}

// Inferred reports whether the link was inferred rather than assembled.
func (p *LinkedPair) Inferred() bool { return p.inferred }

// Has reports whether b is one of the pair's breakends.
func (p *LinkedPair) Has(b *Breakend) bool {
	return p.first == b || p.second == b
}

// Other returns the pair's breakend which is not b.
func (p *LinkedPair) Other(b *Breakend) *Breakend {
	if p.first == b {
		return p.second
	}
	return p.first
}

// Chromosome returns the chromosome of the pair.
func (p *LinkedPair) Chromosome() string { return p.first.Chromosome }

func (p *LinkedPair) String() string {
	return fmt.Sprintf("%d %s & %d %s", p.first.sv.ID, p.first, p.second.sv.ID, p.second)
}

// DBPair is a deletion bridge: two breakends of different SVs facing away
// from each other.
type DBPair struct {
	plus  *Breakend // orientation +1
	minus *Breakend // orientation -1
}

// NewDBPair creates a deletion bridge and registers it on both breakends.
func NewDBPair(a, b *Breakend) *DBPair {
	d := &DBPair{plus: a, minus: b}
	if a.Orientation == -1 {
		d.plus, d.minus = b, a
	}
	a.dbLink = d
	b.dbLink = d
	return d
}

// Length is the deleted gap from the +1 breakend to the -1 breakend. It is
// negative when the breakends overlap.
func (d *DBPair) Length() int64 {
	return d.minus.Position - d.plus.Position
}

// Other returns the bridge's breakend which is not b.
func (d *DBPair) Other(b *Breakend) *Breakend {
	if d.plus == b {
		return d.minus
	}
	return d.plus
}
