package sv

import "fmt"

// Chain is an ordered run of linked pairs where the SV leaving each link
// enters the next one.
type Chain struct {
	ID    int
	links []*LinkedPair
}

// NewChain creates a chain, checking that links[i].Second().Other() is
// links[i+1].First().
func NewChain(id int, links []*LinkedPair) (*Chain, error) {
	if len(links) == 0 {
		return nil, fmt.Errorf("chain %d: no links: %w", id, ErrChainBroken)
	}
	for i := 0; i < len(links)-1; i++ {
		if links[i].Second().Other() != links[i+1].First() {
			return nil, fmt.Errorf("chain %d: link %d (%s) does not join link %d (%s): %w",
				id, i, links[i], i+1, links[i+1], ErrChainBroken)
		}
	}
	return &Chain{ID: id, links: links}, nil
}

// Links returns the chain's linked pairs in order.
func (c *Chain) Links() []*LinkedPair { return c.links }

// LinkCount returns the number of links.
func (c *Chain) LinkCount() int { return len(c.links) }

// Link returns the link at index i.
func (c *Chain) Link(i int) (*LinkedPair, error) {
	if i < 0 || i >= len(c.links) {
		return nil, fmt.Errorf("chain %d index %d of %d: %w", c.ID, i, len(c.links), ErrLinkOutOfRange)
	}
	return c.links[i], nil
}

// OpenBreakend returns the free breakend at the chain's start or end. It is
// nil when the terminal SV is a single breakend.
func (c *Chain) OpenBreakend(start bool) *Breakend {
	if start {
		return c.links[0].First().Other()
	}
	return c.links[len(c.links)-1].Second().Other()
}

// HasSV reports whether s takes part in the chain.
func (c *Chain) HasSV(s *SV) bool {
	for _, l := range c.links {
		if l.First().SV() == s || l.Second().SV() == s {
			return true
		}
	}
	return false
}

// slot returns the breakend's position along the chain, or -1 if it is not
// on it. The open start is slot 0, then the two breakends of each link, then
// the open end.
func (c *Chain) slot(b *Breakend) int {
	if b == nil {
		return -1
	}
	if c.OpenBreakend(true) == b {
		return 0
	}
	for i, l := range c.links {
		switch b {
		case l.First():
			return 2*i + 1
		case l.Second():
			return 2*i + 2
		}
	}
	if c.OpenBreakend(false) == b {
		return 2*len(c.links) + 1
	}
	return -1
}

// Path reports the number and total length of the links lying between two
// breakends of the chain. ok is false if either breakend is not on it.
func (c *Chain) Path(from, to *Breakend) (links int, length int64, ok bool) {
	a, b := c.slot(from), c.slot(to)
	if a < 0 || b < 0 {
		return 0, 0, false
	}
	if a > b {
		a, b = b, a
	}
	for i, l := range c.links {
		if 2*i+1 >= a && 2*i+2 <= b {
			links++
			length += l.Length()
		}
	}
	return links, length, true
}

// CursorFrom returns a cursor placed where b sits on the chain, heading away
// from b. Open ends sit just outside the chain.
func (c *Chain) CursorFrom(b *Breakend) (Cursor, bool) {
	if c.OpenBreakend(true) == b {
		return Cursor{chain: c, index: -1, up: true}, true
	}
	if c.OpenBreakend(false) == b {
		return Cursor{chain: c, index: len(c.links), up: false}, true
	}
	for i, l := range c.links {
		if l.Has(b) {
			return Cursor{chain: c, index: i, up: l.Second() == b}, true
		}
	}
	return Cursor{}, false
}

func (c *Chain) String() string {
	return fmt.Sprintf("chain %d (%d links)", c.ID, len(c.links))
}

// Step is the outcome of advancing a cursor.
type Step int

const (
	StepContinue Step = iota
	StepChainEnd
	StepGeneCrossed
)

func (s Step) String() string {
	switch s {
	case StepContinue:
		return "continue"
	case StepChainEnd:
		return "chain end"
	case StepGeneCrossed:
		return "gene crossed"
	}
	return "unknown"
}

// Cursor is a position on a chain together with a walking direction.
type Cursor struct {
	chain *Chain
	index int
	up    bool
}

// NewCursor creates a cursor at index heading up or down the chain.
func NewCursor(c *Chain, index int, up bool) Cursor {
	return Cursor{chain: c, index: index, up: up}
}

// Index returns the link index, which may be -1 or LinkCount at the open ends.
func (c Cursor) Index() int { return c.index }

// Up reports whether the cursor walks towards higher link indices.
func (c Cursor) Up() bool { return c.up }

// Advance moves one link along the walking direction.
func (c Cursor) Advance() (Cursor, Step) {
	next := c
	if c.up {
		next.index++
	} else {
		next.index--
	}
	if next.index < 0 || next.index >= len(c.chain.links) {
		return next, StepChainEnd
	}
	return next, StepContinue
}

// Link returns the link under the cursor.
func (c Cursor) Link() (*LinkedPair, error) {
	return c.chain.Link(c.index)
}

// Exit returns the breakend the walk continues from after crossing the link
// under the cursor: the far SV's other breakend, nil at a single breakend.
func (c Cursor) Exit() (*Breakend, error) {
	l, err := c.Link()
	if err != nil {
		return nil, err
	}
	if c.up {
		return l.Second().Other(), nil
	}
	return l.First().Other(), nil
}
