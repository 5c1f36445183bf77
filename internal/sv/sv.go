// Package sv models structural variants, their breakends and the linked
// pairs and chains assembled from them.
package sv

import (
	"fmt"

	"github.com/inodb/vibe-linx/internal/genes"
)

// Type is the structural variant type.
type Type string

const (
	DEL Type = "DEL"
	DUP Type = "DUP"
	INV Type = "INV"
	BND Type = "BND"
	INS Type = "INS"
	SGL Type = "SGL"
	INF Type = "INF"
)

// ParseType parses an SV type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case DEL, DUP, INV, BND, INS, SGL, INF:
		return t, nil
	}
	return "", fmt.Errorf("unknown SV type %q", s)
}

// SV is a structural variant with one (SGL, INF) or two breakends.
type SV struct {
	ID          int
	Type        Type
	JCN         float64 // Junction copy number
	InferredSGL bool

	start   *Breakend
	end     *Breakend // nil for single breakends
	cluster *Cluster
}

// New creates an SV and takes ownership of its breakends. end may be nil.
func New(id int, t Type, jcn float64, start, end *Breakend) *SV {
	s := &SV{ID: id, Type: t, JCN: jcn, start: start, end: end}
	start.sv, start.isStart = s, true
	if end != nil {
		end.sv, end.isStart = s, false
	}
	return s
}

// Start returns the lower breakend.
func (s *SV) Start() *Breakend { return s.start }

// End returns the upper breakend, or nil for a single breakend.
func (s *SV) End() *Breakend { return s.end }

// Breakend returns the start or end breakend.
func (s *SV) Breakend(isStart bool) *Breakend {
	if isStart {
		return s.start
	}
	return s.end
}

// Genes returns the gene annotations of one side.
func (s *SV) Genes(isStart bool) []*genes.GeneAnnotation {
	b := s.Breakend(isStart)
	if b == nil {
		return nil
	}
	return b.genes
}

// Cluster returns the cluster the SV belongs to.
func (s *SV) Cluster() *Cluster { return s.cluster }

// IsSGL reports whether the SV has no end breakend.
func (s *SV) IsSGL() bool { return s.end == nil }

// IsSimpleType reports whether the SV is a DEL, DUP or INS.
func (s *SV) IsSimpleType() bool {
	return s.Type == DEL || s.Type == DUP || s.Type == INS
}

func (s *SV) String() string {
	if s.end == nil {
		return fmt.Sprintf("%d:%s %s", s.ID, s.Type, s.start)
	}
	return fmt.Sprintf("%d:%s %s-%s", s.ID, s.Type, s.start, s.end)
}
