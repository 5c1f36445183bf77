package disruption

import (
	"strings"

	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

// Non-disruption reasons.
const (
	ReasonSimpleSV        = "SimpleSV"
	ReasonLINE            = "LINE"
	ReasonIntronicSection = "IntronicSection"
	ReasonSameIntron      = "SameIntronNoSPA"
)

type transcriptState struct {
	disruptive    bool
	undisruptedCN float64
}

// Resolved holds the disruption outcome of one sample run. Transcripts never
// seen by the run count as disruptive.
type Resolved struct {
	states     map[genes.TranscriptKey]*transcriptState
	reasons    map[genes.TranscriptKey]string
	excluded   []*genes.Transcript // transcripts with a reason, in registration order
	reportable []*genes.Transcript
	svs        map[int]*sv.SV
}

func newResolved(svs []*sv.SV) *Resolved {
	r := &Resolved{
		states:  make(map[genes.TranscriptKey]*transcriptState),
		reasons: make(map[genes.TranscriptKey]string),
		svs:     make(map[int]*sv.SV, len(svs)),
	}
	for _, s := range svs {
		r.svs[s.ID] = s
		for _, isStart := range []bool{true, false} {
			for _, g := range s.Genes(isStart) {
				for _, t := range g.Transcripts() {
					r.states[t.Key()] = &transcriptState{disruptive: true}
				}
			}
		}
	}
	return r
}

func (r *Resolved) state(t *genes.Transcript) *transcriptState {
	st, ok := r.states[t.Key()]
	if !ok {
		st = &transcriptState{disruptive: true}
		r.states[t.Key()] = st
	}
	return st
}

// IsDisruptive reports whether the SV disrupts t.
func (r *Resolved) IsDisruptive(t *genes.Transcript) bool {
	st, ok := r.states[t.Key()]
	return !ok || st.disruptive
}

// UndisruptedCopyNumber returns the copy number of t left intact at its breakend.
func (r *Resolved) UndisruptedCopyNumber(t *genes.Transcript) float64 {
	if st, ok := r.states[t.Key()]; ok {
		return st.undisruptedCN
	}
	return 0
}

// ExcludedReason returns the first recorded non-disruption reason for t.
func (r *Resolved) ExcludedReason(t *genes.Transcript) string {
	return r.reasons[t.Key()]
}

// Reportable returns the disrupted canonical transcripts of disruption genes.
func (r *Resolved) Reportable() []Record {
	records := make([]Record, 0, len(r.reportable))
	for _, t := range r.reportable {
		rec := r.record(t)
		rec.Reportable = true
		records = append(records, rec)
	}
	return records
}

// Excluded returns the canonical disruption-gene transcripts found not to be
// disrupted, except those on simple SVs.
func (r *Resolved) Excluded() []Record {
	var records []Record
	for _, t := range r.excluded {
		reason := r.reasons[t.Key()]
		if reason == ReasonSimpleSV {
			continue
		}
		rec := r.record(t)
		rec.ExcludedReason = reason
		if parts := strings.Split(reason, ";"); len(parts) == 2 {
			rec.ExcludedReason, rec.ExtraInfo = parts[0], parts[1]
		}
		records = append(records, rec)
	}
	return records
}

func (r *Resolved) record(t *genes.Transcript) Record {
	g := t.Gene()
	rec := Record{
		SvID:          g.SvID,
		IsStart:       g.IsStart,
		ClusterID:     -1,
		Chromosome:    g.Chromosome,
		Position:      g.Position,
		Orientation:   g.Orientation,
		GeneID:        g.GeneID,
		GeneName:      g.GeneName,
		Strand:        g.Strand,
		KaryotypeBand: g.KaryotypeBand,
		TransID:       t.TransID,
		ExonUp:        t.ExonUpstream,
		ExonDown:      t.ExonDownstream,
		CodingType:    t.CodingType(),
		RegionType:    t.RegionType(),
		UndisruptedCN: r.UndisruptedCopyNumber(t),
	}
	if s, ok := r.svs[g.SvID]; ok {
		rec.Type = s.Type
		rec.JCN = s.JCN
		if c := s.Cluster(); c != nil {
			rec.ClusterID = c.ID
		}
	}
	return rec
}

// Record is one disruption row.
type Record struct {
	SvID          int
	IsStart       bool
	Type          sv.Type
	ClusterID     int
	Chromosome    string
	Position      int64
	Orientation   int8
	GeneID        string
	GeneName      string
	Strand        int8
	KaryotypeBand string
	JCN           float64
	TransID       string
	ExonUp        int
	ExonDown      int
	CodingType    genes.CodingType
	RegionType    genes.RegionType
	UndisruptedCN float64

	Reportable     bool
	ExcludedReason string
	ExtraInfo      string
}
