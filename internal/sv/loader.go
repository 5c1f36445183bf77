package sv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

type sampleJSON struct {
	SampleID string        `json:"sampleId"`
	SVs      []svJSON      `json:"svs"`
	DBLinks  []pairJSON    `json:"dbLinks"`
	Clusters []clusterJSON `json:"clusters"`
}

type svJSON struct {
	ID          int           `json:"id"`
	Type        string        `json:"type"`
	JCN         float64       `json:"jcn"`
	InferredSGL bool          `json:"inferredSgl"`
	Start       breakendJSON  `json:"start"`
	End         *breakendJSON `json:"end"`
}

type breakendJSON struct {
	Chromosome        string  `json:"chromosome"`
	Position          int64   `json:"position"`
	Orientation       int8    `json:"orientation"`
	CopyNumberLowSide float64 `json:"copyNumberLowSide"`
}

type breakendRef struct {
	SvID    int  `json:"svId"`
	IsStart bool `json:"isStart"`
}

type pairJSON struct {
	First    breakendRef `json:"first"`
	Second   breakendRef `json:"second"`
	Inferred bool        `json:"inferred"`
}

type chainJSON struct {
	ID    int        `json:"id"`
	Links []pairJSON `json:"links"`
}

type clusterJSON struct {
	ID           int         `json:"id"`
	ResolvedType string      `json:"resolvedType"`
	SvIDs        []int       `json:"svIds"`
	Chains       []chainJSON `json:"chains"`
}

// LoadSample reads a sample graph from a JSON file, gzipped when the path
// ends in .gz.
func LoadSample(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	s, err := ReadSample(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}

// ReadSample decodes a sample graph. SVs not assigned to any cluster are
// placed in singleton clusters typed after the SV.
func ReadSample(r io.Reader) (*Sample, error) {
	var doc sampleJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sample: %w", err)
	}

	sample := &Sample{ID: doc.SampleID}
	byID := make(map[int]*SV, len(doc.SVs))
	for _, v := range doc.SVs {
		t, err := ParseType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("sv %d: %w", v.ID, err)
		}
		if _, dup := byID[v.ID]; dup {
			return nil, fmt.Errorf("sv %d defined twice", v.ID)
		}

		start := NewBreakend(v.Start.Chromosome, v.Start.Position, v.Start.Orientation, v.Start.CopyNumberLowSide)
		var end *Breakend
		if v.End != nil {
			end = NewBreakend(v.End.Chromosome, v.End.Position, v.End.Orientation, v.End.CopyNumberLowSide)
		}
		s := New(v.ID, t, v.JCN, start, end)
		s.InferredSGL = v.InferredSGL
		byID[v.ID] = s
		sample.SVs = append(sample.SVs, s)
	}

	resolve := func(ref breakendRef) (*Breakend, error) {
		s, ok := byID[ref.SvID]
		if !ok {
			return nil, fmt.Errorf("sv %d: %w", ref.SvID, ErrUnknownSV)
		}
		b := s.Breakend(ref.IsStart)
		if b == nil {
			return nil, fmt.Errorf("sv %d has no end breakend: %w", ref.SvID, ErrUnknownSV)
		}
		return b, nil
	}

	for _, p := range doc.DBLinks {
		a, err := resolve(p.First)
		if err != nil {
			return nil, fmt.Errorf("db link: %w", err)
		}
		b, err := resolve(p.Second)
		if err != nil {
			return nil, fmt.Errorf("db link: %w", err)
		}
		NewDBPair(a, b)
	}

	clustered := make(map[int]bool)
	for _, cj := range doc.Clusters {
		svs := make([]*SV, 0, len(cj.SvIDs))
		for _, id := range cj.SvIDs {
			s, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("cluster %d: sv %d: %w", cj.ID, id, ErrUnknownSV)
			}
			clustered[id] = true
			svs = append(svs, s)
		}

		chains := make([]*Chain, 0, len(cj.Chains))
		for _, chj := range cj.Chains {
			links := make([]*LinkedPair, 0, len(chj.Links))
			for _, lj := range chj.Links {
				first, err := resolve(lj.First)
				if err != nil {
					return nil, fmt.Errorf("cluster %d chain %d: %w", cj.ID, chj.ID, err)
				}
				second, err := resolve(lj.Second)
				if err != nil {
					return nil, fmt.Errorf("cluster %d chain %d: %w", cj.ID, chj.ID, err)
				}
				if err := checkLink(first, second); err != nil {
					return nil, fmt.Errorf("cluster %d chain %d: %w", cj.ID, chj.ID, err)
				}
				links = append(links, NewLinkedPair(first, second, lj.Inferred))
			}
			ch, err := NewChain(chj.ID, links)
			if err != nil {
				return nil, fmt.Errorf("cluster %d: %w", cj.ID, err)
			}
			chains = append(chains, ch)
		}

		sample.Clusters = append(sample.Clusters, NewCluster(cj.ID, cj.ResolvedType, svs, chains))
	}

	nextID := 0
	for _, c := range sample.Clusters {
		nextID = max(nextID, c.ID+1)
	}
	for _, s := range sample.SVs {
		if clustered[s.ID] {
			continue
		}
		sample.Clusters = append(sample.Clusters, NewCluster(nextID, string(s.Type), []*SV{s}, nil))
		nextID++
	}

	return sample, nil
}

// checkLink rejects links that cannot form a templated insertion: both ends
// of one SV, or breakends on different chromosomes.
func checkLink(first, second *Breakend) error {
	if first.SV() == second.SV() {
		return fmt.Errorf("link %s-%s joins one sv: %w", first, second, ErrChainBroken)
	}
	if first.Chromosome != second.Chromosome {
		return fmt.Errorf("link %s-%s spans chromosomes: %w", first, second, ErrChainBroken)
	}
	return nil
}
