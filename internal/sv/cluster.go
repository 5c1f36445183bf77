package sv

// Cluster groups SVs considered to arise from one event.
type Cluster struct {
	ID           int
	ResolvedType string // e.g. LINE, SIMPLE_GRP, DEL, COMPLEX
	SVs          []*SV
	Chains       []*Chain
}

// ResolvedTypeLINE marks clusters of LINE insertions.
const ResolvedTypeLINE = "LINE"

// NewCluster creates a cluster and sets the SVs' back references.
func NewCluster(id int, resolvedType string, svs []*SV, chains []*Chain) *Cluster {
	c := &Cluster{ID: id, ResolvedType: resolvedType, SVs: svs, Chains: chains}
	for _, s := range svs {
		s.cluster = c
	}
	return c
}

// SVCount returns the number of SVs in the cluster.
func (c *Cluster) SVCount() int { return len(c.SVs) }

// FindChain returns the first chain containing s, or nil.
func (c *Cluster) FindChain(s *SV) *Chain {
	for _, ch := range c.Chains {
		if ch.HasSV(s) {
			return ch
		}
	}
	return nil
}

// ChainsWith returns every chain containing s.
func (c *Cluster) ChainsWith(s *SV) []*Chain {
	var chains []*Chain
	for _, ch := range c.Chains {
		if ch.HasSV(s) {
			chains = append(chains, ch)
		}
	}
	return chains
}

// Sample is the SV graph of one sample.
type Sample struct {
	ID       string
	SVs      []*SV
	Clusters []*Cluster
}
