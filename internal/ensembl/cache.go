package ensembl

import (
	"sort"
	"sync"
)

// Cache holds reference genes and transcripts indexed by chromosome.
// It is filled by a loader and then shared read-only between sample runs.
type Cache struct {
	// genes stores genes per chromosome, sorted by start position
	genes  map[string][]*Gene
	byID   map[string]*Gene
	byName map[string]*Gene

	mu    sync.Mutex
	trees map[int64]map[string]*IntervalTree // padding -> chrom -> tree
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		genes:  make(map[string][]*Gene),
		byID:   make(map[string]*Gene),
		byName: make(map[string]*Gene),
		trees:  make(map[int64]map[string]*IntervalTree),
	}
}

// AddGene adds a gene to the cache, keeping its chromosome list sorted.
// Genes whose ID is already cached are ignored.
func (c *Cache) AddGene(g *Gene) {
	if _, ok := c.byID[g.ID]; ok {
		return
	}
	c.byID[g.ID] = g
	if g.Name != "" {
		c.byName[g.Name] = g
	}

	list := c.genes[g.Chrom]
	idx := sort.Search(len(list), func(i int) bool { return list[i].Start > g.Start })
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = g
	c.genes[g.Chrom] = list

	c.invalidate()
}

// AddTranscript attaches a transcript to its gene, creating the gene from the
// transcript's fields when it is not yet known. Gene bounds grow to cover the
// transcript.
func (c *Cache) AddTranscript(t *Transcript) {
	g, ok := c.byID[t.GeneID]
	if !ok {
		g = &Gene{
			ID:     t.GeneID,
			Name:   t.GeneName,
			Chrom:  t.Chrom,
			Start:  t.Start,
			End:    t.End,
			Strand: t.Strand,
		}
		g.Transcripts = append(g.Transcripts, t)
		c.AddGene(g)
		return
	}

	g.Transcripts = append(g.Transcripts, t)
	if t.End > g.End {
		g.End = t.End
	}
	if t.Start < g.Start {
		g.Start = t.Start
		c.resort(g.Chrom)
	}
	c.invalidate()
}

func (c *Cache) resort(chrom string) {
	list := c.genes[chrom]
	sort.SliceStable(list, func(i, j int) bool { return list[i].Start < list[j].Start })
}

func (c *Cache) invalidate() {
	c.mu.Lock()
	c.trees = make(map[int64]map[string]*IntervalTree)
	c.mu.Unlock()
}

// GeneByID returns a gene by stable ID, or nil if not found.
func (c *Cache) GeneByID(id string) *Gene {
	return c.byID[id]
}

// GeneByName returns a gene by symbol, or nil if not found.
func (c *Cache) GeneByName(name string) *Gene {
	return c.byName[name]
}

// Genes returns the genes of a chromosome sorted by start position.
func (c *Cache) Genes(chrom string) []*Gene {
	return c.genes[chrom]
}

// FindGenes returns genes whose span, extended upstream by preGeneDistance,
// contains pos.
func (c *Cache) FindGenes(chrom string, pos int64, preGeneDistance int64) []*Gene {
	tree := c.tree(chrom, preGeneDistance)
	if tree == nil {
		return nil
	}
	found := tree.FindOverlaps(pos)
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

func (c *Cache) tree(chrom string, padding int64) *IntervalTree {
	c.mu.Lock()
	defer c.mu.Unlock()

	byChrom, ok := c.trees[padding]
	if !ok {
		byChrom = make(map[string]*IntervalTree)
		c.trees[padding] = byChrom
	}
	if t, ok := byChrom[chrom]; ok {
		return t
	}
	genes, ok := c.genes[chrom]
	if !ok {
		return nil
	}
	t := BuildIntervalTree(genes, padding)
	byChrom[chrom] = t
	return t
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, g := range c.byID {
		count += len(g.Transcripts)
	}
	return count
}

// GeneCount returns the number of genes in the cache.
func (c *Cache) GeneCount() int {
	return len(c.byID)
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.genes))
	for chrom := range c.genes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}
