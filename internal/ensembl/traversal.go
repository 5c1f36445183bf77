package ensembl

// SpanCrossesSpliceAcceptor reports whether the region [lower, upper] on chrom
// covers a splice acceptor of any gene whose strand matches direction. A zero
// direction matches both strands.
//
// Rank-1 exons have no acceptor. When precodingUpstream is set, a non-coding
// exon lying entirely inside the span and before the coding region is skipped.
func (c *Cache) SpanCrossesSpliceAcceptor(chrom string, lower, upper int64, direction int8, precodingUpstream bool) bool {
	for _, g := range c.genes[chrom] {
		if lower > g.End {
			continue
		}
		if upper < g.Start {
			break
		}
		if direction != 0 && g.Strand != direction {
			continue
		}

		for _, t := range g.Transcripts {
			for i := range t.Exons {
				e := &t.Exons[i]
				if e.Number == 1 {
					continue
				}

				var crosses bool
				if g.Strand == 1 {
					crosses = lower <= e.Start && upper >= e.Start
				} else {
					crosses = lower <= e.End && upper >= e.End
				}
				if !crosses {
					continue
				}

				if precodingUpstream && lower <= e.Start && upper >= e.End {
					if g.Strand == 1 && (t.CDSStart == 0 || upper < t.CDSStart) {
						continue
					}
					if g.Strand == -1 && (t.CDSEnd == 0 || lower > t.CDSEnd) {
						continue
					}
				}

				return true
			}
		}
	}

	return false
}
