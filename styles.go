package md2docx

import "github.com/jinde/go-md2docx/internal/config"

// styleResolver maps block semantics to configured style values. Both
// backends consult the same resolver so their documents agree on sizes,
// page breaks and numbering.
type styleResolver struct {
	cfg *config.Config
}

// headingSize returns the point size for a heading level, falling back to
// the smallest configured size for levels past the configured array.
func (r styleResolver) headingSize(level int) float64 {
	sizes := r.cfg.Fonts.Heading.Sizes
	if level < 1 {
		level = 1
	}
	if level > len(sizes) {
		return sizes[len(sizes)-1]
	}
	return sizes[level-1]
}

// pageBreakBefore reports whether a heading forces a page break. The first
// block of the document never does, to avoid a blank leading page.
func (r styleResolver) pageBreakBefore(level int, firstBlock bool) bool {
	return level <= r.cfg.Fonts.Heading.PageBreakLevel && !firstBlock
}

// headingRule reports whether a heading gets a bottom rule (H1 and H2).
func (r styleResolver) headingRule(level int) bool {
	return level <= 2
}

// listRun tracks consecutive list items so renderers can number ordered
// runs. Any break in strictly consecutive same-type, same-indent list items
// restarts numbering; a non-list block ends the run entirely.
type listRun struct {
	active  bool
	ordered bool
	indent  int
	next    int
	serial  int // increments whenever a new ordered run starts
}

// observe advances the tracker with the next list item and returns its
// ordinal: 1-based position for ordered items, 0 for bullets.
func (lr *listRun) observe(item ListItem) int {
	if !lr.active || lr.ordered != item.Ordered || lr.indent != item.Indent {
		lr.active = true
		lr.ordered = item.Ordered
		lr.indent = item.Indent
		lr.next = 1
		if item.Ordered {
			lr.serial++
		}
	}
	if !item.Ordered {
		return 0
	}
	n := lr.next
	lr.next++
	return n
}

// interrupt ends the current run; the next ordered item restarts at 1.
func (lr *listRun) interrupt() {
	lr.active = false
}

// runSerial identifies the current ordered run. DOCX numbering instances
// are allocated one per serial so numbering restarts exactly at run
// boundaries.
func (lr *listRun) runSerial() int {
	return lr.serial
}
