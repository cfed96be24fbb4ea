package stream

import (
	"sort"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Ladder lists the variants of a stream, widest first.
type Ladder []ResolutionOption

func (l Ladder) less(i, j int) bool {
	if l[i].Width != l[j].Width {
		return l[i].Width > l[j].Width
	}
	return l[i].Bitrate > l[j].Bitrate
}

// Sort orders the ladder by width descending, higher bitrate first on ties.
func (l Ladder) Sort() {
	sort.SliceStable(l, l.less)
}

// IsSorted reports whether the ladder is in Sort order.
func (l Ladder) IsSorted() bool {
	return sort.SliceIsSorted(l, l.less)
}

// Index returns the position of the option with the given URL, or -1.
func (l Ladder) Index(url string) int {
	_, index, ok := lo.FindIndexOf(l, func(o ResolutionOption) bool {
		return o.URL == url
	})
	if !ok {
		return -1
	}
	return index
}

// Top returns the widest option.
func (l Ladder) Top() mo.Option[ResolutionOption] {
	if len(l) == 0 {
		return mo.None[ResolutionOption]()
	}
	return mo.Some(l[0])
}

// bitrateTolerance keeps a stream that is just below a rung from being ranked one rung lower.
const bitrateTolerance = 1_200_000

// Rung ranks a measured bitrate against the ladder: 0 at the top rung, 1 below the
// first, 2 below the second and 3 below the third. A ladder of n options never ranks below n-1.
func (l Ladder) Rung(bitrate float64) int {
	for i := lo.Min([]int{len(l) - 1, 3}); i > 0; i-- {
		if bitrate < float64(l[i-1].Bitrate-bitrateTolerance) {
			return i
		}
	}
	return 0
}
