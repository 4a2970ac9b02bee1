package resolver

import (
	"math"

	"github.com/shopspring/decimal"
)

// firstFound runs an iterative depth-first search over pack counts. sizes
// must be distinct and sorted largest first. The returned counts align with
// sizes; nil means no exact combination exists. exhausted reports that the
// step budget ran out before the search space was covered.
func firstFound(sizes []int, items, budget int) (counts []int, exhausted bool) {
	n := len(sizes)
	tail := suffixGCD(sizes)
	if items%tail[0] != 0 {
		return nil, false
	}

	counts = make([]int, n)
	remaining := items
	level := 0
	counts[0] = remaining / sizes[0]
	remaining -= counts[0] * sizes[0]

	for steps := 0; ; steps++ {
		if steps >= budget {
			return nil, true
		}
		if remaining == 0 {
			return counts, false
		}

		// Descend only while the smaller sizes can still add up to the remainder.
		if level < n-1 && remaining%tail[level+1] == 0 {
			level++
			counts[level] = remaining / sizes[level]
			remaining -= counts[level] * sizes[level]
			continue
		}

		for {
			if level < 0 {
				return nil, false
			}
			if level == n-1 {
				remaining += counts[level] * sizes[level]
				counts[level] = 0
				level--
				continue
			}
			if counts[level] > 0 {
				counts[level]--
				remaining += sizes[level]
				break
			}
			level--
		}
	}
}

// fewestPacks finds the exact combination with the fewest packs, preferring
// the cheaper one on ties. options must be sorted largest first.
func fewestPacks(options []PackOption, items int) []int {
	sizes := make([]int, len(options))
	for i, opt := range options {
		sizes[i] = opt.Size
	}
	if items%suffixGCD(sizes)[0] != 0 {
		return nil
	}

	if prices, ok := minorUnits(options, items); ok {
		return fewestPacksBy(sizes, prices, items,
			func(a, b int64) int64 { return a + b },
			func(a, b int64) bool { return a < b },
		)
	}

	prices := make([]decimal.Decimal, len(options))
	for i, opt := range options {
		prices[i] = opt.UnitPrice
	}
	return fewestPacksBy(sizes, prices, items,
		func(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) },
		func(a, b decimal.Decimal) bool { return a.LessThan(b) },
	)
}

// fewestPacksBy is the dynamic program behind fewestPacks, generic over the
// cost representation so exact integer costs stay on the fast path.
func fewestPacksBy[C any](sizes []int, prices []C, items int, add func(a, b C) C, less func(a, b C) bool) []int {
	// packs[a] < 0 marks amount a as unreachable.
	packs := make([]int32, items+1)
	cost := make([]C, items+1)
	choice := make([]int32, items+1)
	for a := 1; a <= items; a++ {
		packs[a] = -1
		choice[a] = -1
	}

	for amount := 1; amount <= items; amount++ {
		for i, size := range sizes {
			if size > amount {
				continue
			}
			prev := amount - size
			if packs[prev] < 0 {
				continue
			}
			p := packs[prev] + 1
			c := add(cost[prev], prices[i])
			if packs[amount] < 0 || p < packs[amount] || (p == packs[amount] && less(c, cost[amount])) {
				packs[amount] = p
				cost[amount] = c
				choice[amount] = int32(i)
			}
		}
	}

	if packs[items] < 0 {
		return nil
	}

	counts := make([]int, len(sizes))
	for remaining := items; remaining > 0; {
		i := choice[remaining]
		if i < 0 {
			return nil
		}
		counts[i]++
		remaining -= sizes[i]
	}
	return counts
}

// minorUnits scales every price by the same power of ten so that all of them
// become exact integers. ok is false when a total of up to items packs could
// overflow int64 at that scale.
func minorUnits(options []PackOption, items int) (prices []int64, ok bool) {
	var shift int32
	for _, opt := range options {
		if exp := opt.UnitPrice.Exponent(); -exp > shift {
			shift = -exp
		}
	}
	limit := decimal.NewFromInt(math.MaxInt64 / int64(max(items, 1)))
	prices = make([]int64, len(options))
	for i, opt := range options {
		scaled := opt.UnitPrice.Shift(shift)
		if scaled.GreaterThan(limit) {
			return nil, false
		}
		prices[i] = scaled.IntPart()
	}
	return prices, true
}

// suffixGCD returns g where g[i] is the gcd of sizes[i:].
func suffixGCD(sizes []int) []int {
	g := make([]int, len(sizes))
	acc := 0
	for i := len(sizes) - 1; i >= 0; i-- {
		acc = gcd(acc, sizes[i])
		g[i] = acc
	}
	return g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
