// Package loader drives a target through an ordered list of candidate URLs
// until one of them loads.
//
// A Chain is the explicit iterator: it hands out candidates in order, skips
// URLs it has already handed out and reports exhaustion. Load runs a Chain
// against a Target and calls the exhaustion callback exactly once when every
// candidate failed:
//
//	res := loader.Load(ctx, img, resolver.TileCandidates(key), func(err error) {
//	    tile.MarkBroken()
//	}, loader.WithGate(stillCurrent))
//
// A gate is consulted before every attempt and before acting on every
// outcome. Once it closes, or ctx is done, Load stops without side effects
// and reports StatusAbandoned.
package loader
