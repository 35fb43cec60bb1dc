package protocol

import "github.com/johannesneyer/lightning/common"

// Channels holds the per-node channel assignments. Public is a globally
// fixed default; Parent, Children and ParentsParentChannel are nil until
// the node has joined (a sink gets Children when it resets, and never
// gets Parent or ParentsParentChannel).
type Channels struct {
	Public                Channel
	Parent                *Channel
	Children              *Channel
	ParentsParentChannel  *Channel
}

// NewChannels returns the channel set a freshly-reset node starts with:
// only the public channel assigned.
func NewChannels() Channels {
	return Channels{Public: common.PublicChannel}
}

// SetRandomChildrenChannel draws a children channel uniformly at random
// from the channels not equal to Public, Parent or ParentsParentChannel.
// Per spec §9, rand.Uint64() mod k over the filtered set is slightly
// biased; with NumChannels == 8 the impact is judged negligible and the
// source this is ported from does not attempt to de-bias it either.
func (c *Channels) SetRandomChildrenChannel(rng Rand) {
	excluded := map[Channel]bool{c.Public: true}
	if c.Parent != nil {
		excluded[*c.Parent] = true
	}
	if c.ParentsParentChannel != nil {
		excluded[*c.ParentsParentChannel] = true
	}

	candidates := make([]Channel, 0, common.NumChannels)
	for ch := Channel(0); int(ch) < common.NumChannels; ch++ {
		if !excluded[ch] {
			candidates = append(candidates, ch)
		}
	}

	if len(candidates) == 0 {
		// Every channel excluded would mean NumChannels <= 3, which never
		// happens with the compiled-in constant; fall back to the public
		// channel rather than panic on an impossible configuration.
		ch := c.Public
		c.Children = &ch
		return
	}

	idx := rng.Uint64() % uint64(len(candidates))
	chosen := candidates[idx]
	c.Children = &chosen
}
