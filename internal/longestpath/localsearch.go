package longestpath

// LocalSearch applies the single one-slot change that increases the path
// length the most. Candidates are every other start node and every neighbor
// swap on a node of the current path, the only slots that steer the walk.
func (c *PathChromosome) LocalSearch() bool {
	current := c.PathLength()
	best := current
	bestSlot, bestValue := -1, 0

	try := func(slot, value int) {
		old := c.prefs[slot]
		c.prefs[slot] = value
		if l := c.PathLength(); l > best {
			best, bestSlot, bestValue = l, slot, value
		}
		c.prefs[slot] = old
	}

	for v := 1; v <= c.graph.NodeCount(); v++ {
		if v != c.prefs[0] {
			try(0, v)
		}
	}
	for _, node := range c.Path().Nodes {
		for _, nb := range c.graph.NeighborList(node) {
			if nb != c.prefs[node] {
				try(node, nb)
			}
		}
	}

	if bestSlot < 0 {
		return false
	}
	c.prefs[bestSlot] = bestValue
	return true
}
