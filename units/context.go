package units

// contextEdge is one directed transformation between dimensionality
// nodes. Forward edges multiply by the factor, inverse edges divide, so a
// round trip applies the exact inverse arithmetic.
type contextEdge struct {
	to     string
	factor float64
	invert bool
}

// Context bridges otherwise incompatible dimensionalities. Each context
// is a directed graph whose nodes are canonical dimensionality keys and
// whose edges carry multiplicative factors; a conversion follows the
// shortest chain of edges between the two dimensionalities.
type Context struct {
	name  string
	edges map[string][]contextEdge
}

func newContext(name string) *Context {
	return &Context{name: name, edges: make(map[string][]contextEdge)}
}

// Name returns the context name, e.g. "AR4GWP100".
func (c *Context) Name() string { return c.name }

// addPair registers the transformation from -> to and its inverse.
// Registering the same pair again replaces the factor.
func (c *Context) addPair(from, to Dimensionality, factor float64) {
	fromKey, toKey := from.Key(), to.Key()
	c.setEdge(fromKey, contextEdge{to: toKey, factor: factor})
	c.setEdge(toKey, contextEdge{to: fromKey, factor: factor, invert: true})
}

func (c *Context) setEdge(from string, edge contextEdge) {
	for i, old := range c.edges[from] {
		if old.to == edge.to {
			c.edges[from][i] = edge
			return
		}
	}
	c.edges[from] = append(c.edges[from], edge)
}

// merge folds the edges of other into c, replacing factors for pairs both
// know. Used when a later metric table extends an already known context.
func (c *Context) merge(other *Context) {
	for key, edges := range other.edges {
		for _, edge := range edges {
			c.setEdge(key, edge)
		}
	}
}

// transform converts a base-unit magnitude between dimensionalities via
// the shortest chain of registered transformations. The second return is
// false when no chain connects the two.
func (c *Context) transform(value float64, from, to Dimensionality) (float64, bool) {
	start, goal := from.Key(), to.Key()
	if start == goal {
		return value, true
	}

	prevEdge := make(map[string]contextEdge)
	prevNode := make(map[string]string)
	seen := map[string]bool{start: true}
	queue := []string{start}
	found := false
	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range c.edges[cur] {
			if seen[edge.to] {
				continue
			}
			seen[edge.to] = true
			prevEdge[edge.to] = edge
			prevNode[edge.to] = cur
			if edge.to == goal {
				found = true
				break
			}
			queue = append(queue, edge.to)
		}
	}
	if !found {
		return 0, false
	}

	// The factors commute, so walking the path backwards is fine.
	out := value
	for key := goal; key != start; key = prevNode[key] {
		edge := prevEdge[key]
		if edge.invert {
			out /= edge.factor
		} else {
			out *= edge.factor
		}
	}
	return out, true
}

// buildFixedContexts returns the chemistry contexts that exist
// independently of any metric table. CH4_conversions bridges methane and
// carbon via the 16/12 molar mass ratio, NOx_conversions bridges NOx and
// elemental nitrogen via (14+2*16)/14.
func buildFixedContexts() []*Context {
	ch4 := newContext("CH4_conversions")
	ch4.addPair(
		Dimensionality{"carbon": 1},
		Dimensionality{"methane": 1},
		16.0/12.0,
	)

	nox := newContext("NOx_conversions")
	nox.addPair(
		Dimensionality{"nitrogen": 1},
		Dimensionality{"NOx": 1},
		(14.0+2.0*16.0)/14.0,
	)

	return []*Context{ch4, nox}
}
