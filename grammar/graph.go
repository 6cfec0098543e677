package grammar

// directedGraph is a graph over non-terminal keys. It orders non-terminals so
// that every arc points to a vertex that comes earlier.
type directedGraph struct {
	arcs     map[NonterminalKey][]NonterminalKey
	vertices []NonterminalKey
	known    map[NonterminalKey]struct{}
}

func newDirectedGraph() *directedGraph {
	return &directedGraph{
		arcs:  map[NonterminalKey][]NonterminalKey{},
		known: map[NonterminalKey]struct{}{},
	}
}

func (g *directedGraph) addVertex(v NonterminalKey) {
	if _, ok := g.known[v]; ok {
		return
	}
	g.known[v] = struct{}{}
	g.vertices = append(g.vertices, v)
}

func (g *directedGraph) add(s, t NonterminalKey) {
	g.addVertex(s)
	g.addVertex(t)
	for _, u := range g.arcs[s] {
		if u == t {
			return
		}
	}
	g.arcs[s] = append(g.arcs[s], t)
}

// reachable returns the vertices reachable from s by one or more arcs.
func (g *directedGraph) reachable(s NonterminalKey) []NonterminalKey {
	visited := map[NonterminalKey]bool{}
	var order []NonterminalKey
	var dfs func(v NonterminalKey)
	dfs = func(v NonterminalKey) {
		for _, u := range g.arcs[v] {
			if visited[u] {
				continue
			}
			visited[u] = true
			order = append(order, u)
			dfs(u)
		}
	}
	dfs(s)
	return order
}

const (
	colorWhite = iota
	colorGray
	colorBlack
)

// topologicalOrder returns the vertices in post-order, so the successors of a
// vertex precede it. When the graph has a cycle, it returns the vertices on
// the cycle instead.
func (g *directedGraph) topologicalOrder() ([]NonterminalKey, []NonterminalKey) {
	color := map[NonterminalKey]int{}
	var order []NonterminalKey
	var stack []NonterminalKey
	var cycle []NonterminalKey
	var dfs func(v NonterminalKey) bool
	dfs = func(v NonterminalKey) bool {
		color[v] = colorGray
		stack = append(stack, v)
		for _, u := range g.arcs[v] {
			switch color[u] {
			case colorGray:
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append(cycle, stack[i])
					if stack[i] == u {
						break
					}
				}
				return false
			case colorWhite:
				if !dfs(u) {
					return false
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[v] = colorBlack
		order = append(order, v)
		return true
	}
	for _, v := range g.vertices {
		if color[v] != colorWhite {
			continue
		}
		if !dfs(v) {
			return nil, cycle
		}
	}
	return order, nil
}
