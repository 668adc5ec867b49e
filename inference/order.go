package inference

import (
	"strings"

	"github.com/cottand/jinfer/util"
)

// Node is a vertex of the resolution order graph: an inference variable, or a
// bound acting as a synchronization point
type Node struct {
	Var   InferenceVariable
	Bound Bound
}

func (n Node) IsVar() bool { return n.Bound == nil }

func (n Node) String() string {
	if n.IsVar() {
		return n.Var.String()
	}
	return "[" + n.Bound.String() + "]"
}

// Clique is a set of nodes that depend on each other and so must be resolved together
type Clique struct {
	Nodes []Node
}

// Vars are the inference variables of the clique, by index
func (c Clique) Vars() []InferenceVariable {
	var vars []InferenceVariable
	for _, n := range c.Nodes {
		if n.IsVar() {
			vars = append(vars, n.Var)
		}
	}
	return vars
}

func (c Clique) String() string {
	return "{" + strings.Join(util.Strings(c.Nodes), ", ") + "}"
}

// ResolutionOrder lists cliques so that every clique comes after the cliques
// it depends on
type ResolutionOrder struct {
	Cliques []Clique
}

func (o *ResolutionOrder) String() string {
	return strings.Join(util.Strings(o.Cliques), " -> ")
}

// ResolutionOrder computes the order in which the variables of b can be
// resolved (JLS 18.4). For a bound relating α to a type mentioning β, β is
// resolved no later than α, unless α is captured by a capture relation, in
// which case α goes first. Capture relations are nodes without edges.
func (b BoundSet) ResolutionOrder() *ResolutionOrder {
	g := newOrderGraph()
	for _, v := range b.variables() {
		g.node(Node{Var: v})
	}
	captured := newVarSet()
	for _, bound := range b.Bounds() {
		if cr, ok := bound.(*CaptureRelation); ok {
			addAll(captured, newVarSet(cr.Alphas...))
			g.node(Node{Bound: cr})
			for _, v := range cr.Mentioned().Slice() {
				g.node(Node{Var: v})
			}
		}
	}

	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok {
			continue
		}
		for _, side := range []struct{ self, other SyntheticType }{{sb.Left, sb.Right}, {sb.Right, sb.Left}} {
			alpha, ok := side.self.(InferenceVariable)
			if !ok {
				continue
			}
			for _, beta := range side.other.Mentioned().Slice() {
				if beta == alpha {
					continue
				}
				if captured.Contains(alpha) {
					g.edge(Node{Var: alpha}, Node{Var: beta})
				} else {
					g.edge(Node{Var: beta}, Node{Var: alpha})
				}
			}
		}
	}
	return g.order()
}

// orderGraph is an arena of nodes with union-find clique pointers
type orderGraph struct {
	nodes     []Node
	index     map[string]int
	parent    []int
	edges     []util.Pair[int, int]
	followers map[int][]int
	visited   []bool
	path      util.Stack[int]
}

func newOrderGraph() *orderGraph {
	return &orderGraph{index: make(map[string]int), followers: make(map[int][]int)}
}

func nodeKey(n Node) string {
	if n.IsVar() {
		return n.Var.key()
	}
	return "bound " + n.Bound.key()
}

func (g *orderGraph) node(n Node) int {
	k := nodeKey(n)
	if i, ok := g.index[k]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.parent = append(g.parent, i)
	g.index[k] = i
	return i
}

// edge records that from must be resolved no later than to
func (g *orderGraph) edge(from, to Node) {
	f, t := g.node(from), g.node(to)
	for _, existing := range g.followers[f] {
		if existing == t {
			return
		}
	}
	g.edges = append(g.edges, util.NewPair(f, t))
	g.followers[f] = append(g.followers[f], t)
}

func (g *orderGraph) find(i int) int {
	for g.parent[i] != i {
		g.parent[i] = g.parent[g.parent[i]]
		i = g.parent[i]
	}
	return i
}

// union merges two cliques, keeping the root with the smaller input position
func (g *orderGraph) union(a, b int) {
	ra, rb := g.find(a), g.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	g.parent[rb] = ra
}

// onPath returns the first position of the walk's path in the same clique as n, or -1
func (g *orderGraph) onPath(n int) int {
	root := g.find(n)
	for i, p := range g.path.Items() {
		if g.find(p) == root {
			return i
		}
	}
	return -1
}

func (g *orderGraph) walk(n int) {
	g.visited[n] = true
	g.path.Push(n)
	for _, f := range g.followers[n] {
		if i := g.onPath(f); i >= 0 {
			for _, p := range g.path.Items()[i:] {
				g.union(p, f)
			}
			continue
		}
		if !g.visited[f] {
			g.walk(f)
		}
	}
	g.path.Pop()
}

func (g *orderGraph) order() *ResolutionOrder {
	g.visited = make([]bool, len(g.nodes))
	for n := range g.nodes {
		if !g.visited[n] {
			g.walk(n)
		}
	}

	// cliques are identified by their root, which is their first node in input order
	members := make(map[int][]int)
	var roots []int
	for n := range g.nodes {
		r := g.find(n)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], n)
	}

	predecessors := make(map[int]map[int]bool)
	successors := make(map[int][]int)
	for _, e := range g.edges {
		from, to := g.find(e.Fst), g.find(e.Snd)
		if from == to {
			continue
		}
		if predecessors[to] == nil {
			predecessors[to] = make(map[int]bool)
		}
		if !predecessors[to][from] {
			predecessors[to][from] = true
			successors[from] = append(successors[from], to)
		}
	}

	result := &ResolutionOrder{}
	emitted := make(map[int]bool, len(roots))
	for len(result.Cliques) < len(roots) {
		next := -1
		for _, r := range roots {
			if !emitted[r] && len(predecessors[r]) == 0 {
				next = r
				break
			}
		}
		if next < 0 {
			// unreachable: every cycle was collapsed into a clique
			panic("cycle between cliques of the resolution order")
		}
		emitted[next] = true
		for _, s := range successors[next] {
			delete(predecessors[s], next)
		}
		clique := Clique{}
		for _, n := range members[next] {
			clique.Nodes = append(clique.Nodes, g.nodes[n])
		}
		result.Cliques = append(result.Cliques, clique)
	}
	return result
}
