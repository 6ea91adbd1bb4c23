package model

import (
	"math"
	"math/rand"
	"slices"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
)

// parallelSplitMin is the node size from which candidate features are
// searched concurrently.
const parallelSplitMin = 512

// maxCategories bounds the distinct integer-like values for which
// equality splits are tried.
const maxCategories = 30

// ---------------------------
// Types
// ---------------------------

// dtNode holds a node in the tree.
type dtNode struct {
	// internal node fields
	isLeaf    bool
	feature   int
	threshold float64 // numeric threshold: x <= threshold => left
	isCat     bool    // true if this split is a categorical equality split (x == threshold)
	nanLeft   bool    // where rows with a NaN in feature go
	left      *dtNode
	right     *dtNode

	// leaf data
	n     int
	value []float64 // class probabilities (classification) or {mean} (regression)
}

// cart is the CART builder shared by DecisionTreeClassifier and
// DecisionTreeRegressor. nClasses == 0 selects regression.
type cart struct {
	Params

	nClasses    int
	nFeatures   int
	root        *dtNode
	importances []float64
}

// splitResult is the best split found for a single feature.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	isCat     bool
	nanLeft   bool
}

// pair is a feature value and its row index.
type pair struct {
	v float64
	i int
}

// ---------------------------
// Split statistics
// ---------------------------

// acc accumulates the targets on one side of a split: class counts for
// classification, sum and sum of squares for regression.
type acc struct {
	n      float64
	counts []float64
	sum    float64
	sumSq  float64
}

func (c *cart) newAcc() acc {
	if c.nClasses > 0 {
		return acc{counts: make([]float64, c.nClasses)}
	}
	return acc{}
}

func (a *acc) add(y float64) {
	a.n++
	if a.counts != nil {
		a.counts[int(y)]++
		return
	}
	a.sum += y
	a.sumSq += y * y
}

func (a *acc) remove(y float64) {
	a.n--
	if a.counts != nil {
		a.counts[int(y)]--
		return
	}
	a.sum -= y
	a.sumSq -= y * y
}

// combine returns a+sign*b.
func (a acc) combine(b acc, sign float64) acc {
	out := acc{n: a.n + sign*b.n, sum: a.sum + sign*b.sum, sumSq: a.sumSq + sign*b.sumSq}
	if a.counts != nil {
		out.counts = make([]float64, len(a.counts))
		for k := range a.counts {
			out.counts[k] = a.counts[k] + sign*b.counts[k]
		}
	}
	return out
}

func (c *cart) impurity(a acc) float64 {
	if a.n <= 0 {
		return 0
	}
	if a.counts == nil {
		m := a.sum / a.n
		return math.Max(0, a.sumSq/a.n-m*m)
	}
	res := 0.0
	if c.Criterion == "entropy" {
		for _, cnt := range a.counts {
			if cnt <= 0 {
				continue
			}
			p := cnt / a.n
			res -= p * math.Log2(p)
		}
		return res
	}
	for _, cnt := range a.counts {
		p := cnt / a.n
		res += p * (1 - p)
	}
	return res
}

func (c *cart) pure(a acc) bool {
	if a.counts == nil {
		return c.impurity(a) <= 1e-12
	}
	nonZero := 0
	for _, cnt := range a.counts {
		if cnt > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func (a acc) leafValue() []float64 {
	if a.counts == nil {
		if a.n == 0 {
			return []float64{0}
		}
		return []float64{a.sum / a.n}
	}
	p := make([]float64, len(a.counts))
	if a.n == 0 {
		return p
	}
	for k, cnt := range a.counts {
		p[k] = cnt / a.n
	}
	return p
}

// ---------------------------
// Building
// ---------------------------

func checkXY(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return eris.New("dtree: empty X")
	}
	if len(y) != len(X) {
		return eris.New("dtree: X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return eris.New("dtree: inconsistent number of features in X rows")
		}
	}
	return nil
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// fit grows the tree on the rows listed in idx (duplicates allowed, as in a
// bootstrap sample). For classification y holds class indices.
func (c *cart) fit(X [][]float64, y []float64, idx []int) {
	c.nFeatures = len(X[0])
	c.importances = make([]float64, c.nFeatures)
	rnd := rand.New(rand.NewSource(c.RandomState))
	c.root = c.buildNode(X, y, idx, 0, float64(len(idx)), rnd)

	total := 0.0
	for _, v := range c.importances {
		total += v
	}
	if total > 0 {
		for j := range c.importances {
			c.importances[j] /= total
		}
	}
}

func (c *cart) buildNode(X [][]float64, y []float64, idx []int, depth int, total float64, rnd *rand.Rand) *dtNode {
	all := c.newAcc()
	for _, i := range idx {
		all.add(y[i])
	}
	node := &dtNode{n: len(idx), value: all.leafValue(), isLeaf: true}

	// make leaf if pure or too few samples or depth reached
	if c.pure(all) || len(idx) < max(2, c.MinSamplesSplit) {
		return node
	}
	if c.MaxDepth > 0 && depth >= c.MaxDepth {
		return node
	}

	feats := c.candidateFeatures(rnd)
	parent := c.impurity(all)
	results := make([]splitResult, len(feats))

	if len(idx) >= parallelSplitMin && len(feats) > 1 {
		var wg sync.WaitGroup
		for k, f := range feats {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[k] = c.findBestSplitForFeature(X, y, idx, f, all, parent)
			}()
		}
		wg.Wait()
	} else {
		for k, f := range feats {
			results[k] = c.findBestSplitForFeature(X, y, idx, f, all, parent)
		}
	}

	// Strictly greater: ties keep the earliest candidate, so the tree does
	// not depend on goroutine completion order.
	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	if best.feature == -1 || best.gain <= c.MinImpurityDecrease {
		return node
	}

	c.importances[best.feature] += float64(len(idx)) / total * best.gain

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, i := range idx {
		if goesLeft(X[i][best.feature], best.threshold, best.isCat, best.nanLeft) {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	node.isLeaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.isCat = best.isCat
	node.nanLeft = best.nanLeft
	node.left = c.buildNode(X, y, leftIdx, depth+1, total, rnd)
	node.right = c.buildNode(X, y, rightIdx, depth+1, total, rnd)
	return node
}

// candidateFeatures returns every feature, or a random subset of MaxFeatures.
func (c *cart) candidateFeatures(rnd *rand.Rand) []int {
	p := c.nFeatures
	feats := allRows(p)
	if c.MaxFeatures > 0 && c.MaxFeatures < p {
		for i := 0; i < c.MaxFeatures; i++ {
			j := i + rnd.Intn(p-i)
			feats[i], feats[j] = feats[j], feats[i]
		}
		feats = feats[:c.MaxFeatures]
		slices.Sort(feats)
	}
	return feats
}

// findBestSplitForFeature scans one feature with running statistics: a
// sorted sweep for threshold splits plus equality splits when the feature
// holds a small set of integer codes. Rows with NaN are tried on both sides.
func (c *cart) findBestSplitForFeature(X [][]float64, y []float64, idx []int, f int, all acc, parentImpurity float64) splitResult {
	result := splitResult{feature: -1}

	valid := make([]pair, 0, len(idx))
	for _, i := range idx {
		if v := X[i][f]; !math.IsNaN(v) {
			valid = append(valid, pair{v, i})
		}
	}
	if len(valid) < 2 {
		return result
	}
	sort.Slice(valid, func(a, b int) bool {
		if valid[a].v != valid[b].v {
			return valid[a].v < valid[b].v
		}
		return valid[a].i < valid[b].i
	})

	validAcc := c.newAcc()
	for _, p := range valid {
		validAcc.add(y[p.i])
	}
	nanAcc := all.combine(validAcc, -1)
	n := float64(len(idx))
	minLeaf := float64(max(1, c.MinSamplesLeaf))

	consider := func(left, right acc, thr float64, isCat bool) {
		placements := []bool{left.n >= right.n}
		if nanAcc.n > 0 {
			placements = []bool{true, false}
		}
		for _, nanLeft := range placements {
			l, r := left, right
			if nanAcc.n > 0 {
				if nanLeft {
					l = l.combine(nanAcc, 1)
				} else {
					r = r.combine(nanAcc, 1)
				}
			}
			if l.n < minLeaf || r.n < minLeaf {
				continue
			}
			weighted := l.n/n*c.impurity(l) + r.n/n*c.impurity(r)
			if gain := parentImpurity - weighted; gain > result.gain {
				result = splitResult{gain: gain, feature: f, threshold: thr, isCat: isCat, nanLeft: nanLeft}
			}
		}
	}

	// ---- CATEGORICAL equality splits over runs of equal values ----
	if runs := valueRuns(valid); len(runs) > 1 && len(runs) <= maxCategories && intLike(valid, runs) {
		for k, start := range runs {
			end := len(valid)
			if k+1 < len(runs) {
				end = runs[k+1]
			}
			group := c.newAcc()
			for _, p := range valid[start:end] {
				group.add(y[p.i])
			}
			consider(group, validAcc.combine(group, -1), valid[start].v, true)
		}
	}

	// ---- NUMERIC splits: sweep thresholds between distinct values ----
	left := c.newAcc()
	right := validAcc.combine(c.newAcc(), 1)
	for s := 1; s < len(valid); s++ {
		yv := y[valid[s-1].i]
		left.add(yv)
		right.remove(yv)
		if valid[s].v == valid[s-1].v {
			continue
		}
		thr := (valid[s-1].v + valid[s].v) / 2.0
		if thr >= valid[s].v {
			thr = valid[s-1].v
		}
		consider(left, right, thr, false)
	}
	return result
}

// valueRuns returns the start offsets of runs of equal values in sorted pairs.
func valueRuns(sorted []pair) []int {
	runs := []int{0}
	for s := 1; s < len(sorted); s++ {
		if sorted[s].v != sorted[s-1].v {
			runs = append(runs, s)
			if len(runs) > maxCategories {
				return runs
			}
		}
	}
	return runs
}

func intLike(sorted []pair, runs []int) bool {
	for _, s := range runs {
		v := sorted[s].v
		if math.IsInf(v, 0) || v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func goesLeft(v, threshold float64, isCat, nanLeft bool) bool {
	switch {
	case math.IsNaN(v):
		return nanLeft
	case isCat:
		return v == threshold
	default:
		return v <= threshold
	}
}

// ---------------------------
// Prediction helper
// ---------------------------

func (c *cart) leafValue(x []float64) []float64 {
	node := c.root
	for !node.isLeaf {
		if goesLeft(x[node.feature], node.threshold, node.isCat, node.nanLeft) {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// Depth returns the depth of the fitted tree (a single leaf has depth 0).
func (c *cart) Depth() int { return depthOf(c.root) }

func depthOf(n *dtNode) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(depthOf(n.left), depthOf(n.right))
}

// FeatureImportances returns the normalized total impurity decrease per feature.
func (c *cart) FeatureImportances() []float64 { return slices.Clone(c.importances) }
