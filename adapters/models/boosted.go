package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"utitriage/domain/patient"
)

// boostedFile wraps the per-tree output of Booster.get_dump(dump_format="json")
// with the metadata needed to turn margins into probabilities.
type boostedFile struct {
	Format       string     `json:"format"`
	FeatureNames []string   `json:"feature_names"`
	Objective    string     `json:"objective"`
	BaseScore    *float64   `json:"base_score"`
	Trees        []dumpNode `json:"trees"`
}

type dumpNode struct {
	NodeID         int        `json:"nodeid"`
	Split          string     `json:"split"`
	SplitCondition float64    `json:"split_condition"`
	Yes            int        `json:"yes"`
	No             int        `json:"no"`
	Missing        int        `json:"missing"`
	Leaf           *float64   `json:"leaf"`
	Children       []dumpNode `json:"children"`
}

// BoostedTrees sums leaf margins over all trees and applies the logistic link
type BoostedTrees struct {
	name       string
	baseMargin float64
	trees      []boostedTree
}

// boostedTree is a dump tree flattened by nodeid
type boostedTree struct {
	isLeaf    []bool
	leaf      []float64
	feature   []int
	condition []float64
	yes, no   []int
	missing   []int
}

// DecodeBoostedTrees parses and validates an XGBoost dump artifact
func DecodeBoostedTrees(name string, data []byte) (*BoostedTrees, error) {
	var f boostedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode boosted trees: %w", err)
	}
	if err := patient.CheckOrder(f.FeatureNames); err != nil {
		return nil, err
	}
	if f.Objective != "" && f.Objective != "binary:logistic" {
		return nil, fmt.Errorf("unsupported objective %q", f.Objective)
	}
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("boosted model has no trees")
	}

	base := 0.5
	if f.BaseScore != nil {
		base = *f.BaseScore
	}
	if base <= 0 || base >= 1 {
		return nil, fmt.Errorf("base_score %v must be in (0,1)", base)
	}

	bt := &BoostedTrees{name: name, baseMargin: math.Log(base / (1 - base))}
	for i, root := range f.Trees {
		tree, err := flatten(root)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		bt.trees = append(bt.trees, tree)
	}
	return bt, nil
}

func flatten(root dumpNode) (boostedTree, error) {
	nodes := map[int]dumpNode{}
	var walk func(n dumpNode) error
	walk = func(n dumpNode) error {
		if _, dup := nodes[n.NodeID]; dup {
			return fmt.Errorf("duplicate nodeid %d", n.NodeID)
		}
		if n.NodeID < 0 {
			return fmt.Errorf("negative nodeid %d", n.NodeID)
		}
		nodes[n.NodeID] = n
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return boostedTree{}, err
	}
	if root.NodeID != 0 {
		return boostedTree{}, fmt.Errorf("root nodeid is %d, expected 0", root.NodeID)
	}

	n := len(nodes)
	t := boostedTree{
		isLeaf:    make([]bool, n),
		leaf:      make([]float64, n),
		feature:   make([]int, n),
		condition: make([]float64, n),
		yes:       make([]int, n),
		no:        make([]int, n),
		missing:   make([]int, n),
	}
	for id, node := range nodes {
		if id >= n {
			return boostedTree{}, fmt.Errorf("nodeid %d is not dense in [0,%d)", id, n)
		}
		if node.Leaf != nil {
			t.isLeaf[id] = true
			t.leaf[id] = *node.Leaf
			continue
		}
		feat, err := resolveSplit(node.Split)
		if err != nil {
			return boostedTree{}, fmt.Errorf("node %d: %w", id, err)
		}
		for _, child := range []int{node.Yes, node.No, node.Missing} {
			if _, ok := nodes[child]; !ok || child <= id {
				return boostedTree{}, fmt.Errorf("node %d points at invalid child %d", id, child)
			}
		}
		t.feature[id] = feat
		t.condition[id] = node.SplitCondition
		t.yes[id], t.no[id], t.missing[id] = node.Yes, node.No, node.Missing
	}
	return t, nil
}

// resolveSplit accepts either a feature name or XGBoost's positional "f<index>"
func resolveSplit(split string) (int, error) {
	if idx := patient.IndexOf(split); idx >= 0 {
		return idx, nil
	}
	if strings.HasPrefix(split, "f") {
		if idx, err := strconv.Atoi(split[1:]); err == nil && idx >= 0 && idx < patient.FeatureCount {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("unknown split feature %q", split)
}

func (t boostedTree) margin(x []float64) float64 {
	node := 0
	for !t.isLeaf[node] {
		v := x[t.feature[node]]
		switch {
		case math.IsNaN(v):
			node = t.missing[node]
		case v < t.condition[node]:
			node = t.yes[node]
		default:
			node = t.no[node]
		}
	}
	return t.leaf[node]
}

// Name implements ports.Classifier
func (b *BoostedTrees) Name() string { return b.name }

// Trees is the number of boosting rounds
func (b *BoostedTrees) Trees() int { return len(b.trees) }

// PredictProbability implements ports.Classifier
func (b *BoostedTrees) PredictProbability(x []float64) (float64, error) {
	if len(x) != patient.FeatureCount {
		return 0, fmt.Errorf("%s: expected %d features, got %d", b.name, patient.FeatureCount, len(x))
	}
	m := b.baseMargin
	for _, t := range b.trees {
		m += t.margin(x)
	}
	return sigmoid(m), nil
}

func sigmoid(m float64) float64 {
	return 1 / (1 + math.Exp(-m))
}
