package models

import (
	"encoding/json"
	"fmt"

	"utitriage/domain/patient"
)

// forestFile is a random forest exported from scikit-learn's tree_ arrays.
// Node i is a leaf when children_left[i] == -1; otherwise samples with
// x[feature[i]] <= threshold[i] go left. value[i] holds per-class weights.
type forestFile struct {
	Format       string     `json:"format"`
	FeatureNames []string   `json:"feature_names"`
	Classes      []int      `json:"classes"`
	Trees        []treeFile `json:"trees"`
}

type treeFile struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// RandomForest averages the positive-class leaf share over its trees
type RandomForest struct {
	name  string
	trees []decisionTree
}

type decisionTree struct {
	left, right []int
	feature     []int
	threshold   []float64
	leafProb    []float64 // positive share per node, only meaningful at leaves
}

// DecodeRandomForest parses and validates a forest artifact
func DecodeRandomForest(name string, data []byte) (*RandomForest, error) {
	var f forestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode random forest: %w", err)
	}
	if err := patient.CheckOrder(f.FeatureNames); err != nil {
		return nil, err
	}
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}

	// sklearn orders value columns by classes_; the positive class is label 1
	positive := 1
	if len(f.Classes) > 0 {
		positive = -1
		for i, c := range f.Classes {
			if c == 1 {
				positive = i
			}
		}
		if positive < 0 {
			return nil, fmt.Errorf("random forest classes %v have no positive label 1", f.Classes)
		}
	}

	rf := &RandomForest{name: name, trees: make([]decisionTree, 0, len(f.Trees))}
	for i, t := range f.Trees {
		tree, err := buildTree(t, positive)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		rf.trees = append(rf.trees, tree)
	}
	return rf, nil
}

func buildTree(t treeFile, positive int) (decisionTree, error) {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return decisionTree{}, fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return decisionTree{}, fmt.Errorf("node arrays have different lengths")
	}

	tree := decisionTree{
		left:      t.ChildrenLeft,
		right:     t.ChildrenRight,
		feature:   t.Feature,
		threshold: t.Threshold,
		leafProb:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 {
			if r != -1 {
				return decisionTree{}, fmt.Errorf("node %d has only one child", i)
			}
			v := t.Value[i]
			if positive >= len(v) {
				return decisionTree{}, fmt.Errorf("leaf %d has %d class weights", i, len(v))
			}
			var total float64
			for _, w := range v {
				total += w
			}
			if total <= 0 {
				return decisionTree{}, fmt.Errorf("leaf %d has no weight", i)
			}
			tree.leafProb[i] = v[positive] / total
			continue
		}
		// children always come after their parent in sklearn's layout, which
		// also rules out cycles
		if l <= i || r <= i || l >= n || r >= n {
			return decisionTree{}, fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= patient.FeatureCount {
			return decisionTree{}, fmt.Errorf("node %d splits on unknown feature %d", i, f)
		}
	}
	return tree, nil
}

func (t decisionTree) predict(x []float64) float64 {
	node := 0
	for t.left[node] != -1 {
		if x[t.feature[node]] <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.leafProb[node]
}

// Name implements ports.Classifier
func (rf *RandomForest) Name() string { return rf.name }

// Trees is the number of estimators
func (rf *RandomForest) Trees() int { return len(rf.trees) }

// PredictProbability implements ports.Classifier
func (rf *RandomForest) PredictProbability(x []float64) (float64, error) {
	if len(x) != patient.FeatureCount {
		return 0, fmt.Errorf("%s: expected %d features, got %d", rf.name, patient.FeatureCount, len(x))
	}
	var sum float64
	for _, t := range rf.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(rf.trees)), nil
}
