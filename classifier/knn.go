// Package classifier 提供基于原型的k近邻像元分类器
//
// 每个原型是一个带类别编码（classId*100）的特征向量（各波段/指数值）。
// 预测时先按原型集的均值/标准差做z-score标准化，计算到全部原型的欧氏距离，
// 取最近的k个，以 1/(距离+eps) 为权重累加到各类别，归一化后即为概率。
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wgdzlh/wastemap/log"
)

const (
	logTag     = "Classifier:"
	epsilon    = 1e-9
	DefaultK   = 5
	minStddev  = 1e-12
	jsonIndent = "  "
)

var (
	ErrNoPrototypes   = errors.New("no prototypes")
	ErrInvalidK       = errors.New("invalid neighbour count")
	ErrFeatureCount   = errors.New("feature count mismatch")
	ErrInvalidClassID = errors.New("class code must be a positive multiple of 100")
)

type Prototype struct {
	Class    int       `json:"class"`
	Features []float64 `json:"features"`
}

// 模型文件格式
type Model struct {
	Bands       []string    `json:"bands,omitempty"` // 训练时使用的波段/指数，仅作说明
	Standardize bool        `json:"standardize"`
	Prototypes  []Prototype `json:"prototypes"`
}

type scaler struct {
	mean, stddev []float64
}

func newScaler(protos []Prototype, dim int) *scaler {
	s := &scaler{mean: make([]float64, dim), stddev: make([]float64, dim)}
	col := make([]float64, len(protos))
	for j := 0; j < dim; j++ {
		for i, p := range protos {
			col[i] = p.Features[j]
		}
		s.mean[j], s.stddev[j] = stat.PopMeanStdDev(col, nil)
		if s.stddev[j] < minStddev {
			s.stddev[j] = 1
		}
	}
	return s
}

func (s *scaler) transform(dst, src []float64) {
	floats.SubTo(dst, src, s.mean)
	floats.Div(dst, s.stddev)
}

// k近邻分类器，构造后只读，可并发使用
type KNN struct {
	k       int
	dim     int
	classes []int
	classOf map[int]int // 类别编码 -> 列号
	protos  [][]float64
	labels  []int // 原型的列号
	scaler  *scaler
	bands   []string
}

func New(m Model, k int) (ret *KNN, err error) {
	if k <= 0 {
		err = ErrInvalidK
		return
	}
	if len(m.Prototypes) == 0 {
		err = ErrNoPrototypes
		return
	}
	dim := len(m.Prototypes[0].Features)
	if dim == 0 {
		err = ErrFeatureCount
		return
	}
	set := map[int]struct{}{}
	for _, p := range m.Prototypes {
		if len(p.Features) != dim {
			err = ErrFeatureCount
			return
		}
		if p.Class <= 0 || p.Class%100 != 0 {
			err = ErrInvalidClassID
			return
		}
		set[p.Class] = struct{}{}
	}
	ret = &KNN{k: k, dim: dim, classOf: map[int]int{}, bands: m.Bands}
	for c := range set {
		ret.classes = append(ret.classes, c)
	}
	sort.Ints(ret.classes)
	for i, c := range ret.classes {
		ret.classOf[c] = i
	}
	if m.Standardize {
		ret.scaler = newScaler(m.Prototypes, dim)
	}
	ret.protos = make([][]float64, len(m.Prototypes))
	ret.labels = make([]int, len(m.Prototypes))
	for i, p := range m.Prototypes {
		ret.protos[i] = ret.prepare(p.Features)
		ret.labels[i] = ret.classOf[p.Class]
	}
	return
}

// 从JSON文件加载模型
func Load(path string, k int) (ret *KNN, err error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		err = fmt.Errorf("failed to load classifier model (%s): %w", path, err)
		return
	}
	var m Model
	if err = json.Unmarshal(data, &m); err != nil {
		err = fmt.Errorf("unable to parse classifier model: %w", err)
		return
	}
	if ret, err = New(m, k); err != nil {
		return
	}
	log.Info(logTag+"model loaded", zap.String("path", path), zap.Int("prototypes", len(m.Prototypes)),
		zap.Ints("classes", ret.classes), zap.Int("k", k))
	return
}

// 保存模型到JSON文件
func Save(path string, m Model) error {
	data, err := json.MarshalIndent(m, "", jsonIndent)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *KNN) prepare(features []float64) []float64 {
	out := make([]float64, len(features))
	if c.scaler != nil {
		c.scaler.transform(out, features)
	} else {
		copy(out, features)
	}
	return out
}

func (c *KNN) Classes() []int {
	return append([]int(nil), c.classes...)
}

func (c *KNN) Bands() []string {
	return c.bands
}

func (c *KNN) FeatureCount() int {
	return c.dim
}

type neighbour struct {
	label    int
	distance float64
}

func (c *KNN) PredictProba(rows [][]float64) (ret [][]float64, err error) {
	k := c.k
	if k > len(c.protos) {
		k = len(c.protos)
	}
	ret = make([][]float64, len(rows))
	ns := make([]neighbour, len(c.protos))
	for r, row := range rows {
		if len(row) != c.dim {
			err = ErrFeatureCount
			ret = nil
			return
		}
		x := c.prepare(row)
		for i, p := range c.protos {
			ns[i] = neighbour{c.labels[i], floats.Distance(x, p, 2)}
		}
		sort.SliceStable(ns, func(i, j int) bool { return ns[i].distance < ns[j].distance })
		probs := make([]float64, len(c.classes))
		for _, n := range ns[:k] {
			probs[n.label] += 1 / (n.distance + epsilon)
		}
		floats.Scale(1/floats.Sum(probs), probs)
		ret[r] = probs
	}
	return
}
