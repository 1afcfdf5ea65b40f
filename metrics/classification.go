// Package metrics は分類モデルの評価指標を計算します。
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlpipes/titanic/pkg/errors"
)

// ConfusionMatrix は真のラベル×予測ラベルのクロス集計表
// Labels は観測されたラベル値の昇順、Counts[i][j] は
// 真のラベル Labels[i] が Labels[j] と予測された件数
type ConfusionMatrix struct {
	Labels []int
	Counts [][]int
}

// NewConfusionMatrix は真のラベルと予測ラベルからクロス集計表を計算する
//
// パラメータ:
//   - yTrue: 真のラベル
//   - yPred: 予測ラベル（yTrueと同じ長さ）
//
// 戻り値:
//   - *ConfusionMatrix: クロス集計表
//   - error: 入力が空、または長さが一致しない場合
func NewConfusionMatrix(yTrue, yPred []int) (*ConfusionMatrix, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty labels")
	}
	if len(yPred) != n {
		return nil, errors.NewDimensionError("NewConfusionMatrix", n, len(yPred), 0)
	}

	// 観測された全ラベル値を昇順に列挙
	set := make(map[int]bool)
	for i := 0; i < n; i++ {
		set[yTrue[i]] = true
		set[yPred[i]] = true
	}
	labels := make([]int, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := 0; i < n; i++ {
		counts[index[yTrue[i]]][index[yPred[i]]]++
	}

	return &ConfusionMatrix{Labels: labels, Counts: counts}, nil
}

// RowSum は真のラベル値 label の行の合計（= そのラベルの真の件数）を返す
func (cm *ConfusionMatrix) RowSum(label int) int {
	for i, l := range cm.Labels {
		if l == label {
			sum := 0
			for _, c := range cm.Counts[i] {
				sum += c
			}
			return sum
		}
	}
	return 0
}

// Accuracy はクロス集計表から正解率を計算する
func (cm *ConfusionMatrix) Accuracy() float64 {
	correct, total := 0, 0
	for i := range cm.Counts {
		for j, c := range cm.Counts[i] {
			total += c
			if i == j {
				correct += c
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// String はクロス集計表の文字列表現を返す
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for _, l := range cm.Labels {
		fmt.Fprintf(&b, "\t%d", l)
	}
	b.WriteByte('\n')
	for i, l := range cm.Labels {
		fmt.Fprintf(&b, "%d", l)
		for _, c := range cm.Counts[i] {
			fmt.Fprintf(&b, "\t%d", c)
		}
		if i < len(cm.Labels)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Accuracy は正解率（正しく予測された行の割合）を計算する
// 戻り値は常に [0,1] の範囲に収まる
func Accuracy(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty labels")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
