// Package preprocessing は特徴量の前処理を提供します。
// カテゴリ列のワンホットエンコードと、近傍法による欠損値補完を含みます。
package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/model"
	"github.com/mlpipes/titanic/dataset"
	"github.com/mlpipes/titanic/pkg/errors"
)

// OneHotEncoder はカテゴリ列を数値の指示列（indicator column）に展開するエンコーダー
// 学習データでカテゴリ→指示列の対応を一度だけ学習し、
// 評価データ・提出データにも同一の対応を再利用する
type OneHotEncoder struct {
	model.BaseEstimator

	// DropBinary は2値カテゴリ列の一方の指示列を意図的に落とすかどうか
	// 2値の指示列は完全に逆相関するため、片方だけ残す (デフォルト: true)
	DropBinary bool

	// categories は列名ごとの学習済みカテゴリ（ソート済み）
	categories map[string][]string

	// sourceCols は学習時の入力列の順序
	sourceCols []string

	// featureNames は変換後の出力列名
	featureNames []string
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder(dropBinary bool) *OneHotEncoder {
	return &OneHotEncoder{
		DropBinary: dropBinary,
		categories: make(map[string][]string),
	}
}

// Fit は学習データからカテゴリ→指示列の対応を学習する
//
// パラメータ:
//   - t: 特徴量列のみを含むテーブル（ラベル列は呼び出し側で除外する）
//
// 戻り値:
//   - error: エラーが発生した場合
func (e *OneHotEncoder) Fit(t *dataset.Table) error {
	if t.NumRows() == 0 || t.NumCols() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Fit")
	}

	e.categories = make(map[string][]string)
	e.sourceCols = t.Names()
	e.featureNames = nil

	for _, name := range e.sourceCols {
		col, _ := t.Column(name)
		if col.Kind == dataset.Numeric {
			e.featureNames = append(e.featureNames, name)
			continue
		}

		// 観測されたカテゴリを収集（欠損セルはカテゴリにならない）
		set := make(map[string]bool)
		for i, s := range col.Strings {
			if !col.Missing[i] {
				set[s] = true
			}
		}
		cats := make([]string, 0, len(set))
		for c := range set {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		e.categories[name] = cats
		for _, c := range e.indicatorCats(name) {
			e.featureNames = append(e.featureNames, name+"."+c)
		}
	}

	e.SetFitted()
	return nil
}

// indicatorCats は指示列を作るカテゴリの並びを返す
// DropBinary が有効で学習済みカテゴリがちょうど2つの場合、
// ソート順で末尾のカテゴリを落とす
func (e *OneHotEncoder) indicatorCats(name string) []string {
	cats := e.categories[name]
	if e.DropBinary && len(cats) == 2 {
		return cats[:1]
	}
	return cats
}

// Transform は学習済みの対応でテーブルを数値行列に変換する
//
// 数値列はそのまま1列になり、欠損セルは missing マスクに記録される。
// カテゴリ列は学習済みカテゴリごとの0/1指示列に展開される。
// 欠損カテゴリや学習時に見ていないカテゴリは全ゼロの指示列になり、
// エラーにはならない。
//
// パラメータ:
//   - t: 変換するテーブル（学習時と同じ列を含むこと）
//
// 戻り値:
//   - *mat.Dense: 変換後の行列 (n_samples × n_features)
//   - [][]bool: 数値セルの欠損マスク（指示列は常にfalse）
//   - error: エラーが発生した場合
func (e *OneHotEncoder) Transform(t *dataset.Table) (*mat.Dense, [][]bool, error) {
	if !e.IsFitted() {
		return nil, nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	for _, name := range e.sourceCols {
		if !t.HasColumn(name) {
			return nil, nil, errors.NewValueError("OneHotEncoder.Transform",
				fmt.Sprintf("input table is missing column %q seen at fit time", name))
		}
	}

	n := t.NumRows()
	p := len(e.featureNames)
	X := mat.NewDense(n, p, nil)
	missing := make([][]bool, n)
	for i := range missing {
		missing[i] = make([]bool, p)
	}

	j := 0
	for _, name := range e.sourceCols {
		col, _ := t.Column(name)
		cats, isCat := e.categories[name]

		if !isCat {
			if col.Kind != dataset.Numeric {
				return nil, nil, errors.NewValueError("OneHotEncoder.Transform",
					fmt.Sprintf("column %q was numeric at fit time", name))
			}
			for i := 0; i < n; i++ {
				if col.Missing[i] {
					missing[i][j] = true
					continue
				}
				X.Set(i, j, col.Floats[i])
			}
			j++
			continue
		}

		index := make(map[string]int, len(cats))
		for k, c := range e.indicatorCats(name) {
			index[c] = j + k
		}
		width := len(e.indicatorCats(name))
		for i := 0; i < n; i++ {
			if col.Missing[i] {
				continue // 全ゼロの指示列
			}
			var value string
			if col.Kind == dataset.Categorical {
				value = col.Strings[i]
			} else {
				value = fmt.Sprintf("%g", col.Floats[i])
			}
			if k, seen := index[value]; seen {
				X.Set(i, k, 1)
			}
			// 未知カテゴリも全ゼロのまま
		}
		j += width
	}

	return X, missing, nil
}

// FitTransform は学習データで学習し、同じデータを変換する
func (e *OneHotEncoder) FitTransform(t *dataset.Table) (*mat.Dense, [][]bool, error) {
	if err := e.Fit(t); err != nil {
		return nil, nil, err
	}
	return e.Transform(t)
}

// FeatureNames は変換後の出力列名を返す
func (e *OneHotEncoder) FeatureNames() []string {
	out := make([]string, len(e.featureNames))
	copy(out, e.featureNames)
	return out
}
