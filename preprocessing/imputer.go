package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/model"
	"github.com/mlpipes/titanic/pkg/errors"
)

// KNNImputer はk近傍法による欠損値補完を行う推定器
//
// Fitで各列の平均・標準偏差と、中心化・スケール済みの完全観測行
// （近傍プール）を固定する。Transformは学習済みの統計量で入力を
// 中心化・スケールし、欠損セルをk近傍の平均で埋める。
// 一度学習した補完モデルは学習・評価・提出の全データに対して
// 読み取り専用で再利用される（再学習は分布情報のリークになる）。
type KNNImputer struct {
	model.BaseEstimator

	// K は近傍数 (デフォルト: 5)
	K int

	// Mean は各列の平均値（学習時に固定）
	Mean []float64

	// Scale は各列の標準偏差（学習時に固定）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// neighbors は中心化・スケール済みの完全観測行
	neighbors [][]float64
}

// NewKNNImputer は新しいKNNImputerを作成する
func NewKNNImputer(k int) *KNNImputer {
	if k <= 0 {
		k = 5
	}
	return &KNNImputer{K: k}
}

// Fit は観測値から列ごとの統計量を計算し、近傍プールを固定する
//
// パラメータ:
//   - X: 学習データ (n_samples × n_features)
//   - missing: 欠損マスク（Xと同じ形）
//
// 戻り値:
//   - error: 完全観測行がK行未満の場合は InsufficientDataError
func (im *KNNImputer) Fit(X *mat.Dense, missing [][]bool) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "KNNImputer.Fit")
	}
	if len(missing) != r {
		return errors.NewDimensionError("KNNImputer.Fit", r, len(missing), 0)
	}

	im.NFeatures = c
	im.Mean = make([]float64, c)
	im.Scale = make([]float64, c)

	// 列ごとの平均と標準偏差を観測セルから計算
	for j := 0; j < c; j++ {
		sum, n := 0.0, 0
		for i := 0; i < r; i++ {
			if missing[i][j] {
				continue
			}
			sum += X.At(i, j)
			n++
		}
		if n == 0 {
			return errors.NewValueError("KNNImputer.Fit", "column with no observed values")
		}
		im.Mean[j] = sum / float64(n)

		sumSquares := 0.0
		for i := 0; i < r; i++ {
			if missing[i][j] {
				continue
			}
			diff := X.At(i, j) - im.Mean[j]
			sumSquares += diff * diff
		}
		im.Scale[j] = math.Sqrt(sumSquares / float64(n))
		if math.Abs(im.Scale[j]) < 1e-8 {
			im.Scale[j] = 1.0
		}
	}

	// 完全観測行を中心化・スケールして近傍プールに固定
	im.neighbors = nil
	for i := 0; i < r; i++ {
		complete := true
		for j := 0; j < c; j++ {
			if missing[i][j] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = (X.At(i, j) - im.Mean[j]) / im.Scale[j]
		}
		im.neighbors = append(im.neighbors, row)
	}

	if len(im.neighbors) < im.K {
		return errors.NewInsufficientDataError("KNNImputer.Fit", im.K, len(im.neighbors))
	}

	im.SetFitted()
	return nil
}

// Transform は学習済みの統計量で入力を中心化・スケールし、欠損セルを補完する
//
// 入力側の統計量は一切計算しない。完全観測行は中心化・スケールされた
// だけの値で返る。欠損セルは、その行で観測されている列をユークリッド
// 距離の次元としてk近傍を選び、近傍の該当列の平均で埋める。
// 1行に複数の欠損列がある場合は各列を独立に補完する。
//
// パラメータ:
//   - X: 変換するデータ
//   - missing: 欠損マスク
//
// 戻り値:
//   - *mat.Dense: 補完済みの中心化・スケール済みデータ
//   - error: エラーが発生した場合
func (im *KNNImputer) Transform(X *mat.Dense, missing [][]bool) (*mat.Dense, error) {
	if !im.IsFitted() {
		return nil, errors.NewNotFittedError("KNNImputer", "Transform")
	}
	r, c := X.Dims()
	if c != im.NFeatures {
		return nil, errors.NewDimensionError("KNNImputer.Transform", im.NFeatures, c, 1)
	}
	if len(missing) != r {
		return nil, errors.NewDimensionError("KNNImputer.Transform", r, len(missing), 0)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if missing[i][j] {
				continue
			}
			result.Set(i, j, (X.At(i, j)-im.Mean[j])/im.Scale[j])
		}
	}

	for i := 0; i < r; i++ {
		observed := make([]int, 0, c)
		missingCols := make([]int, 0)
		for j := 0; j < c; j++ {
			if missing[i][j] {
				missingCols = append(missingCols, j)
			} else {
				observed = append(observed, j)
			}
		}
		if len(missingCols) == 0 {
			continue
		}

		nearest := im.nearestNeighbors(result, i, observed)
		for _, j := range missingCols {
			sum := 0.0
			for _, nb := range nearest {
				sum += im.neighbors[nb][j]
			}
			result.Set(i, j, sum/float64(len(nearest)))
		}
	}

	return result, nil
}

// nearestNeighbors は観測列のユークリッド距離でk近傍のインデックスを返す
// 距離が同点の場合はプール内の順序で安定に決まる
func (im *KNNImputer) nearestNeighbors(scaled *mat.Dense, row int, observed []int) []int {
	type cand struct {
		idx  int
		dist float64
	}
	cands := make([]cand, len(im.neighbors))
	for n, nb := range im.neighbors {
		d := 0.0
		for _, j := range observed {
			diff := scaled.At(row, j) - nb[j]
			d += diff * diff
		}
		cands[n] = cand{idx: n, dist: d}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].dist != cands[b].dist {
			return cands[a].dist < cands[b].dist
		}
		return cands[a].idx < cands[b].idx
	})

	k := im.K
	if k > len(cands) {
		k = len(cands)
	}
	out := make([]int, k)
	for n := 0; n < k; n++ {
		out[n] = cands[n].idx
	}
	return out
}
