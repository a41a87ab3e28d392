package xarray

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SubRow 把 centre 逐行从数组中减去，用于把坐标平移到以 centre 为原点。
// centre 的形状须为 [C] 或 [1, C]，其中 C 等于本数组的单行元素数。
// 原地修改，仅支持浮点数组。
func (a *Array) SubRow(centre *Array) error {
	if a.kind != Float64 || centre.kind != Float64 {
		return fmt.Errorf("%w: sub-row needs float64 arrays", ErrKindMismatch)
	}
	switch {
	case len(centre.shape) == 1:
	case len(centre.shape) == 2 && centre.shape[0] == 1:
	default:
		return fmt.Errorf("%w: centre shape %v, want [C] or [1 C]", ErrShapeMismatch, centre.shape)
	}
	c := centre.f64
	rs := a.rowSize()
	if len(c) != rs {
		return fmt.Errorf("%w: centre has %d elements, rows have %d", ErrShapeMismatch, len(c), rs)
	}
	for r := 0; r < a.Rows(); r++ {
		floats.Sub(a.f64[r*rs:(r+1)*rs], c)
	}
	return nil
}

// WrapPeriodic 把坐标折回周期盒 [-L/2, L/2]。
// 对每个元素至多修正一次：大于 L/2 减 L，小于 -L/2 加 L。
// 适用于重心平移后的坐标，平移前的坐标可能需要多次修正，不在支持范围内。
// 原地修改，仅支持浮点数组。
func (a *Array) WrapPeriodic(length float64) error {
	if a.kind != Float64 {
		return fmt.Errorf("%w: wrap needs a float64 array", ErrKindMismatch)
	}
	if length <= 0 {
		return fmt.Errorf("%w: box length %g", ErrShapeMismatch, length)
	}
	half := length / 2
	for i, v := range a.f64 {
		switch {
		case v > half:
			a.f64[i] = v - length
		case v < -half:
			a.f64[i] = v + length
		}
	}
	return nil
}
