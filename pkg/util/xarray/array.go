package xarray

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Kind 表示数组的元素类型。
type Kind uint8

const (
	// Float64 表示 64 位浮点元素。
	Float64 Kind = iota + 1
	// Int64 表示 64 位整型元素。
	Int64
	// Bool 表示布尔元素。
	Bool
)

// String 返回元素类型的可读名称。
func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Array 是行主序的多维数值数组。
// 第 0 轴为行轴：掩码、重心平移等操作都沿第 0 轴进行。
// 零值不可用，应通过 NewFloat64s、NewInt64s、NewBools 构造。
type Array struct {
	kind  Kind
	shape []int
	f64   []float64
	i64   []int64
	b     []bool
}

// NewFloat64s 以给定数据与形状构造浮点数组。
// 不拷贝 data；构造后调用方不应再修改它。
// 省略 shape 时按一维 [len(data)] 处理。
func NewFloat64s(data []float64, shape ...int) (*Array, error) {
	s, err := normalizeShape(len(data), shape)
	if err != nil {
		return nil, err
	}
	return &Array{kind: Float64, shape: s, f64: data}, nil
}

// NewInt64s 以给定数据与形状构造整型数组。
func NewInt64s(data []int64, shape ...int) (*Array, error) {
	s, err := normalizeShape(len(data), shape)
	if err != nil {
		return nil, err
	}
	return &Array{kind: Int64, shape: s, i64: data}, nil
}

// NewBools 以给定数据与形状构造布尔数组。
func NewBools(data []bool, shape ...int) (*Array, error) {
	s, err := normalizeShape(len(data), shape)
	if err != nil {
		return nil, err
	}
	return &Array{kind: Bool, shape: s, b: data}, nil
}

func normalizeShape(n int, shape []int) ([]int, error) {
	if len(shape) == 0 {
		return []int{n}, nil
	}
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
		size *= d
	}
	if size != n {
		return nil, fmt.Errorf("%w: shape %v holds %d elements, data has %d", ErrShapeMismatch, shape, size, n)
	}
	out := make([]int, len(shape))
	copy(out, shape)
	return out, nil
}

// Kind 返回元素类型。
func (a *Array) Kind() Kind { return a.kind }

// Shape 返回形状的副本。
func (a *Array) Shape() []int {
	out := make([]int, len(a.shape))
	copy(out, a.shape)
	return out
}

// Rows 返回第 0 轴的长度。
func (a *Array) Rows() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// rowSize 返回单行的元素个数。
func (a *Array) rowSize() int {
	size := 1
	for _, d := range a.shape[1:] {
		size *= d
	}
	return size
}

// Size 返回元素总数。
func (a *Array) Size() int {
	size := 1
	for _, d := range a.shape {
		size *= d
	}
	return size
}

// Float64s 返回底层浮点切片。调用方不得修改。
func (a *Array) Float64s() ([]float64, error) {
	if a.kind != Float64 {
		return nil, fmt.Errorf("%w: want float64, have %s", ErrKindMismatch, a.kind)
	}
	return a.f64, nil
}

// Int64s 返回底层整型切片。调用方不得修改。
func (a *Array) Int64s() ([]int64, error) {
	if a.kind != Int64 {
		return nil, fmt.Errorf("%w: want int64, have %s", ErrKindMismatch, a.kind)
	}
	return a.i64, nil
}

// Bools 返回底层布尔切片。调用方不得修改。
func (a *Array) Bools() ([]bool, error) {
	if a.kind != Bool {
		return nil, fmt.Errorf("%w: want bool, have %s", ErrKindMismatch, a.kind)
	}
	return a.b, nil
}

// Float64Scalar 取出单元素浮点数组的值。
func (a *Array) Float64Scalar() (float64, error) {
	if a.kind != Float64 {
		return 0, fmt.Errorf("%w: want float64, have %s", ErrKindMismatch, a.kind)
	}
	if a.Size() != 1 {
		return 0, fmt.Errorf("%w: size %d", ErrNotScalar, a.Size())
	}
	return a.f64[0], nil
}

// Int64Scalar 取出单元素整型数组的值。
func (a *Array) Int64Scalar() (int64, error) {
	if a.kind != Int64 {
		return 0, fmt.Errorf("%w: want int64, have %s", ErrKindMismatch, a.kind)
	}
	if a.Size() != 1 {
		return 0, fmt.Errorf("%w: size %d", ErrNotScalar, a.Size())
	}
	return a.i64[0], nil
}

// Clone 返回数据与形状的深拷贝。
func (a *Array) Clone() *Array {
	out := &Array{kind: a.kind, shape: a.Shape()}
	switch a.kind {
	case Float64:
		out.f64 = append([]float64(nil), a.f64...)
	case Int64:
		out.i64 = append([]int64(nil), a.i64...)
	case Bool:
		out.b = append([]bool(nil), a.b...)
	}
	return out
}

// Equal 判断两个数组的类型、形状与全部元素是否一致。
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.kind != other.kind || len(a.shape) != len(other.shape) {
		return false
	}
	for i, d := range a.shape {
		if other.shape[i] != d {
			return false
		}
	}
	switch a.kind {
	case Float64:
		for i, v := range a.f64 {
			if other.f64[i] != v {
				return false
			}
		}
	case Int64:
		for i, v := range a.i64 {
			if other.i64[i] != v {
				return false
			}
		}
	case Bool:
		for i, v := range a.b {
			if other.b[i] != v {
				return false
			}
		}
	}
	return true
}

// arrayImage 是 gob 编码用的外显镜像。
type arrayImage struct {
	Kind  Kind
	Shape []int
	F64   []float64
	I64   []int64
	B     []bool
}

// GobEncode 实现 gob.GobEncoder。
func (a *Array) GobEncode() ([]byte, error) {
	img := arrayImage{Kind: a.kind, Shape: a.shape, F64: a.f64, I64: a.i64, B: a.b}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(img); err != nil {
		return nil, fmt.Errorf("xarray: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode 实现 gob.GobDecoder。
func (a *Array) GobDecode(data []byte) error {
	var img arrayImage
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&img); err != nil {
		return fmt.Errorf("xarray: decode: %w", err)
	}
	switch img.Kind {
	case Float64, Int64, Bool:
	default:
		return fmt.Errorf("xarray: decode: unknown kind %d", img.Kind)
	}
	var n int
	switch img.Kind {
	case Float64:
		n = len(img.F64)
	case Int64:
		n = len(img.I64)
	case Bool:
		n = len(img.B)
	}
	shape, err := normalizeShape(n, img.Shape)
	if err != nil {
		return fmt.Errorf("xarray: decode: %w", err)
	}
	a.kind = img.Kind
	a.shape = shape
	a.f64 = img.F64
	a.i64 = img.I64
	a.b = img.B
	return nil
}
