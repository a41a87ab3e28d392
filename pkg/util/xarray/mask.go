package xarray

import "fmt"

// MaskKind 表示行掩码的形态。
type MaskKind uint8

const (
	// MaskAll 选取全部行。
	MaskAll MaskKind = iota + 1
	// MaskBool 按布尔向量逐行选取。
	MaskBool
	// MaskRange 选取 [start, stop) 的连续行。
	MaskRange
)

// Mask 是沿第 0 轴的行选择器。零值不可用，应通过 All、FromBools、Range 构造。
type Mask struct {
	kind  MaskKind
	keep  []bool
	start int
	stop  int
}

// All 返回选取全部行的掩码。
func All() Mask { return Mask{kind: MaskAll} }

// FromBools 返回按布尔向量选取的掩码。不拷贝 keep。
func FromBools(keep []bool) Mask { return Mask{kind: MaskBool, keep: keep} }

// Range 返回选取 [start, stop) 连续行的掩码。
func Range(start, stop int) (Mask, error) {
	if start < 0 || stop < start {
		return Mask{}, fmt.Errorf("%w: [%d, %d)", ErrBadRange, start, stop)
	}
	return Mask{kind: MaskRange, start: start, stop: stop}, nil
}

// Kind 返回掩码形态。
func (m Mask) Kind() MaskKind { return m.kind }

// Count 返回掩码在 rows 行上选中的行数。
func (m Mask) Count(rows int) (int, error) {
	switch m.kind {
	case MaskAll:
		return rows, nil
	case MaskBool:
		if len(m.keep) != rows {
			return 0, fmt.Errorf("%w: mask has %d rows, array has %d", ErrBadMask, len(m.keep), rows)
		}
		n := 0
		for _, k := range m.keep {
			if k {
				n++
			}
		}
		return n, nil
	case MaskRange:
		if m.stop > rows {
			return 0, fmt.Errorf("%w: stop %d beyond %d rows", ErrBadMask, m.stop, rows)
		}
		return m.stop - m.start, nil
	default:
		return 0, fmt.Errorf("%w: unknown mask kind %d", ErrBadMask, m.kind)
	}
}

// Select 返回按掩码选取行后的数组。
// 全选掩码直接返回原数组；其余形态返回新数组，不与原数组共享底层存储。
func (a *Array) Select(m Mask) (*Array, error) {
	rows := a.Rows()
	kept, err := m.Count(rows)
	if err != nil {
		return nil, err
	}
	if m.kind == MaskAll {
		return a, nil
	}

	shape := a.Shape()
	shape[0] = kept
	rs := a.rowSize()
	out := &Array{kind: a.kind, shape: shape}
	switch a.kind {
	case Float64:
		out.f64 = make([]float64, 0, kept*rs)
	case Int64:
		out.i64 = make([]int64, 0, kept*rs)
	case Bool:
		out.b = make([]bool, 0, kept*rs)
	}

	appendRow := func(r int) {
		lo, hi := r*rs, (r+1)*rs
		switch a.kind {
		case Float64:
			out.f64 = append(out.f64, a.f64[lo:hi]...)
		case Int64:
			out.i64 = append(out.i64, a.i64[lo:hi]...)
		case Bool:
			out.b = append(out.b, a.b[lo:hi]...)
		}
	}

	switch m.kind {
	case MaskBool:
		for r, k := range m.keep {
			if k {
				appendRow(r)
			}
		}
	case MaskRange:
		for r := m.start; r < m.stop; r++ {
			appendRow(r)
		}
	}
	return out, nil
}
