package xsimfiles

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/omeyang/simkit/pkg/util/xarray"
)

// ============================================================================
// 原始列文件编解码
//
// 数据文件是小端序的定长记录，无任何文件头；行数由文件长度推得。
// float64 与 int64 每值 8 字节，bool 每值 1 字节（0 或 1）。
// ============================================================================

// suffixForKind 返回元素类型对应的数据文件后缀。
func suffixForKind(kind xarray.Kind) string {
	switch kind {
	case xarray.Int64:
		return ".i64"
	case xarray.Bool:
		return ".b8"
	default:
		return ".f64"
	}
}

// columnPath 返回抽取器在快照目录下的数据文件路径。
func columnPath(dir string, ext Extractor) string {
	return filepath.Join(dir, ext.FileType, ext.Field+suffixForKind(ext.Kind))
}

// elemSize 返回元素类型的单值字节数。
func elemSize(kind xarray.Kind) int {
	if kind == xarray.Bool {
		return 1
	}
	return 8
}

// DecodeColumn 把原始列文件内容解码为数组。
//
// 文件长度必须是单行字节数的整数倍，否则返回 ErrCorruptData。
func DecodeColumn(data []byte, ext Extractor) (*xarray.Array, error) {
	rowBytes := elemSize(ext.Kind) * ext.Columns
	if rowBytes == 0 || len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("%w: field %q has %d bytes, row is %d bytes",
			ErrCorruptData, ext.Field, len(data), rowBytes)
	}
	rows := len(data) / rowBytes
	size := rows * ext.Columns
	shape := []int{rows}
	if ext.Columns > 1 {
		shape = []int{rows, ext.Columns}
	}

	switch ext.Kind {
	case xarray.Int64:
		vals := make([]int64, size)
		for i := range vals {
			vals[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return xarray.NewInt64s(vals, shape...)
	case xarray.Bool:
		vals := make([]bool, size)
		for i := range vals {
			vals[i] = data[i] != 0
		}
		return xarray.NewBools(vals, shape...)
	default:
		vals := make([]float64, size)
		for i := range vals {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return xarray.NewFloat64s(vals, shape...)
	}
}

// EncodeColumn 把数组编码为原始列文件内容。
func EncodeColumn(arr *xarray.Array) ([]byte, error) {
	switch arr.Kind() {
	case xarray.Int64:
		vals, err := arr.Int64s()
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(vals)*8)
		for i, v := range vals {
			binary.LittleEndian.PutUint64(data[i*8:], uint64(v))
		}
		return data, nil
	case xarray.Bool:
		vals, err := arr.Bools()
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(vals))
		for i, v := range vals {
			if v {
				data[i] = 1
			}
		}
		return data, nil
	case xarray.Float64:
		vals, err := arr.Float64s()
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(vals)*8)
		for i, v := range vals {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown element kind", ErrCorruptData)
	}
}

// WriteColumn 把数组写为抽取器对应的数据文件，父目录不存在时创建。
// 供数据集制备工具与测试使用。
func WriteColumn(dir string, ext Extractor, arr *xarray.Array) error {
	if err := ext.Validate(); err != nil {
		return err
	}
	if err := ext.matches(arr); err != nil {
		return err
	}
	data, err := EncodeColumn(arr)
	if err != nil {
		return err
	}
	path := columnPath(dir, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("xsimfiles: create filetype dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("xsimfiles: write column: %w", err)
	}
	return nil
}
