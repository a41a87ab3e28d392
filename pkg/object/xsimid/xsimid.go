package xsimid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// SnapID 是快照标识。
// 格式由数据提供方定义（如 "RES3_hydro_vol1_snap127"），本包不解释其内容。
type SnapID string

// ObjID 是对象标识，由命名整数分量组成。
// 例如 {fof: 1, sub: 0} 表示第 1 号 FOF 群中的第 0 号子晕。
type ObjID map[string]int64

// MaskArgs 是掩码参数，由命名浮点参数组成。
// 例如孔径掩码的 {aperture: 30}。nil 表示无参数。
type MaskArgs map[string]float64

// Identity 唯一确定一次会话的选择条件，也唯一确定缓存文件的寻址。
type Identity struct {
	SnapID   SnapID
	ObjID    ObjID
	MaskType string
	MaskArgs MaskArgs
}

// Validate 校验身份的完整性。
// SnapID 不得为空，ObjID 至少包含一个分量，所有分量键名非空。
func (id Identity) Validate() error {
	if id.SnapID == "" {
		return ErrEmptySnapID
	}
	if len(id.ObjID) == 0 {
		return ErrEmptyObjID
	}
	for k := range id.ObjID {
		if k == "" {
			return fmt.Errorf("%w: obj id", ErrEmptyComponent)
		}
	}
	for k := range id.MaskArgs {
		if k == "" {
			return fmt.Errorf("%w: mask args", ErrEmptyComponent)
		}
	}
	return nil
}

// Canonical 返回身份的确定性规范串。
// 分量按键名排序，浮点使用最短往返表示，因而跨进程、跨运行稳定。
// 形如 "snap=S;obj=fof=1,sub=0;mask=aperture;args=aperture=30"。
func (id Identity) Canonical() string {
	var b strings.Builder
	b.WriteString("snap=")
	b.WriteString(string(id.SnapID))
	b.WriteString(";obj=")
	b.WriteString(canonicalInts(id.ObjID))
	b.WriteString(";mask=")
	b.WriteString(id.MaskType)
	b.WriteString(";args=")
	b.WriteString(canonicalFloats(id.MaskArgs))
	return b.String()
}

// CanonicalObj 返回对象标识部分的规范串，形如 "fof=1,sub=0"。
// 供缓存文件名等对外展示场景单独引用对象标识。
func (id Identity) CanonicalObj() string {
	return canonicalInts(id.ObjID)
}

// Digest 返回规范串的 xxhash64 摘要（16 位十六进制）。
// 用于缓存文件名的唯一化后缀。
func (id Identity) Digest() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(id.Canonical()))
}

// Component 返回 ObjID 中指定分量的值。
// 分量不存在时 ok 为 false。
func (id Identity) Component(name string) (int64, bool) {
	v, ok := id.ObjID[name]
	return v, ok
}

// Arg 返回 MaskArgs 中指定参数的值。
// 参数不存在时 ok 为 false。
func (id Identity) Arg(name string) (float64, bool) {
	v, ok := id.MaskArgs[name]
	return v, ok
}

// Equal 判断两个身份是否完全相同（规范串逐字相等）。
func (id Identity) Equal(other Identity) bool {
	return id.Canonical() == other.Canonical()
}

// String 实现 fmt.Stringer，返回规范串。
func (id Identity) String() string {
	return id.Canonical()
}

func canonicalInts(m map[string]int64) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatInt(m[k], 10))
	}
	return strings.Join(parts, ",")
}

func canonicalFloats(m map[string]float64) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(m[k], 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}
