package xsimid

import "errors"

var (
	// ErrEmptySnapID 表示快照 ID 为空。
	ErrEmptySnapID = errors.New("xsimid: empty snap id")

	// ErrEmptyObjID 表示对象 ID 没有任何分量。
	ErrEmptyObjID = errors.New("xsimid: empty obj id")

	// ErrEmptyComponent 表示 ObjID 或 MaskArgs 中存在空键名。
	ErrEmptyComponent = errors.New("xsimid: empty component name")
)
