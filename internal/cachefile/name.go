package cachefile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/omeyang/simkit/pkg/object/xsimid"
)

// 命名相关错误。
var (
	// ErrBadTemplate 表示文件名模板含有未知占位符或未闭合的花括号。
	ErrBadTemplate = errors.New("cachefile: bad name template")

	// ErrBadName 表示渲染结果不是合法的单路径段文件名。
	ErrBadName = errors.New("cachefile: bad cache file name")
)

// DefaultNameTemplate 是缓存文件名的默认模板。
const DefaultNameTemplate = "SimObjCache_{snap}_{obj}_{mask}_{digest}.gob"

// LockSuffix 是锁文件相对缓存文件的后缀。
const LockSuffix = ".lock"

// maxNameLen 限制渲染后的文件名长度。
// 常见文件系统的 NAME_MAX 为 255 字节，此处为 ".lock" 后缀
// 与原子写入的临时文件后缀预留余量。
const maxNameLen = 240

// LockPath 返回缓存文件对应的锁文件路径。
func LockPath(cachePath string) string {
	return cachePath + LockSuffix
}

// SanitizeToken 把 token 中不属于 [A-Za-z0-9._-] 的字符统一替换为 '-'。
// 替换而非删除，保证不同 token 不会因删除而合并成同名。
func SanitizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// RenderName 按模板渲染身份对应的缓存文件名。
//
// 支持的占位符：
//   - {snap}: 快照标识
//   - {obj}: 对象标识的规范串（k=v 逗号连接）
//   - {mask}: 掩码类型，无掩码时为 "none"
//   - {digest}: 身份摘要的 16 位十六进制
//
// 所有占位符取值先经 SanitizeToken 净化。模板中的字面文本原样保留，
// 渲染结果整体通过 ValidateName 校验。
func RenderName(template string, id xsimid.Identity) (string, error) {
	tokens := map[string]string{
		"snap":   SanitizeToken(string(id.SnapID)),
		"obj":    SanitizeToken(id.CanonicalObj()),
		"mask":   SanitizeToken(maskToken(id.MaskType)),
		"digest": id.Digest(),
	}

	var b strings.Builder
	b.Grow(len(template) + 32)
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return "", fmt.Errorf("%w: unclosed '{' in %q", ErrBadTemplate, template)
		}
		key := rest[open+1 : open+closing]
		val, ok := tokens[key]
		if !ok {
			return "", fmt.Errorf("%w: unknown placeholder {%s}", ErrBadTemplate, key)
		}
		b.WriteString(val)
		rest = rest[open+closing+1:]
	}

	name := b.String()
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func maskToken(maskType string) string {
	if maskType == "" {
		return "none"
	}
	return maskType
}

// ValidateName 校验文件名是否为合法的单路径段。
// 拒绝空名、路径分隔符、空字节、"." 与 ".."，以及超长名称。
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrBadName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q contains a path separator", ErrBadName, name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: name contains a null byte", ErrBadName)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: name is %d bytes, limit %d", ErrBadName, len(name), maxNameLen)
	}
	return nil
}
