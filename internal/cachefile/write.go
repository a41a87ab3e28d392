package cachefile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteAtomic 原子写入文件：先写同目录临时文件，再重命名到目标路径。
// 同目录保证重命名不跨文件系统；使用 os.CreateTemp 的随机文件名，
// 防止并发写者互相覆盖临时文件。
func WriteAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cachefile: create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cachefile: write temp file: %w", err)
	}
	if err := f.Chmod(mode); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cachefile: chmod temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cachefile: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cachefile: rename temp file: %w", err)
	}
	return nil
}
