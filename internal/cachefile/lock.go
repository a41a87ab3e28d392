package cachefile

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
)

// LockInfo 是锁文件的持有者信息，JSON 编码写入锁文件。
// 运维排障时 cat 锁文件即可看到持有进程与时间。
type LockInfo struct {
	Host      string    `json:"host"`
	PID       int       `json:"pid"`
	SessionID string    `json:"session_id"`
	LockedAt  time.Time `json:"locked_at"`
}

// NewLockInfo 采集当前进程的持有者信息。
// 主机名不可得时记为 "unknown"，不阻断加锁。
func NewLockInfo() LockInfo {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return LockInfo{
		Host:      host,
		PID:       os.Getpid(),
		SessionID: uuid.NewString(),
		LockedAt:  time.Now().UTC(),
	}
}

// EncodeLockInfo 把持有者信息编码为带换行的 JSON。
func EncodeLockInfo(info LockInfo) ([]byte, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("cachefile: encode lock info: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeLockInfo 解码锁文件内容。
func DecodeLockInfo(data []byte) (LockInfo, error) {
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return LockInfo{}, fmt.Errorf("cachefile: decode lock info: %w", err)
	}
	return info, nil
}

// AcquireLock 以 O_CREATE|O_EXCL 原子创建锁文件并写入持有者信息。
// 锁的含义是"锁文件存在"，创建成功即持有。
// 文件已存在时返回包装后的 fs.ErrExist，调用方据此判定缓存被占用。
func AcquireLock(path string, info LockInfo, mode fs.FileMode) error {
	body, err := EncodeLockInfo(info)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("cachefile: acquire lock: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("cachefile: write lock info: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("cachefile: close lock file: %w", err)
	}
	return nil
}

// ReadLock 读取并解码锁文件的持有者信息。
// 文件不存在时透传 fs.ErrNotExist。
func ReadLock(path string) (LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LockInfo{}, fmt.Errorf("cachefile: read lock: %w", err)
	}
	return DecodeLockInfo(data)
}

// ReleaseLock 删除锁文件。
// 文件不存在说明锁被外部删除，透传 fs.ErrNotExist 供调用方上报。
func ReleaseLock(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("cachefile: release lock: %w", err)
	}
	return nil
}
