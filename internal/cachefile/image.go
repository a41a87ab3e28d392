package cachefile

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// ErrBadImage 表示缓存文件内容无法解码或版本不受支持。
// 管理器把它视为可恢复错误：按空缓存处理，下次关闭时整体重写。
var ErrBadImage = errors.New("cachefile: bad cache image")

// ImageVersion 是当前磁盘镜像的格式版本。
// 解码时版本不匹配按 ErrBadImage 处理，不做跨版本迁移。
const ImageVersion = 1

// Image 是缓存文件的内存镜像：一份身份加一组字段数组。
type Image struct {
	Version  int
	Identity xsimid.Identity
	SavedAt  time.Time
	Fields   map[string]*xarray.Array
}

// NewImage 返回给定身份的空镜像。
func NewImage(id xsimid.Identity) *Image {
	return &Image{
		Version:  ImageVersion,
		Identity: id,
		Fields:   make(map[string]*xarray.Array),
	}
}

// EncodeImage 把镜像编码为 gob 字节串。
func EncodeImage(img *Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(img); err != nil {
		return nil, fmt.Errorf("cachefile: encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeImage 解码 gob 字节串为镜像。
// 字节串损坏或版本不匹配时返回 ErrBadImage。
func DecodeImage(data []byte) (*Image, error) {
	var img Image
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadImage, img.Version, ImageVersion)
	}
	if img.Fields == nil {
		img.Fields = make(map[string]*xarray.Array)
	}
	return &img, nil
}

// ReadImage 读取并解码缓存文件。
// 文件不存在时透传 fs.ErrNotExist，由调用方决定是否按空缓存处理。
func ReadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cachefile: read image: %w", err)
	}
	return DecodeImage(data)
}

// WriteImage 原子写入缓存文件：同目录临时文件加重命名。
func WriteImage(path string, img *Image, mode fs.FileMode) error {
	data, err := EncodeImage(img)
	if err != nil {
		return err
	}
	return WriteAtomic(path, data, mode)
}
