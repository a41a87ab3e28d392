package xobjconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Config 定义配置接口。
// 典型用法是读取 Spec()；需要 Spec 之外的自定义键时
// 可通过 Client() 直接使用底层 koanf 实例。
type Config interface {
	// Client 返回底层的 koanf 实例。
	Client() *koanf.Koanf

	// Spec 返回解析后的典型配置。
	// 返回值与内部状态共享，调用方不得修改。
	Spec() Spec

	// Unmarshal 将指定路径的配置反序列化到目标结构体。
	// path 为空字符串时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Reload 重新加载配置文件。并发安全。
	// 新配置解析或校验失败时保留旧配置并返回错误。
	// 仅对从文件创建的 Config 有效。
	Reload() error

	// Path 返回配置文件路径。从字节数据创建的 Config 返回空字符串。
	Path() string

	// Format 返回配置格式。
	Format() Format
}

// koanfConfig 是 Config 接口的 koanf 实现。
type koanfConfig struct {
	path    string
	format  Format
	opts    *Options
	isBytes bool

	mu   sync.RWMutex
	k    *koanf.Koanf
	spec Spec
}

// New 从文件路径创建配置实例。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	k, spec, err := parse(data, format, options)
	if err != nil {
		return nil, err
	}

	return &koanfConfig{
		path:   path,
		format: format,
		opts:   options,
		k:      k,
		spec:   spec,
	}, nil
}

// NewFromBytes 从字节数据创建配置实例，需要显式指定格式。
// 空数据会创建一个空配置，Spec 为零值。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	k, spec, err := parse(data, format, options)
	if err != nil {
		return nil, err
	}

	return &koanfConfig{
		format:  format,
		opts:    options,
		isBytes: true,
		k:       k,
		spec:    spec,
	}, nil
}

// Client 返回底层的 koanf 实例。
func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

// Spec 返回解析后的典型配置。
func (c *koanfConfig) Spec() Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spec
}

// Unmarshal 将指定路径的配置反序列化到目标结构体。
func (c *koanfConfig) Unmarshal(path string, target any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return unmarshal(c.k, c.opts.Tag, path, target)
}

// Reload 重新加载配置文件。
func (c *koanfConfig) Reload() error {
	if c.isBytes {
		return fmt.Errorf("%w: cannot reload config created from bytes", ErrLoadFailed)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	k, spec, err := parse(data, c.format, c.opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.k = k
	c.spec = spec
	c.mu.Unlock()
	return nil
}

// Path 返回配置文件路径。
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *koanfConfig) Format() Format {
	return c.format
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// parse 解析并校验配置数据，返回 koanf 实例与典型配置。
func parse(data []byte, format Format, opts *Options) (*koanf.Koanf, Spec, error) {
	k := koanf.New(opts.Delim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, Spec{}, err
		}
	}

	var spec Spec
	if err := unmarshal(k, opts.Tag, "", &spec); err != nil {
		return nil, Spec{}, err
	}
	if err := spec.Validate(); err != nil {
		return nil, Spec{}, err
	}
	return k, spec, nil
}

func unmarshal(k *koanf.Koanf, tag, path string, target any) error {
	if err := k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// loadData 加载数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
