package xobjconf

import (
	"fmt"
	"strings"

	"github.com/omeyang/simkit/internal/cachefile"
	"github.com/omeyang/simkit/pkg/object/xsimid"
)

// Spec 是解析并校验后的完整配置。
// 返回的实例与内部状态共享 map，调用方不得修改。
type Spec struct {
	Cache      CacheSpec      `koanf:"cache"`
	Fields     FieldRules     `koanf:"fields"`
	Masks      MaskRules      `koanf:"masks"`
	Extractors ExtractorRules `koanf:"extractors"`
}

// CacheSpec 描述缓存管理器的配置。
type CacheSpec struct {
	// Prefix 是缓存目录。为空时由管理器使用默认目录。
	Prefix string `koanf:"prefix"`

	// NameTemplate 是缓存文件名模板。为空时使用默认模板。
	NameTemplate string `koanf:"name_template"`

	// Disabled 为 true 时完全绕过缓存。
	Disabled bool `koanf:"disabled"`
}

// FieldRules 描述坐标字段的加载后处理规则。
type FieldRules struct {
	// Recenter 把坐标字段映射到其质心字段。
	// 加载坐标字段时会减去对应质心，如 xyz_g -> cops。
	Recenter map[string]string `koanf:"recenter"`

	// BoxWrap 把坐标字段映射到盒边长字段。
	// 重心平移后把坐标折回周期盒 [-L/2, L/2]，如 xyz_g -> Lbox。
	BoxWrap map[string]string `koanf:"box_wrap"`
}

// Binding 把一个掩码构造器绑定到 keytype。
type Binding struct {
	// Builder 是掩码构造器的注册名，如 "row-match"、"aperture"。
	Builder string `koanf:"builder"`

	// Params 是构造器参数，由各构造器自行解析校验。
	Params map[string]any `koanf:"params"`
}

// MaskRules 描述 keytype 到掩码构造器的绑定。
type MaskRules struct {
	// Bindings 是与掩码类型无关的绑定：该 keytype 的字段
	// 无论会话选择什么掩码类型都使用同一构造器。
	Bindings map[string]Binding `koanf:"bindings"`

	// ByMaskType 是按掩码类型细分的绑定，外层键是 keytype，
	// 内层键是掩码类型。出现在这里的 keytype 必须为会话使用的
	// 掩码类型提供绑定，否则解析失败。
	ByMaskType map[string]map[string]Binding `koanf:"by_mask_type"`
}

// Resolve 返回 keytype 在给定掩码类型下生效的掩码绑定。
// ByMaskType 优先于 Bindings；两处都未绑定返回 ErrNoMaskBinding。
func (r MaskRules) Resolve(keytype, maskType string) (Binding, error) {
	if perType, ok := r.ByMaskType[keytype]; ok {
		if b, ok := perType[maskType]; ok {
			return b, nil
		}
		return Binding{}, fmt.Errorf("%w: keytype %q has no binding for mask type %q",
			ErrNoMaskBinding, keytype, maskType)
	}
	if b, ok := r.Bindings[keytype]; ok {
		return b, nil
	}
	return Binding{}, fmt.Errorf("%w: keytype %q", ErrNoMaskBinding, keytype)
}

// ExtractorRules 描述抽取器的条件改写规则。
type ExtractorRules struct {
	Edits []ExtractorEdit `koanf:"edits"`
}

// ExtractorEdit 是一条抽取器改写规则：When 命中的抽取器按 Set 改写。
type ExtractorEdit struct {
	When EditWhen `koanf:"when"`
	Set  EditSet  `koanf:"set"`
}

// EditWhen 是改写规则的命中条件，所有非空条件按与逻辑组合。
type EditWhen struct {
	// KeyType 精确匹配抽取器的 keytype。
	KeyType string `koanf:"keytype"`

	// KeyTypeContains 子串匹配抽取器的 keytype，
	// 如 "particle" 命中所有粒子表。
	KeyTypeContains string `koanf:"keytype_contains"`

	// MaskType 精确匹配会话的掩码类型。
	MaskType string `koanf:"mask_type"`
}

// Matches 判断条件是否命中给定的抽取器 keytype 与会话掩码类型。
// 全空条件命中一切。
func (w EditWhen) Matches(keytype, maskType string) bool {
	if w.KeyType != "" && w.KeyType != keytype {
		return false
	}
	if w.KeyTypeContains != "" && !strings.Contains(keytype, w.KeyTypeContains) {
		return false
	}
	if w.MaskType != "" && w.MaskType != maskType {
		return false
	}
	return true
}

// EditSet 是改写内容。
type EditSet struct {
	// FileType 是命中后抽取器改用的文件类型。
	FileType string `koanf:"filetype"`
}

// specProbeID 用于在校验阶段试渲染文件名模板。
var specProbeID = xsimid.Identity{
	SnapID:   "snap",
	ObjID:    xsimid.ObjID{"fof": 1},
	MaskType: "probe",
	MaskArgs: xsimid.MaskArgs{"a": 1},
}

// Validate 校验配置内容。
func (s Spec) Validate() error {
	if s.Cache.NameTemplate != "" {
		if _, err := cachefile.RenderName(s.Cache.NameTemplate, specProbeID); err != nil {
			return fmt.Errorf("%w: cache.name_template: %w", ErrInvalidSpec, err)
		}
	}

	for coord, centroid := range s.Fields.Recenter {
		if coord == "" || centroid == "" {
			return fmt.Errorf("%w: fields.recenter entry %q -> %q", ErrInvalidSpec, coord, centroid)
		}
	}
	for coord, box := range s.Fields.BoxWrap {
		if coord == "" || box == "" {
			return fmt.Errorf("%w: fields.box_wrap entry %q -> %q", ErrInvalidSpec, coord, box)
		}
	}

	for keytype, b := range s.Masks.Bindings {
		if err := validateBinding(keytype, b); err != nil {
			return err
		}
	}
	for keytype, perType := range s.Masks.ByMaskType {
		if len(perType) == 0 {
			return fmt.Errorf("%w: masks.by_mask_type.%s is empty", ErrInvalidSpec, keytype)
		}
		for maskType, b := range perType {
			if maskType == "" {
				return fmt.Errorf("%w: masks.by_mask_type.%s has an empty mask type", ErrInvalidSpec, keytype)
			}
			if err := validateBinding(keytype, b); err != nil {
				return err
			}
		}
	}

	for i, edit := range s.Extractors.Edits {
		if edit.Set.FileType == "" {
			return fmt.Errorf("%w: extractors.edits[%d] sets nothing", ErrInvalidSpec, i)
		}
	}
	return nil
}

func validateBinding(keytype string, b Binding) error {
	if keytype == "" {
		return fmt.Errorf("%w: masks binding with an empty keytype", ErrInvalidSpec)
	}
	if b.Builder == "" {
		return fmt.Errorf("%w: masks binding for keytype %q has no builder", ErrInvalidSpec, keytype)
	}
	return nil
}
