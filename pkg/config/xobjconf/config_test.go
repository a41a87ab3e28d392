package xobjconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
cache:
  prefix: /scratch/simobj-cache
  name_template: "SimObjCache_{snap}_{obj}_{mask}_{digest}.gob"
  disabled: false

fields:
  recenter:
    xyz_g: cops
    vxyz_g: vcents
  box_wrap:
    xyz_g: Lbox

masks:
  bindings:
    header:
      builder: all
    group:
      builder: row-match
      params:
        match:
          gns: fof
          sgns: sub
  by_mask_type:
    particle_g:
      fof:
        builder: field-equals
        params:
          field: ng_g
          component: fof
      aperture:
        builder: aperture
        params:
          coords_field: xyz_g
          centre_field: cops
          centre_match:
            gns: fof
            sgns: sub
          box_field: Lbox
          arg: aperture

extractors:
  edits:
    - when:
        keytype_contains: particle
        mask_type: aperture
      set:
        filetype: snapshot
`

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	spec := cfg.Spec()
	assert.Equal(t, "/scratch/simobj-cache", spec.Cache.Prefix)
	assert.Equal(t, "SimObjCache_{snap}_{obj}_{mask}_{digest}.gob", spec.Cache.NameTemplate)
	assert.False(t, spec.Cache.Disabled)

	assert.Equal(t, "cops", spec.Fields.Recenter["xyz_g"])
	assert.Equal(t, "vcents", spec.Fields.Recenter["vxyz_g"])
	assert.Equal(t, "Lbox", spec.Fields.BoxWrap["xyz_g"])

	require.Contains(t, spec.Masks.Bindings, "group")
	assert.Equal(t, "row-match", spec.Masks.Bindings["group"].Builder)
	require.Contains(t, spec.Masks.ByMaskType, "particle_g")
	assert.Equal(t, "aperture", spec.Masks.ByMaskType["particle_g"]["aperture"].Builder)
	assert.Equal(t, "xyz_g", spec.Masks.ByMaskType["particle_g"]["aperture"].Params["coords_field"])

	require.Len(t, spec.Extractors.Edits, 1)
	assert.Equal(t, "particle", spec.Extractors.Edits[0].When.KeyTypeContains)
	assert.Equal(t, "snapshot", spec.Extractors.Edits[0].Set.FileType)

	assert.Equal(t, "", cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())
}

func TestNewFromBytesEmpty(t *testing.T) {
	cfg, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Spec{}, cfg.Spec())
}

func TestNewFromBytesBadFormat(t *testing.T) {
	_, err := NewFromBytes([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNewFromBytesBadYAML(t *testing.T) {
	_, err := NewFromBytes([]byte(":\n  - ["), FormatYAML)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytesInvalidSpec(t *testing.T) {
	bad := `
masks:
  bindings:
    group: {}
`
	_, err := NewFromBytes([]byte(bad), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simobj.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, "/scratch/simobj-cache", cfg.Spec().Cache.Prefix)
}

func TestNewErrors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simobj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  prefix: /a\n"), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "/a", cfg.Spec().Cache.Prefix)

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  prefix: /b\n"), 0o644))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, "/b", cfg.Spec().Cache.Prefix)
}

func TestReloadKeepsOldSpecOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simobj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  prefix: /a\n"), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("masks:\n  bindings:\n    g: {}\n"), 0o644))
	err = cfg.Reload()
	require.ErrorIs(t, err, ErrInvalidSpec)
	assert.Equal(t, "/a", cfg.Spec().Cache.Prefix, "old spec retained after failed reload")
}

func TestReloadFromBytesRejected(t *testing.T) {
	cfg, err := NewFromBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	assert.Error(t, cfg.Reload())
}

func TestUnmarshalSubpath(t *testing.T) {
	cfg, err := NewFromBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	var cache CacheSpec
	require.NoError(t, cfg.Unmarshal("cache", &cache))
	assert.Equal(t, "/scratch/simobj-cache", cache.Prefix)
}
