package xsimid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr error
	}{
		{
			name: "valid",
			id: Identity{
				SnapID:   "snap127",
				ObjID:    ObjID{"fof": 1, "sub": 0},
				MaskType: "fofsub",
			},
		},
		{
			name:    "empty snap id",
			id:      Identity{ObjID: ObjID{"fof": 1}},
			wantErr: ErrEmptySnapID,
		},
		{
			name:    "empty obj id",
			id:      Identity{SnapID: "snap127"},
			wantErr: ErrEmptyObjID,
		},
		{
			name: "empty obj component name",
			id: Identity{
				SnapID: "snap127",
				ObjID:  ObjID{"": 1},
			},
			wantErr: ErrEmptyComponent,
		},
		{
			name: "empty mask arg name",
			id: Identity{
				SnapID:   "snap127",
				ObjID:    ObjID{"fof": 1},
				MaskArgs: MaskArgs{"": 30},
			},
			wantErr: ErrEmptyComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestIdentity_Canonical(t *testing.T) {
	id := Identity{
		SnapID:   "RES3_hydro_vol1_snap127",
		ObjID:    ObjID{"sub": 0, "fof": 1},
		MaskType: "aperture",
		MaskArgs: MaskArgs{"aperture": 30},
	}

	want := "snap=RES3_hydro_vol1_snap127;obj=fof=1,sub=0;mask=aperture;args=aperture=30"
	assert.Equal(t, want, id.Canonical())
	assert.Equal(t, want, id.String())
}

func TestIdentity_Canonical_SortsComponents(t *testing.T) {
	a := Identity{
		SnapID: "s",
		ObjID:  ObjID{"b": 2, "a": 1, "c": 3},
	}
	b := Identity{
		SnapID: "s",
		ObjID:  ObjID{"c": 3, "a": 1, "b": 2},
	}

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.True(t, a.Equal(b))
}

func TestIdentity_Digest(t *testing.T) {
	id := Identity{
		SnapID:   "s",
		ObjID:    ObjID{"fof": 1},
		MaskType: "fof",
	}

	d1 := id.Digest()
	d2 := id.Digest()
	assert.Len(t, d1, 16)
	assert.Equal(t, d1, d2, "digest must be deterministic")

	other := Identity{
		SnapID:   "s",
		ObjID:    ObjID{"fof": 2},
		MaskType: "fof",
	}
	assert.NotEqual(t, d1, other.Digest(), "distinct identities must get distinct digests")
}

func TestIdentity_Digest_MaskArgsMatter(t *testing.T) {
	base := Identity{
		SnapID:   "s",
		ObjID:    ObjID{"fof": 1, "sub": 0},
		MaskType: "aperture",
		MaskArgs: MaskArgs{"aperture": 30},
	}
	wider := Identity{
		SnapID:   "s",
		ObjID:    ObjID{"fof": 1, "sub": 0},
		MaskType: "aperture",
		MaskArgs: MaskArgs{"aperture": 100},
	}

	assert.NotEqual(t, base.Digest(), wider.Digest())
}

func TestIdentity_Accessors(t *testing.T) {
	id := Identity{
		SnapID:   "s",
		ObjID:    ObjID{"fof": 7},
		MaskType: "aperture",
		MaskArgs: MaskArgs{"aperture": 12.5},
	}

	v, ok := id.Component("fof")
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = id.Component("sub")
	assert.False(t, ok)

	a, ok := id.Arg("aperture")
	require.True(t, ok)
	assert.InDelta(t, 12.5, a, 0)

	_, ok = id.Arg("radius")
	assert.False(t, ok)
}

func TestIdentity_FloatFormatting(t *testing.T) {
	// 最短往返表示：30.0 输出 "30"，0.1 输出 "0.1"。
	id := Identity{
		SnapID:   "s",
		ObjID:    ObjID{"fof": 1},
		MaskType: "aperture",
		MaskArgs: MaskArgs{"r": 0.1, "q": 30.0},
	}
	assert.Contains(t, id.Canonical(), "q=30,r=0.1")
}
