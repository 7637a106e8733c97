package texture

import (
	"fmt"

	lotus "github.com/sehnryr/lotus-lib"
)

// Kind is the file-type tag an H-cache header carries for texture assets.
type Kind uint32

const (
	KindDiffuseEmissionTint       Kind = 0xA3
	KindBillboardSpritemapDiffuse Kind = 0xA4
	KindBillboardSpritemapNormal  Kind = 0xA5
	KindRoughness                 Kind = 0xA7
	KindSkybox                    Kind = 0xAB
	KindTexture174                Kind = 0xAE
	KindTexture176                Kind = 0xB0
	KindCubemap                   Kind = 0xB1
	KindNormalMap                 Kind = 0xB8
	KindPackmap                   Kind = 0xBC
	KindTexture194                Kind = 0xC2
	KindDetailsPack               Kind = 0xC3
)

// ParseKind validates a raw header file-type tag.
func ParseKind(v uint32) (Kind, error) {
	switch Kind(v) {
	case KindDiffuseEmissionTint,
		KindBillboardSpritemapDiffuse,
		KindBillboardSpritemapNormal,
		KindRoughness,
		KindSkybox,
		KindTexture174,
		KindTexture176,
		KindCubemap,
		KindNormalMap,
		KindPackmap,
		KindTexture194,
		KindDetailsPack:
		return Kind(v), nil
	}
	return 0, &lotus.FormatError{Msg: fmt.Sprintf("unknown texture kind %#x", v)}
}
