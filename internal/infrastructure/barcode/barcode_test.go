package barcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode128(t *testing.T) {
	data, err := Code128("SKU-0001", DefaultWidth, DefaultHeight)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

func TestCode128_Errors(t *testing.T) {
	_, err := Code128("   ", DefaultWidth, DefaultHeight)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = Code128("SKU", 0, DefaultHeight)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Code128("SKU", DefaultWidth, 5000)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestGenerateEAN13(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateEAN13("")
		require.NoError(t, err)
		assert.Len(t, code, 13)
		assert.Equal(t, byte('2'), code[0])
		assert.True(t, ValidEAN13(code), code)
	}

	code, err := GenerateEAN13("616")
	require.NoError(t, err)
	assert.Equal(t, "616", code[:3])

	_, err = GenerateEAN13("12a")
	assert.Error(t, err)
}

func TestValidEAN13(t *testing.T) {
	assert.True(t, ValidEAN13("4006381333931"))
	assert.False(t, ValidEAN13("4006381333932"))
	assert.False(t, ValidEAN13("400638133393"))
	assert.False(t, ValidEAN13("40063813339a1"))
}

func TestEncode_PicksSymbology(t *testing.T) {
	data, err := Encode("4006381333931", DefaultWidth, DefaultHeight)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	data, err = Encode("ABC-123", DefaultWidth, DefaultHeight)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestRenderLabel(t *testing.T) {
	data, err := RenderLabel(Label{Name: "Whole Milk 500ml", Price: "KES 65.00", Code: "MLK-500"})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, LabelWidth, img.Bounds().Dx())
	assert.Equal(t, LabelHeight, img.Bounds().Dy())

	_, err = RenderLabel(Label{Name: "No code"})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
