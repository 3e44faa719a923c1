package iff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLeafChunk(t *testing.T) {
	t.Parallel()

	input := []byte{
		'F', 'O', 'R', 'M',
		0x00, 0x00, 0x00, 0x11,
		'S', 'N', 'A', 'P',
		'C', 'R', 'A', 'C',
		0x00, 0x00, 0x00, 0x05,
		'h', 'e', 'l', 'l', 'o',
	}

	root, err := Decode(input)
	require.NoError(t, err)
	assert.Equal(t, "FORM", root.Tag)
	assert.Equal(t, "SNAP", root.Type)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "CRAC", root.Children[0].Tag)
	assert.Equal(t, []byte("hello"), root.Children[0].Data)
}

func TestDecodeNestedForms(t *testing.T) {
	t.Parallel()

	tree := &Node{
		Tag:  "FORM",
		Type: "DTII",
		Children: []Node{
			{
				Tag:  "FORM",
				Type: "0001",
				Children: []Node{
					{Tag: "COLS", Data: []byte{0x01, 0x00, 0x00, 0x00, 'a', 0x00}},
					{Tag: "TYPE", Data: []byte{'s', 0x00}},
				},
			},
		},
	}

	root, err := Decode(Encode(tree))
	require.NoError(t, err)
	assert.Equal(t, tree, root)

	inner := root.Form("0001")
	require.NotNil(t, inner)
	assert.NotNil(t, inner.Chunk("COLS"))
	assert.NotNil(t, inner.Chunk("TYPE"))
	assert.Nil(t, inner.Chunk("ROWS"))
	assert.Nil(t, root.Form("0002"))
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string][]byte{
		"truncated header": {'F', 'O', 'R', 'M', 0x00},
		"size overrun":     {'F', 'O', 'R', 'M', 0x00, 0x00, 0x00, 0x20, 'D', 'T', 'I', 'I'},
		"group sans type":  {'F', 'O', 'R', 'M', 0x00, 0x00, 0x00, 0x00},
		"trailing bytes": {
			'C', 'R', 'A', 'C',
			0x00, 0x00, 0x00, 0x01,
			0x07, 0xFF,
		},
	}
	for name, input := range cases {
		_, err := Decode(input)
		assert.ErrorIs(t, err, ErrMalformed, name)
	}
}
