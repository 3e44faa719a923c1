// Package iff parses IFF container files: a tree of tagged chunks where
// group chunks (FORM, LIST, CAT, PROP) carry a four-character type and
// nested children, and leaf chunks carry raw payload bytes.
//
// Chunk sizes are big-endian per EA-IFF 85; the payloads of the game's
// leaf chunks are little-endian and are decoded by the consumers of
// those chunks.
package iff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed means the data does not parse as an IFF tree.
var ErrMalformed = errors.New("malformed iff")

// Node is one chunk in the tree. Group chunks have Type and Children
// set; leaf chunks have Data set.
type Node struct {
	Tag      string
	Type     string
	Data     []byte
	Children []Node
}

func isGroupTag(tag string) bool {
	switch tag {
	case "FORM", "LIST", "CAT ", "PROP":
		return true
	}
	return false
}

// Decode parses data as a single top-level chunk, normally a FORM.
func Decode(data []byte) (*Node, error) {
	node, rest, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after root chunk", ErrMalformed, len(rest))
	}
	return &node, nil
}

func decodeNode(data []byte) (Node, []byte, error) {
	if len(data) < 8 {
		return Node{}, nil, fmt.Errorf("%w: truncated chunk header", ErrMalformed)
	}
	tag := string(data[:4])
	size := binary.BigEndian.Uint32(data[4:8])
	if uint32(len(data)-8) < size {
		return Node{}, nil, fmt.Errorf("%w: chunk %q claims %d bytes, %d remain", ErrMalformed, tag, size, len(data)-8)
	}
	body := data[8 : 8+size]
	rest := data[8+size:]

	if !isGroupTag(tag) {
		return Node{Tag: tag, Data: body}, rest, nil
	}

	if len(body) < 4 {
		return Node{}, nil, fmt.Errorf("%w: group %q has no type", ErrMalformed, tag)
	}
	node := Node{Tag: tag, Type: string(body[:4])}
	body = body[4:]
	for len(body) > 0 {
		child, remaining, err := decodeNode(body)
		if err != nil {
			return Node{}, nil, err
		}
		node.Children = append(node.Children, child)
		body = remaining
	}
	return node, rest, nil
}

// Form returns the first child group with the given type, or nil.
func (n *Node) Form(typ string) *Node {
	for i := range n.Children {
		if isGroupTag(n.Children[i].Tag) && n.Children[i].Type == typ {
			return &n.Children[i]
		}
	}
	return nil
}

// Chunk returns the first leaf child with the given tag, or nil.
func (n *Node) Chunk(tag string) *Node {
	for i := range n.Children {
		if n.Children[i].Tag == tag {
			return &n.Children[i]
		}
	}
	return nil
}

// Encode serializes the tree rooted at n.
func Encode(n *Node) []byte {
	var buf bytes.Buffer
	encodeNode(&buf, n)
	return buf.Bytes()
}

func encodeNode(buf *bytes.Buffer, n *Node) {
	buf.WriteString(n.Tag)
	sizeAt := buf.Len()
	buf.Write([]byte{0, 0, 0, 0})
	if isGroupTag(n.Tag) {
		buf.WriteString(n.Type)
		for i := range n.Children {
			encodeNode(buf, &n.Children[i])
		}
	} else {
		buf.Write(n.Data)
	}
	binary.BigEndian.PutUint32(buf.Bytes()[sizeAt:], uint32(buf.Len()-sizeAt-4))
}
