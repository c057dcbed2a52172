// Node, leaf and item records are fixed-width and packed the way the
// teacher's on-disk B-tree pages are: a byte-offset table in the doc
// comment, then field-at-a-time get/set helpers over a raw byte slice.
//
// node record layout (32 bytes, host endianness — binary.NativeEndian):
//
//	[0-3]   int32   axis
//	[4-7]   —       padding
//	[8-15]  float64 split
//	[16-19] int32   low   (signed arena reference)
//	[20-23] int32   mid   (signed arena reference)
//	[24-27] int32   high  (signed arena reference)
//	[28-31] —       padding
//
// leaf record layout (8 bytes):
//
//	[0-3] int32 first_item (inclusive index into the item run)
//	[4-7] int32 last_item  (inclusive index into the item run)
//
// item record layout (4 bytes): a plain int32 item id.
//
// Child/parent references use a signed convention: ref >= 0 is a node
// index; ref < 0 encodes leaf index -ref-1.
package kdtree

import (
	"encoding/binary"
	"math"
)

const (
	nodeRecordSize = 32
	leafRecordSize = 8
	itemRecordSize = 4
)

func encodeLeafRef(leafIdx int32) int32 { return -(leafIdx + 1) }

func decodeRef(ref int32) (isLeaf bool, idx int32) {
	if ref >= 0 {
		return false, ref
	}
	return true, -ref - 1
}

type nodeRecord struct {
	axis             int32
	split            float64
	low, mid, high   int32
}

func encodeNode(n nodeRecord) []byte {
	buf := make([]byte, nodeRecordSize)
	binary.NativeEndian.PutUint32(buf[0:4], uint32(n.axis))
	binary.NativeEndian.PutUint64(buf[8:16], math.Float64bits(n.split))
	binary.NativeEndian.PutUint32(buf[16:20], uint32(n.low))
	binary.NativeEndian.PutUint32(buf[20:24], uint32(n.mid))
	binary.NativeEndian.PutUint32(buf[24:28], uint32(n.high))
	return buf
}

func decodeNode(buf []byte) nodeRecord {
	return nodeRecord{
		axis:  int32(binary.NativeEndian.Uint32(buf[0:4])),
		split: math.Float64frombits(binary.NativeEndian.Uint64(buf[8:16])),
		low:   int32(binary.NativeEndian.Uint32(buf[16:20])),
		mid:   int32(binary.NativeEndian.Uint32(buf[20:24])),
		high:  int32(binary.NativeEndian.Uint32(buf[24:28])),
	}
}

type leafRecord struct {
	firstItem, lastItem int32
}

func encodeLeaf(l leafRecord) []byte {
	buf := make([]byte, leafRecordSize)
	binary.NativeEndian.PutUint32(buf[0:4], uint32(l.firstItem))
	binary.NativeEndian.PutUint32(buf[4:8], uint32(l.lastItem))
	return buf
}

func decodeLeaf(buf []byte) leafRecord {
	return leafRecord{
		firstItem: int32(binary.NativeEndian.Uint32(buf[0:4])),
		lastItem:  int32(binary.NativeEndian.Uint32(buf[4:8])),
	}
}

func encodeItem(id int32) []byte {
	buf := make([]byte, itemRecordSize)
	binary.NativeEndian.PutUint32(buf, uint32(id))
	return buf
}

func decodeItem(buf []byte) int32 {
	return int32(binary.NativeEndian.Uint32(buf))
}
