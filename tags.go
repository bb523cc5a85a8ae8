package anontable

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// tagIndex keeps one posting list of row indices per tag. Rows are appended
// with increasing indices, so ascending bitmap order is registration order.
type tagIndex struct {
	sets [256]*roaring.Bitmap
}

func (ti *tagIndex) add(tag Tag, row int) {
	bm := ti.sets[tag]
	if bm == nil {
		bm = roaring.New()
		ti.sets[tag] = bm
	}
	bm.Add(uint32(row))
}

// rows returns nil if tag was never used.
func (ti *tagIndex) rows(tag Tag) []uint32 {
	bm := ti.sets[tag]
	if bm == nil {
		return nil
	}
	return bm.ToArray()
}

func (ti *tagIndex) tags() []Tag {
	var result []Tag
	for i, bm := range ti.sets {
		if bm != nil {
			result = append(result, Tag(i))
		}
	}
	return result
}

func (ti *tagIndex) postings() int {
	var n uint64
	for _, bm := range ti.sets {
		if bm != nil {
			n += bm.GetCardinality()
		}
	}
	return int(n)
}

func (ti *tagIndex) reset() {
	ti.sets = [256]*roaring.Bitmap{}
}
