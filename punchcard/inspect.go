package punchcard

import "github.com/RoaringBitmap/roaring/v2/roaring64"

// ClaimedSet materializes the claimed slot indices as a Roaring bitmap.
// Intended for inspection and audit tooling; the record itself always
// remains the packed byte bitset.
func (p Punchcard) ClaimedSet() *roaring64.Bitmap {
	set := roaring64.New()
	for i := uint64(0); i < p.Header.Capacity(); i++ {
		if p.Bits.Get(i) {
			set.Add(i)
		}
	}
	return set
}

// UnclaimedSet materializes the still-claimable slot indices as a
// Roaring bitmap.
func (p Punchcard) UnclaimedSet() *roaring64.Bitmap {
	set := roaring64.New()
	for i := uint64(0); i < p.Header.Capacity(); i++ {
		if !p.Bits.Get(i) {
			set.Add(i)
		}
	}
	return set
}
