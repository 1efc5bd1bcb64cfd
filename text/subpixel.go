package text

import "math"

// SubpixelBuckets is the number of horizontal sub-pixel positions a glyph
// may be rasterized at. Fractional pen positions are quantized into this
// many buckets so visually-adjacent offsets share one rasterization;
// integer-pixel positions always land in bucket 0 and reuse exactly.
//
// Four buckets trade a slight horizontal approximation (at most 1/8 px)
// for a 4x bound on cache entries per glyph.
const SubpixelBuckets = 4

// Quantize splits a horizontal pen position into its integer pixel part
// and sub-pixel bucket.
func Quantize(x float64) (intX int, bucket uint8) {
	floor := math.Floor(x)
	frac := x - floor
	b := int(frac * SubpixelBuckets)
	if b >= SubpixelBuckets {
		b = SubpixelBuckets - 1
	}
	return int(floor), uint8(b)
}

// SubpixelOffset returns the fractional x offset a bucket rasterizes at.
func SubpixelOffset(bucket uint8) float64 {
	return float64(bucket) / SubpixelBuckets
}
