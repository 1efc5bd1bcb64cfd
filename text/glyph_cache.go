package text

import "image"

// TextureBackend is the slice of the rendering backend the glyph cache
// needs: texture creation, sub-region upload and destruction. Pixel data
// is RGBA8 with premultiplied alpha.
type TextureBackend interface {
	CreateTexture(width, height int, pixels []byte) (uint64, error)
	UpdateTexture(id uint64, x, y, width, height int, pixels []byte) error
	DestroyTexture(id uint64)
}

// Region is a rasterized glyph's location in a cache atlas texture.
type Region struct {
	// Texture is the atlas texture handle; zero for blank glyphs.
	Texture uint64

	// U0, V0, U1, V1 are the normalized texture coordinates of the
	// glyph's pixels within the atlas.
	U0, V0, U1, V1 float32

	// Width and Height are the glyph mask dimensions in pixels.
	Width, Height int

	// BearingX is the offset from the pen position to the left edge of
	// the mask; BearingY the distance from the baseline up to its top.
	BearingX, BearingY float64
}

// CacheKey uniquely identifies a cached glyph rasterization.
type CacheKey struct {
	// FontID is the identity of the font across faces and sizes.
	FontID uint64

	// GID is the glyph index within the font.
	GID GlyphID

	// SizePx is the pixel size in 26.6 fixed point, so fractional sizes
	// get distinct entries.
	SizePx int32

	// Bucket is the sub-pixel bucket, see Quantize.
	Bucket uint8
}

// GlyphCacheConfig holds configuration for GlyphCache.
type GlyphCacheConfig struct {
	// MaxEntries bounds the cache with least-recently-used eviction.
	// Zero means unbounded, which is acceptable for session-scoped
	// caches; long-running processes should set a limit.
	//
	// Eviction bounds the entry count only. Shelf-packed atlas space
	// is not reclaimed when an entry is evicted, so atlas pages grow
	// monotonically until Clear is called.
	MaxEntries int

	// PageSize is the side length of atlas textures. Default: 512.
	PageSize int
}

// DefaultGlyphCacheConfig returns the default cache configuration:
// unbounded entries, 512x512 atlas pages.
func DefaultGlyphCacheConfig() GlyphCacheConfig {
	return GlyphCacheConfig{PageSize: 512}
}

// GlyphCacheStats holds cache statistics.
type GlyphCacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// cacheEntry is an internal cache entry in the LRU list.
type cacheEntry struct {
	key    CacheKey
	region Region

	prev *cacheEntry
	next *cacheEntry
}

// GlyphCache memoizes rasterized glyph bitmaps as regions of GPU atlas
// textures.
//
// The cache is owned by the render thread: lookups before GPU upload are
// pure CPU work, but insertions mutate atlas textures and must happen on
// the thread owning the rendering context. No internal locking is done.
//
// Entries become stale when the owning rendering context is destroyed or
// reset; Clear must be called then, since a stale region would reference
// released GPU memory.
type GlyphCache struct {
	backend TextureBackend
	config  GlyphCacheConfig

	entries map[CacheKey]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used

	pages []*atlasPage
	stats GlyphCacheStats
}

// NewGlyphCache creates a glyph cache uploading to the given backend.
func NewGlyphCache(backend TextureBackend, config GlyphCacheConfig) *GlyphCache {
	if config.PageSize <= 0 {
		config.PageSize = 512
	}
	return &GlyphCache{
		backend: backend,
		config:  config,
		entries: make(map[CacheKey]*cacheEntry),
	}
}

// GetOrRasterize returns the atlas region for a glyph, rasterizing and
// uploading it on first use. Repeated identical requests return the same
// region without re-rasterizing.
func (c *GlyphCache) GetOrRasterize(face Face, gid GlyphID, bucket uint8) (Region, error) {
	key := CacheKey{
		FontID: face.ID(),
		GID:    gid,
		SizePx: int32(face.Size() * 64),
		Bucket: bucket,
	}
	if e, ok := c.entries[key]; ok {
		c.moveToFront(e)
		c.stats.Hits++
		return e.region, nil
	}
	c.stats.Misses++

	img, err := face.Rasterize(gid, bucket)
	if err != nil {
		return Region{}, err
	}

	region, err := c.insert(img)
	if err != nil {
		return Region{}, err
	}

	e := &cacheEntry{key: key, region: region}
	c.entries[key] = e
	c.addToFront(e)
	if c.config.MaxEntries > 0 {
		for len(c.entries) > c.config.MaxEntries && c.tail != nil {
			c.removeTail()
			c.stats.Evictions++
		}
	}
	return region, nil
}

// Clear drops all entries and destroys the atlas textures.
// Call this when the owning rendering context is destroyed or reset.
func (c *GlyphCache) Clear() {
	for _, p := range c.pages {
		c.backend.DestroyTexture(p.texture)
	}
	c.pages = nil
	c.entries = make(map[CacheKey]*cacheEntry)
	c.head = nil
	c.tail = nil
}

// Len returns the number of cached glyph regions.
func (c *GlyphCache) Len() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *GlyphCache) Stats() GlyphCacheStats {
	return c.stats
}

// insert rasterizes nothing itself; it packs a glyph image into an atlas
// page, creating a new page when none has room, and uploads the pixels.
func (c *GlyphCache) insert(img *GlyphImage) (Region, error) {
	b := img.Mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		// Blank glyph (e.g. space): nothing to draw.
		return Region{BearingX: img.BearingX, BearingY: img.BearingY}, nil
	}

	var page *atlasPage
	var x, y int
	for _, p := range c.pages {
		if px, py, ok := p.alloc(w, h); ok {
			page, x, y = p, px, py
			break
		}
	}
	if page == nil {
		size := c.config.PageSize
		for size < w+2 || size < h+2 {
			size *= 2
		}
		tex, err := c.backend.CreateTexture(size, size, make([]byte, size*size*4))
		if err != nil {
			return Region{}, err
		}
		page = &atlasPage{texture: tex, size: size}
		c.pages = append(c.pages, page)
		x, y, _ = page.alloc(w, h)
	}

	if err := c.backend.UpdateTexture(page.texture, x, y, w, h, maskToRGBA(img.Mask)); err != nil {
		return Region{}, err
	}

	s := float32(page.size)
	return Region{
		Texture:  page.texture,
		U0:       float32(x) / s,
		V0:       float32(y) / s,
		U1:       float32(x+w) / s,
		V1:       float32(y+h) / s,
		Width:    w,
		Height:   h,
		BearingX: img.BearingX,
		BearingY: img.BearingY,
	}, nil
}

// maskToRGBA expands an alpha mask to premultiplied white RGBA, the form
// text quads modulate with their vertex color.
func maskToRGBA(mask *image.Alpha) []byte {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := mask.AlphaAt(b.Min.X+x, b.Min.Y+y).A
			i := (y*w + x) * 4
			out[i+0] = a
			out[i+1] = a
			out[i+2] = a
			out[i+3] = a
		}
	}
	return out
}

// atlasPage is a single shelf-packed atlas texture.
// Allocation is append-only; space is reclaimed when the cache is
// cleared, not per entry.
type atlasPage struct {
	texture uint64
	size    int
	shelves []shelf
	nextY   int
}

// shelf is one packing row: glyphs of similar height share a shelf.
type shelf struct {
	y, height, x int
}

// pad keeps one transparent pixel between atlas entries so linear
// sampling cannot bleed neighbors.
const pad = 1

// alloc reserves a w x h region, returning its top-left corner.
func (p *atlasPage) alloc(w, h int) (x, y int, ok bool) {
	for i := range p.shelves {
		s := &p.shelves[i]
		if h+pad <= s.height && s.x+w+pad <= p.size {
			x, y = s.x, s.y
			s.x += w + pad
			return x, y, true
		}
	}
	// Open a new shelf.
	sh := h + pad
	if p.nextY+sh > p.size || w+pad > p.size {
		return 0, 0, false
	}
	p.shelves = append(p.shelves, shelf{y: p.nextY, height: sh, x: w + pad})
	x, y = 0, p.nextY
	p.nextY += sh
	return x, y, true
}

// LRU list management.

func (c *GlyphCache) addToFront(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *GlyphCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *GlyphCache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *GlyphCache) removeTail() {
	e := c.tail
	if e == nil {
		return
	}
	c.unlink(e)
	delete(c.entries, e.key)
}
