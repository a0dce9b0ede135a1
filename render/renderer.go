// Package render implements the Frame Cache & Renderer orchestration
// (§4.7), the two state machines governing renderer lifecycle (§4.8),
// and the library-level external interface (§6): Library owns the
// font matcher, glyph cache and blur cache every Renderer shares;
// Subtitles wraps one parsed document; Renderer binds one Subtitles
// to one target Context and produces frames against it.
//
// This is the one package allowed to know about every other layer at
// once — selector for picking active boxes, layout/inline for turning
// them into glyph runs, paint for turning those into draw commands,
// and raster/sw for executing them against a caller-owned pixel
// buffer — mirroring the teacher's own top-level engine packages,
// which are the only place frame.Box, frame.layout and engine/text
// are all imported together.
package render

import (
	"image"

	"github.com/afishhh/subrandr/cache"
	"github.com/afishhh/subrandr/core/errs"
	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/rendercontext"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
	"github.com/afishhh/subrandr/font"
	"github.com/afishhh/subrandr/format/srv3"
	"github.com/afishhh/subrandr/format/webvtt"
	"github.com/afishhh/subrandr/layout/inline"
	"github.com/afishhh/subrandr/paint"
	sw "github.com/afishhh/subrandr/raster/sw"
	"github.com/afishhh/subrandr/sbrlog"
	"github.com/afishhh/subrandr/selector"
)

// Library owns the process-scoped (in Go terms: shared-by-convention)
// resources behind library_init in §6: the font matcher with its
// registered providers, and the glyph and blur caches every Renderer
// created from it shares — §4.2's "default 32 MiB for glyphs" budget
// and a separate 16 MiB budget for blurred shadow coverage.
type Library struct {
	matcher     *font.Matcher
	memProvider *font.MemoryProvider
	glyphs      *font.GlyphCache
	blurs       *sw.BlurCache
	errs        *errs.Slot
}

// defaultBlurCacheBudget is the soft byte cap for a Library's blur
// cache, sized smaller than the glyph cache since blurred coverage is
// the less frequently distinct of the two (most events in a document
// share one edge style and one glyph shape set).
const defaultBlurCacheBudget = 16 << 20

// NewLibrary creates a Library with an empty in-memory font provider
// already registered (so AddMemoryFont works immediately) and fresh
// glyph/blur caches, corresponding to library_init in §6.
func NewLibrary() *Library {
	mp := font.NewMemoryProvider()
	return &Library{
		matcher:     font.NewMatcher(mp),
		memProvider: mp,
		glyphs:      font.NewGlyphCache(font.DefaultGlyphCacheBudget),
		blurs:       sw.NewBlurCache(defaultBlurCacheBudget),
		errs:        errs.NewSlot(),
	}
}

// AddMemoryFont registers a font file's raw bytes under family,
// corresponding to custom_font_provider_add_from_memory in §6.
func (l *Library) AddMemoryFont(family string, weight style.Weight, italic bool, data []byte) {
	l.memProvider.AddFromMemory(family, weight, italic, data)
}

// AddProvider registers an additional font discovery backend (e.g. a
// font/sysprovider backend), queried after providers already
// registered.
func (l *Library) AddProvider(p font.Provider) {
	l.matcher.AddProvider(p)
}

// LastError, LastErrorString and LastErrorCode mirror
// get_last_error_string/get_last_error_code for load_text failures,
// which happen at the Library level rather than on any Renderer.
func (l *Library) LastError() error        { return l.errs.Last() }
func (l *Library) LastErrorString() string { return l.errs.LastString() }
func (l *Library) LastErrorCode() errs.Kind { return l.errs.LastCode() }

// Subtitles wraps one parsed, immutable document, corresponding to
// the opaque Subtitles handle in §6. Once created it carries no
// reference to the Library that parsed it — a Subtitles may be bound
// to any Renderer, from any Library, including ones other than the
// one that loaded it.
type Subtitles struct {
	doc *document.Subtitles
}

// LoadText detects the subtitle format of data by magic (§6
// load_text) and parses it, dispatching to format.srv3 or
// format.webvtt. languageHint is passed to the chosen parser; neither
// parser uses it.
func (l *Library) LoadText(data []byte, languageHint string) (*Subtitles, error) {
	var doc *document.Subtitles
	var err error
	switch {
	case srv3.Sniff(data):
		doc, err = srv3.Parse(data, languageHint)
	case webvtt.Sniff(data):
		doc, err = webvtt.Parse(data, languageHint)
	default:
		err = errs.New(errs.UnrecognizedFormat, "load_text: input matches neither the srv3 nor webvtt magic")
	}
	if err != nil {
		l.errs.Set(err)
		return nil, err
	}
	l.errs.Clear()
	return &Subtitles{doc: doc}, nil
}

// maxCachedLayouts bounds the per-box layout cache's entry count
// (§4.7 step 1); the cache's sizer below counts entries rather than
// bytes since a Result's own memory footprint is small and dominated
// by slice header overhead, not worth tracking precisely.
const maxCachedLayouts = 512

func constLayoutSize(inline.Result) int64 { return 1 }

// layoutKey is the per-box layout cache key §4.7 step 1 specifies:
// (box_fingerprint, F_ctx, target_width).
type layoutKey struct {
	box   uint64
	ctx   uint64
	width fixed.T
}

// frameSignature is did_change's cheap comparison value (§4.8): the
// context fingerprint plus a combined hash of which events are active
// and what each one's content currently is, computed without running
// layout.
type frameSignature struct {
	ctxFingerprint uint64
	activeKey      uint64
}

// Renderer binds one Subtitles to a sequence of Render calls against
// possibly-changing Contexts and timestamps, implementing §4.7's
// render() procedure and the two state machines of §4.8.
type Renderer struct {
	lib       *Library
	resources *inline.Resources

	subs *Subtitles

	layoutCache *cache.LRU[layoutKey, inline.Result]

	errs *errs.Slot

	// rendering implements §4.8's raster-pass state machine: a
	// Renderer accepts only one non-finished render pass at a time.
	// Calling Render reentrantly (e.g. from within a log callback
	// invoked during the call) is a programmer error the contract
	// requires to be fatal, not silently serialized.
	rendering bool

	haveLastSignature bool
	lastSignature     frameSignature
}

// NewRenderer creates a Renderer sharing l's font matcher and caches,
// corresponding to renderer_create in §6. No Subtitles is bound yet;
// Render fails with InvalidArgument until SetSubtitles is called.
func (l *Library) NewRenderer() *Renderer {
	r := &Renderer{
		lib:       l,
		resources: &inline.Resources{Matcher: l.matcher, Shaper: font.NewShaper()},
		errs:      errs.NewSlot(),
	}
	r.resetLayoutCache()
	return r
}

func (r *Renderer) resetLayoutCache() {
	r.layoutCache = cache.New[layoutKey, inline.Result](maxCachedLayouts, constLayoutSize)
}

// SetSubtitles binds subs to the renderer, corresponding to
// renderer_set_subtitles in §6. This is the renderer/subtitles binding
// state machine's only transition (§4.8): any previously cached
// layout is invalidated unconditionally, since a layout cached under
// one document's box fingerprints must never be reused for another
// document even if a fingerprint collision were to occur.
func (r *Renderer) SetSubtitles(subs *Subtitles) {
	r.subs = subs
	r.resetLayoutCache()
	r.haveLastSignature = false
}

// LastError, LastErrorString and LastErrorCode mirror
// get_last_error_string/get_last_error_code for this renderer's own
// Render/DidChange failures.
func (r *Renderer) LastError() error        { return r.errs.Last() }
func (r *Renderer) LastErrorString() string { return r.errs.LastString() }
func (r *Renderer) LastErrorCode() errs.Kind { return r.errs.LastCode() }

// DidChange reports whether Render would need to draw a different
// frame than the last one rendered, without running layout: it
// recomputes only the active-event set, each active event's content
// fingerprint, and the context fingerprint, and compares that
// signature against the one stashed by the most recent Render call
// (§4.8). A renderer that has never rendered, or has none bound,
// always reports changed.
func (r *Renderer) DidChange(ctx rendercontext.Context, tMS int64) (bool, error) {
	if r.subs == nil {
		return true, nil
	}
	sig, err := r.computeSignature(ctx, tMS)
	if err != nil {
		r.errs.Set(err)
		return false, err
	}
	r.errs.Clear()
	return !r.haveLastSignature || sig != r.lastSignature, nil
}

func (r *Renderer) computeSignature(ctx rendercontext.Context, tMS int64) (frameSignature, error) {
	inputs, err := selector.ActiveAt(r.subs.doc, tMS, ctx)
	if err != nil {
		return frameSignature{}, err
	}
	return frameSignature{ctxFingerprint: ctx.Fingerprint(), activeKey: activeKeyOf(inputs)}, nil
}

func activeKeyOf(inputs []selector.LayoutInput) uint64 {
	h := fnvOffset
	for _, li := range inputs {
		h = fnv64a(h, uint64(li.Event.Index))
		h = fnv64a(h, boxFingerprint(li.Event))
	}
	return h
}

// Render executes §4.7's six-step procedure: resolve the active boxes
// for tMS against ctx, lay each one out (reusing the per-box cache on
// a hit), resolve each box's final vertical position now that its
// laid-out height is known, clear the union of all touched regions,
// walk each box's paint list against buffer, and release this frame's
// glyph-cache pins. buffer is a caller-owned premultiplied BGRA8
// surface width x height with the given byte stride (§6).
func (r *Renderer) Render(ctx rendercontext.Context, tMS int64, buffer []byte, width, height, stride int) error {
	if r.rendering {
		panic("render: Render called on a Renderer with a pass already in flight")
	}
	r.rendering = true
	defer func() { r.rendering = false }()

	if err := ctx.Validate(); err != nil {
		r.errs.Set(err)
		return err
	}
	if r.subs == nil {
		err := errs.New(errs.InvalidArgument, "render: no subtitles bound, call SetSubtitles first")
		r.errs.Set(err)
		return err
	}
	if stride < width*4 {
		err := errs.New(errs.InvalidArgument, "render: stride smaller than width*4")
		r.errs.Set(err)
		return err
	}

	fctx := ctx.Fingerprint()
	inputs, err := selector.ActiveAt(r.subs.doc, tMS, ctx)
	if err != nil {
		r.errs.Set(err)
		return err
	}

	type placedBox struct {
		result inline.Result
		origin fixed.Point
	}
	boxes := make([]placedBox, 0, len(inputs))
	var dirty fixed.Rect

	for _, li := range inputs {
		key := layoutKey{box: boxFingerprint(li.Event), ctx: fctx, width: li.TargetWidth}
		result, ok := r.layoutCache.Get(key)
		if !ok {
			result, err = inline.Layout(inline.Box{Root: li.Event.Root, TargetWidth: li.TargetWidth}, r.resources)
			if err != nil {
				r.errs.Set(err)
				return err
			}
			r.layoutCache.Put(key, result)
		}

		origin := li.TargetRect.Min
		switch li.Event.Anchor.VAlign {
		case document.VMiddle:
			origin.Y -= result.Bounds.Height() / 2
		case document.VBottom:
			origin.Y -= result.Bounds.Height()
		}

		boxes = append(boxes, placedBox{result: result, origin: origin})
		dirty = dirty.Union(translateRect(result.Bounds, origin))
	}

	buf := sw.NewBuffer(buffer, width, height, stride)
	clip := buf.Bounds()
	if !dirty.Empty() {
		buf.ClearRect(rectToImage(dirty), clip)
	}

	for _, b := range boxes {
		cmds := paint.Generate(b.result, b.origin, r.subs.doc.Flags)
		r.execute(cmds, &buf, clip, ctx.DPI)
	}

	r.lib.glyphs.UnpinAll()
	r.errs.Clear()
	r.lastSignature = frameSignature{ctxFingerprint: fctx, activeKey: activeKeyOf(inputs)}
	r.haveLastSignature = true
	return nil
}

func (r *Renderer) execute(cmds []paint.Command, buf *sw.Buffer, clip image.Rectangle, dpi uint32) {
	for _, cmd := range cmds {
		switch cmd.Kind {
		case paint.KindRectFill:
			if cmd.Color.A == 0 {
				continue
			}
			buf.FillRectAA(cmd.Rect, sw.Premultiply(cmd.Color), clip)
		case paint.KindGlyph:
			r.blitGlyph(cmd, buf, clip)
		case paint.KindShadow:
			r.blitShadow(cmd, buf, clip, dpi)
		}
	}
}

func (r *Renderer) blitGlyph(cmd paint.Command, buf *sw.Buffer, clip image.Rectangle) {
	bitmap, ok := r.rasterizeGlyph(cmd.Glyph.Key)
	if !ok || bitmap.Width == 0 || bitmap.Height == 0 {
		return
	}
	origin := image.Point{
		X: cmd.Glyph.Pos.X.Int() + bitmap.BearingX,
		Y: cmd.Glyph.Pos.Y.Int() + bitmap.BearingY,
	}
	if bitmap.Variant == font.VariantColor {
		buf.ColorBlit(origin, bitmap.Pixels, bitmap.Width, bitmap.Height, bitmap.Width*4, 255, clip)
		return
	}
	buf.MaskBlit(origin, bitmap.Pixels, bitmap.Width, bitmap.Height, bitmap.Width, sw.Premultiply(cmd.TintColor), clip)
}

func (r *Renderer) rasterizeGlyph(key font.GlyphKey) (font.GlyphBitmap, bool) {
	face, ok := r.resources.Matcher.FaceByID(key.Face)
	if !ok {
		return font.GlyphBitmap{}, false
	}
	bitmap, err := r.lib.glyphs.RasterizeCached(face, key.GlyphID, key.SizePx, key.Subpixel)
	if err != nil {
		sbrlog.Emit(sbrlog.Warn, "render: rasterizing glyph %d failed: %v", key.GlyphID, err)
		return font.GlyphBitmap{}, false
	}
	r.lib.glyphs.Pin(key)
	return bitmap, true
}

// blitShadow composites every glyph named by cmd.ShadowGlyphs into a
// scratch coverage surface just large enough to hold them, blurs it
// by the device-pixel radius cmd.BlurRadius resolves to at dpi, and
// mask-blits the result tinted by cmd.Color at cmd.Offset — the single
// primitive every edge style in §4.4 step 2-3 reduces to.
func (r *Renderer) blitShadow(cmd paint.Command, buf *sw.Buffer, clip image.Rectangle, dpi uint32) {
	if len(cmd.ShadowGlyphs) == 0 || cmd.Color.A == 0 {
		return
	}

	type placedBitmap struct {
		bitmap font.GlyphBitmap
		pos    image.Point
	}
	var placed []placedBitmap
	var bounds image.Rectangle
	for _, gp := range cmd.ShadowGlyphs {
		bitmap, ok := r.rasterizeGlyph(gp.Key)
		if !ok || bitmap.Width == 0 || bitmap.Height == 0 {
			continue
		}
		pos := image.Point{X: gp.Pos.X.Int() + bitmap.BearingX, Y: gp.Pos.Y.Int() + bitmap.BearingY}
		glyphRect := image.Rectangle{Min: pos, Max: pos.Add(image.Pt(bitmap.Width, bitmap.Height))}
		if bounds.Empty() {
			bounds = glyphRect
		} else {
			bounds = bounds.Union(glyphRect)
		}
		placed = append(placed, placedBitmap{bitmap, pos})
	}
	if len(placed) == 0 || bounds.Empty() {
		return
	}

	cov := sw.NewCoverage(bounds.Dx(), bounds.Dy())
	for _, pb := range placed {
		compositeCoverage(cov, pb.bitmap, pb.pos.Sub(bounds.Min))
	}

	radius := sw.PixelRadius(cmd.BlurRadius, dpi)
	blurred := r.lib.blurs.Blur(cov, radius)
	pad := 0
	if radius > 0 {
		pad = 3 * radius
	}
	origin := image.Point{
		X: bounds.Min.X - pad + cmd.Offset.X.Int(),
		Y: bounds.Min.Y - pad + cmd.Offset.Y.Int(),
	}
	buf.MaskBlit(origin, blurred.Pixels, blurred.Width, blurred.Height, blurred.Width, sw.Premultiply(cmd.Color), clip)
}

// compositeCoverage draws bitmap into dst at at, taking the maximum of
// the existing and new coverage per pixel rather than summing, so
// anti-aliased edges of adjacent glyphs in a shadow pass don't double
// up into visibly brighter seams.
func compositeCoverage(dst sw.Coverage, bitmap font.GlyphBitmap, at image.Point) {
	for y := 0; y < bitmap.Height; y++ {
		dy := at.Y + y
		if dy < 0 || dy >= dst.Height {
			continue
		}
		for x := 0; x < bitmap.Width; x++ {
			dx := at.X + x
			if dx < 0 || dx >= dst.Width {
				continue
			}
			var v byte
			if bitmap.Variant == font.VariantColor {
				v = bitmap.Pixels[(y*bitmap.Width+x)*4+3]
			} else {
				v = bitmap.Pixels[y*bitmap.Width+x]
			}
			idx := dy*dst.Width + dx
			if v > dst.Pixels[idx] {
				dst.Pixels[idx] = v
			}
		}
	}
}

func translateRect(rect fixed.Rect, by fixed.Point) fixed.Rect {
	return fixed.Rect{
		Min: fixed.Point{X: rect.Min.X + by.X, Y: rect.Min.Y + by.Y},
		Max: fixed.Point{X: rect.Max.X + by.X, Y: rect.Max.Y + by.Y},
	}
}

// rectToImage converts a fixed.Rect to the smallest image.Rectangle
// that fully contains it, erring on the side of clearing one extra row
// and column rather than leaving a fractional-pixel sliver undrawn.
func rectToImage(rect fixed.Rect) image.Rectangle {
	return image.Rect(rect.Min.X.Int(), rect.Min.Y.Int(), rect.Max.X.Int()+1, rect.Max.Y.Int()+1)
}
