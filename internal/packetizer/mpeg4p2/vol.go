package mpeg4p2

import "bytes"

// Start-code values that matter to this packetizer (ISO/IEC 14496-2
// §6.3.4). All are prefixed by the 3-byte sequence {0x00, 0x00, 0x01}.
const (
	startCodeVOP      = 0xB6 // video_object_plane_start_code
	startCodeUserData = 0xB2 // user_data_start_code
)

// isVOLStartCode reports whether b is a video_object_layer_start_code
// (0x20-0x2F).
func isVOLStartCode(b byte) bool {
	return b >= 0x20 && b <= 0x2F
}

// findStartCode scans buf for the next {0x00, 0x00, 0x01, code} pattern
// at or after from, returning the offset of the leading 0x00 and the
// code byte. ok is false if no start code is found.
func findStartCode(buf []byte, from int) (offset int, code byte, ok bool) {
	for i := from; i+3 < len(buf); i++ {
		if buf[i] == 0 && buf[i+1] == 0 && buf[i+2] == 1 {
			return i, buf[i+3], true
		}
	}
	return 0, 0, false
}

// extractConfigData returns the bytes preceding the first VOP start
// code in buf — the VOS/VOL/visual-object headers mkvmerge stores as
// Matroska codec-private data (spec §4.3 "parse VOL/VOS headers").
// ok is false if no VOP start code has appeared yet (need more data).
func extractConfigData(buf []byte) (config []byte, ok bool) {
	offset, code, found := findStartCode(buf, 0)
	for found {
		if code == startCodeVOP {
			return buf[:offset], true
		}
		offset, code, found = findStartCode(buf, offset+3)
	}
	return nil, false
}

// aspectRatioTable maps the standard 4-bit aspect_ratio_info value to a
// (num, den) pixel aspect ratio, per ISO/IEC 14496-2 table 6-12. Index 0
// is unused/forbidden; index 0xF means "extended", handled separately.
var aspectRatioTable = map[uint32][2]uint32{
	1: {1, 1},
	2: {12, 11},
	3: {10, 11},
	4: {16, 11},
	5: {40, 33},
}

// volFields is the subset of a VOL header this packetizer extracts.
// Parsing stops (ok=false) at the first field this package does not
// model (a non-rectangular shape, or VBV parameters present) rather
// than guess — those are rare in practice for AVI-sourced ASP content.
type volFields struct {
	width, height   uint32
	aspectRatioInfo uint32
	parWidth        uint32
	parHeight       uint32
}

// parseVOL locates the first VOL start code in config and decodes the
// fields this package needs, following ISO/IEC 14496-2 §6.2.2's VOL
// header syntax up through video_object_layer_width/height.
func parseVOL(config []byte) (volFields, bool) {
	offset, code, found := findStartCode(config, 0)
	for found && !isVOLStartCode(code) {
		offset, code, found = findStartCode(config, offset+3)
	}
	if !found {
		return volFields{}, false
	}

	r := newBitReader(config[offset+4:])

	if _, ok := r.readBit(); !ok { // random_accessible_vol
		return volFields{}, false
	}
	if !r.skipBits(8) { // video_object_type_indication
		return volFields{}, false
	}
	isObjectLayerIdentifier, ok := r.readBit()
	if !ok {
		return volFields{}, false
	}
	if isObjectLayerIdentifier == 1 {
		if !r.skipBits(4 + 3) { // video_object_layer_verid, priority
			return volFields{}, false
		}
	}

	aspectRatioInfo, ok := r.readBits(4)
	if !ok {
		return volFields{}, false
	}
	var parWidth, parHeight uint32
	if aspectRatioInfo == 0xF {
		w, ok1 := r.readBits(8)
		h, ok2 := r.readBits(8)
		if !ok1 || !ok2 {
			return volFields{}, false
		}
		parWidth, parHeight = w, h
	}

	volControlParameters, ok := r.readBit()
	if !ok {
		return volFields{}, false
	}
	if volControlParameters == 1 {
		// chroma_format(2) + low_delay(1); bail if VBV parameters follow —
		// not modeled by this package.
		if !r.skipBits(3) {
			return volFields{}, false
		}
		vbvParams, ok := r.readBit()
		if !ok {
			return volFields{}, false
		}
		if vbvParams == 1 {
			return volFields{}, false
		}
	}

	shape, ok := r.readBits(2)
	if !ok || shape != 0 { // 0 == rectangular; only shape this package models
		return volFields{}, false
	}

	if !r.skipBits(1) { // marker_bit
		return volFields{}, false
	}
	resolution, ok := r.readBits(16) // vop_time_increment_resolution
	if !ok || !r.skipBits(1) {       // marker_bit
		return volFields{}, false
	}
	incBits := 1 // fixed_vop_time_increment width: ceil(log2(resolution)), at least 1
	for uint32(1)<<incBits < resolution {
		incBits++
	}
	if fixedVOPRate, ok := r.readBit(); !ok || (fixedVOPRate == 1 && !r.skipBits(incBits)) {
		return volFields{}, false
	}

	if !r.skipBits(1) { // marker_bit
		return volFields{}, false
	}
	width, ok := r.readBits(13)
	if !ok {
		return volFields{}, false
	}
	if !r.skipBits(1) { // marker_bit
		return volFields{}, false
	}
	height, ok := r.readBits(13)
	if !ok {
		return volFields{}, false
	}

	return volFields{
		width:           width,
		height:          height,
		aspectRatioInfo: aspectRatioInfo,
		parWidth:        parWidth,
		parHeight:       parHeight,
	}, true
}

// extractSize returns the pixel width/height carried in config's VOL
// header (spec §4.3 step 1: "scan the VOL/VOS header for pixel
// dimensions").
func extractSize(config []byte) (width, height uint32, ok bool) {
	f, ok := parseVOL(config)
	if !ok {
		return 0, 0, false
	}
	return f.width, f.height, true
}

// extractPAR returns the pixel aspect ratio carried in config's VOL
// header as a (num, den) pair, or ok=false if aspect_ratio_info names
// an unspecified/reserved value this package doesn't map.
func extractPAR(config []byte) (num, den uint32, ok bool) {
	f, ok := parseVOL(config)
	if !ok {
		return 0, 0, false
	}
	if f.aspectRatioInfo == 0xF {
		if f.parWidth == 0 || f.parHeight == 0 {
			return 0, 0, false
		}
		return f.parWidth, f.parHeight, true
	}
	ratio, known := aspectRatioTable[f.aspectRatioInfo]
	if !known {
		return 0, 0, false
	}
	return ratio[0], ratio[1], true
}

// fixCodecString applies the DivX codec-string fix-up (spec §9; mirrors
// mkvmerge's p_mpeg4_p2.cpp fix_codec_string): user_data naming a
// DivX encoder sometimes ends its version string in a trailing 'p'
// where downstream players expect 'n'; correct it in place. Returns a
// new slice; config is not mutated.
func fixCodecString(config []byte) []byte {
	offset, code, found := findStartCode(config, 0)
	for found {
		if code == startCodeUserData && offset+8 <= len(config) &&
			bytes.EqualFold(config[offset+4:offset+8], []byte("divx")) {
			out := make([]byte, len(config))
			copy(out, config)

			tagStart := offset + 8
			end := bytes.IndexByte(out[tagStart:], 0)
			if end < 0 {
				end = len(out) - tagStart
			}
			lastIdx := tagStart + end - 1
			if lastIdx >= tagStart && out[lastIdx] == 'p' {
				out[lastIdx] = 'n'
			}
			return out
		}
		offset, code, found = findStartCode(config, offset+3)
	}
	return config
}
