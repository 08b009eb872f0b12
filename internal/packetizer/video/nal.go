// Package video implements the generic video passthrough packetizer
// (spec.md §4.1): the variant used for any video codec that does not
// need its own reordering engine (everything except MPEG-4 Part 2,
// which gets the dedicated treatment in internal/packetizer/mpeg4p2 —
// spec §4.3 is titled "the Reordering Engine", singular). This
// packetizer trusts that its source already delivers frames in final
// Matroska emission order; it only normalizes NAL framing, extracts
// parameter sets for codec-private data, and assigns single-level
// (I/P-style) references.
package video

import (
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"
)

// Codec identifies which NAL-unit-type table to use when scanning for
// parameter sets.
type Codec int

const (
	H264 Codec = iota
	H265
)

// splitNALUnits normalizes an access unit to a list of NAL units,
// trying Annex B (start-code prefixed) first and falling back to AVCC
// (length-prefixed) before giving up and treating the whole payload as
// one NAL unit — the exact fallback order
// internal/relay/ts_muxer.go's dataToAccessUnit uses.
func splitNALUnits(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	if len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 &&
		(data[2] == 0x01 || (data[2] == 0x00 && data[3] == 0x01)) {
		var au h264.AnnexB
		if err := au.Unmarshal(data); err == nil {
			return au
		}
	}

	var au h264.AVCC
	if err := au.Unmarshal(data); err == nil && len(au) > 0 {
		return au
	}

	return [][]byte{data}
}

// paramSets accumulates the parameter-set NAL units this packetizer has
// seen, plus whether the set required for codec-private construction is
// complete.
type paramSets struct {
	vps, sps, pps []byte
}

func (p *paramSets) complete(codec Codec) bool {
	if codec == H265 {
		return p.vps != nil && p.sps != nil && p.pps != nil
	}
	return p.sps != nil && p.pps != nil
}

// scanParamSets updates ps with any parameter-set NAL units found among
// units and reports whether a key frame (IDR) NAL was present, following
// ExtractVideoCodecParams's NAL-type dispatch in
// internal/relay/fmp4_adapter.go.
func scanParamSets(codec Codec, units [][]byte, ps *paramSets) (isKey bool) {
	for _, nal := range units {
		if len(nal) == 0 {
			continue
		}
		switch codec {
		case H264:
			switch h264.NALUType(nal[0] & 0x1F) {
			case h264.NALUTypeSPS:
				ps.sps = nal
			case h264.NALUTypePPS:
				ps.pps = nal
			case h264.NALUTypeIDR:
				isKey = true
			}
		case H265:
			t := h265.NALUType((nal[0] >> 1) & 0x3F)
			switch t {
			case h265.NALUType_VPS_NUT:
				ps.vps = nal
			case h265.NALUType_SPS_NUT:
				ps.sps = nal
			case h265.NALUType_PPS_NUT:
				ps.pps = nal
			default:
				// IRAP pictures: BLA_W_LP (16) through RSV_IRAP_VCL23.
				if t >= 16 && t <= h265.NALUType_RSV_IRAP_VCL23 {
					isKey = true
				}
			}
		}
	}
	return isKey
}

// buildAVCDecoderConfig assembles a minimal AVCDecoderConfigurationRecord
// (ISO/IEC 14496-15 §5.2.4.1), the byte layout Matroska's
// V_MPEG4/ISO/AVC codec-private field carries. mediacommon has no
// high-level builder for this record (only the low-level SPS/PPS NAL
// parsers used above), so it is assembled by hand from the fields the
// record format requires.
func buildAVCDecoderConfig(sps, pps []byte) []byte {
	out := []byte{
		0x01,          // configurationVersion
		sps[1],        // AVCProfileIndication
		sps[2],        // profile_compatibility
		sps[3],        // AVCLevelIndication
		0xFF,          // reserved(6) + lengthSizeMinusOne=3 (4-byte lengths)
		0xE1,          // reserved(3) + numOfSequenceParameterSets=1
	}
	out = appendU16LenPrefixed(out, sps)
	out = append(out, 0x01) // numOfPictureParameterSets
	out = appendU16LenPrefixed(out, pps)
	return out
}

// buildHEVCDecoderConfig assembles a minimal HEVCDecoderConfigurationRecord
// (ISO/IEC 14496-15 §8.3.3.1) carrying one VPS/SPS/PPS array each, the
// shape Matroska's V_MPEGH/ISO/HEVC codec-private field expects.
func buildHEVCDecoderConfig(vps, sps, pps []byte) []byte {
	out := []byte{0x01} // configurationVersion
	// profile/tier/level/compatibility/constraint fields are not
	// extracted by this package (it never parses SPS semantics, only
	// NAL-unit-type framing) — zero-fill the 21 bytes between
	// configurationVersion and numOfArrays, matching how general-purpose
	// remuxers that don't re-derive these fields leave them. The last of
	// those bytes ends in lengthSizeMinusOne, set to 3 (4-byte lengths).
	out = append(out, make([]byte, 21)...)
	out[len(out)-1] = 0x03
	out = append(out, 3) // numOfArrays
	out = appendHEVCArray(out, 0x20, vps) // NAL_UNIT_VPS
	out = appendHEVCArray(out, 0x21, sps) // NAL_UNIT_SPS
	out = appendHEVCArray(out, 0x22, pps) // NAL_UNIT_PPS
	return out
}

func appendHEVCArray(out []byte, nalType byte, nal []byte) []byte {
	out = append(out, nalType) // array_completeness=0, reserved=0, NAL_unit_type
	out = append(out, 0x00, 0x01) // numNalus = 1
	return appendU16LenPrefixed(out, nal)
}

func appendU16LenPrefixed(out, data []byte) []byte {
	n := len(data)
	out = append(out, byte(n>>8), byte(n))
	return append(out, data...)
}

// assembleLengthPrefixed reassembles units into 4-byte length-prefixed
// framing, matching the lengthSizeMinusOne=3 this package's
// codec-private records declare — normalizing whatever framing the
// source delivered (Annex B, AVCC with a different length size, or raw)
// to one consistent on-the-wire shape, the way dataToAccessUnit's
// callers in internal/relay/ts_muxer.go re-serialize before writing.
func assembleLengthPrefixed(units [][]byte) []byte {
	var out []byte
	for _, u := range units {
		n := uint32(len(u))
		out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		out = append(out, u...)
	}
	return out
}
