package routing

import (
    "strings"

    "tourplan/internal/model"
)

// Polyline codec used by the routing provider: each coordinate component
// is an accumulating signed delta, zigzag-encoded into 5-bit groups with
// a continuation bit, offset by 63 into printable ASCII, at 1e5 scale.
// Decode(Encode(pts)) == pts for any input representable at 1e-5.

const polylineScale = 1e5

// DecodePolyline expands an encoded polyline into coordinate pairs.
func DecodePolyline(encoded string) []model.GeoPoint {
    var pts []model.GeoPoint
    var lat, lng int64
    idx := 0
    for idx < len(encoded) {
        dlat, n := decodeChunk(encoded[idx:])
        if n == 0 {
            break
        }
        idx += n
        lat += dlat
        dlng, n := decodeChunk(encoded[idx:])
        if n == 0 {
            break
        }
        idx += n
        lng += dlng
        pts = append(pts, model.GeoPoint{Lat: float64(lat) / polylineScale, Lng: float64(lng) / polylineScale})
    }
    return pts
}

// decodeChunk reads one varint group, returning the signed delta and the
// number of bytes consumed.
func decodeChunk(s string) (int64, int) {
    var result int64
    var shift uint
    for i := 0; i < len(s); i++ {
        b := int64(s[i]) - 63
        result |= (b & 0x1f) << shift
        shift += 5
        if b < 0x20 {
            if result&1 != 0 {
                return ^(result >> 1), i + 1
            }
            return result >> 1, i + 1
        }
    }
    return 0, 0
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(pts []model.GeoPoint) string {
    var sb strings.Builder
    var prevLat, prevLng int64
    for _, p := range pts {
        lat := int64(roundHalfAway(p.Lat * polylineScale))
        lng := int64(roundHalfAway(p.Lng * polylineScale))
        encodeChunk(&sb, lat-prevLat)
        encodeChunk(&sb, lng-prevLng)
        prevLat, prevLng = lat, lng
    }
    return sb.String()
}

func encodeChunk(sb *strings.Builder, v int64) {
    sv := v << 1
    if v < 0 {
        sv = ^sv
    }
    for sv >= 0x20 {
        sb.WriteByte(byte(0x20|(sv&0x1f)) + 63)
        sv >>= 5
    }
    sb.WriteByte(byte(sv) + 63)
}

func roundHalfAway(f float64) float64 {
    if f < 0 {
        return float64(int64(f - 0.5))
    }
    return float64(int64(f + 0.5))
}
