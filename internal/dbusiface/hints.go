package dbusiface

import (
	"github.com/godbus/dbus/v5"

	"notifyd/internal/freedesktop"
	"notifyd/internal/notification"
	"notifyd/pkg/logx"
)

// hintSet is the subset of the hints dict the server acts on. Everything
// else in the dict is ignored.
type hintSet struct {
	urgency      notification.Urgency
	desktopEntry string
	imagePath    string
	imageData    *freedesktop.ImageData
	iconData     *freedesktop.ImageData
}

// decodeHints pulls the known hints out of the variant dict. Malformed
// values never fail the call: urgency degrades to Normal, image payloads
// that don't decode are dropped so the icon chain falls through.
func (a *Adapter) decodeHints(hints map[string]dbus.Variant) hintSet {
	hs := hintSet{urgency: notification.UrgencyNormal}

	if v, ok := hints["urgency"]; ok {
		if level, ok := v.Value().(byte); ok {
			if u, ok := notification.UrgencyFromHint(level); ok {
				hs.urgency = u
			} else if a.clientWarn.Allow() {
				a.log.Warn("urgency hint out of range, using normal", logx.Int("level", int(level)))
			}
		} else if a.clientWarn.Allow() {
			a.log.Warn("urgency hint is not a byte, using normal")
		}
	}

	if v, ok := hints["desktop-entry"]; ok {
		if s, ok := v.Value().(string); ok {
			hs.desktopEntry = s
		}
	}

	// The 1.2 spec names are dashed; the underscored spellings are the 1.1
	// forms still sent by older clients. Dashed wins when both appear.
	if s, ok := stringHint(hints, "image-path", "image_path"); ok {
		hs.imagePath = s
	}
	if img, ok := imageHint(hints, "image-data", "image_data"); ok {
		hs.imageData = img
	}
	if img, ok := imageHint(hints, "icon_data"); ok {
		hs.iconData = img
	}
	return hs
}

func stringHint(hints map[string]dbus.Variant, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := hints[k]; ok {
			if s, ok := v.Value().(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func imageHint(hints map[string]dbus.Variant, keys ...string) (*freedesktop.ImageData, bool) {
	for _, k := range keys {
		if v, ok := hints[k]; ok {
			if img, ok := decodeImageData(v); ok {
				return &img, true
			}
		}
	}
	return nil, false
}

// decodeImageData unpacks the (iiibiiay) raw image struct. A variant read
// off the wire carries it as []interface{}.
func decodeImageData(v dbus.Variant) (freedesktop.ImageData, bool) {
	fields, ok := v.Value().([]interface{})
	if !ok || len(fields) != 7 {
		return freedesktop.ImageData{}, false
	}
	width, ok0 := fields[0].(int32)
	height, ok1 := fields[1].(int32)
	rowstride, ok2 := fields[2].(int32)
	hasAlpha, ok3 := fields[3].(bool)
	bits, ok4 := fields[4].(int32)
	channels, ok5 := fields[5].(int32)
	data, ok6 := fields[6].([]byte)
	if !(ok0 && ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return freedesktop.ImageData{}, false
	}
	return freedesktop.ImageData{
		Width:         width,
		Height:        height,
		Rowstride:     rowstride,
		HasAlpha:      hasAlpha,
		BitsPerSample: bits,
		Channels:      channels,
		Data:          data,
	}, true
}
