package dbusiface

import (
	"testing"

	"github.com/godbus/dbus/v5"

	"notifyd/internal/notification"
	"notifyd/internal/relay"
	"notifyd/pkg/logx"
)

func testAdapter() *Adapter {
	return New(logx.Nop(), nil, relay.New(1, logx.Nop()), nil, Options{})
}

func rawImage(w, h, stride int32, alpha bool, bits, channels int32, data []byte) dbus.Variant {
	return dbus.MakeVariant([]interface{}{w, h, stride, alpha, bits, channels, data})
}

func TestDecodeHintsUrgency(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		hint dbus.Variant
		want notification.Urgency
	}{
		{name: "low", hint: dbus.MakeVariant(byte(0)), want: notification.UrgencyLow},
		{name: "critical", hint: dbus.MakeVariant(byte(2)), want: notification.UrgencyCritical},
		{name: "out of range", hint: dbus.MakeVariant(byte(9)), want: notification.UrgencyNormal},
		{name: "wrong type", hint: dbus.MakeVariant(uint32(2)), want: notification.UrgencyNormal},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hs := testAdapter().decodeHints(map[string]dbus.Variant{"urgency": tt.hint})
			if hs.urgency != tt.want {
				t.Fatalf("urgency = %v, want %v", hs.urgency, tt.want)
			}
		})
	}
}

func TestDecodeHintsUrgencyAbsent(t *testing.T) {
	t.Parallel()
	hs := testAdapter().decodeHints(nil)
	if hs.urgency != notification.UrgencyNormal {
		t.Fatalf("urgency = %v, want Normal", hs.urgency)
	}
}

func TestDecodeHintsImagePathSpellings(t *testing.T) {
	t.Parallel()
	a := testAdapter()

	hs := a.decodeHints(map[string]dbus.Variant{
		"image_path": dbus.MakeVariant("/old/spelling.png"),
	})
	if hs.imagePath != "/old/spelling.png" {
		t.Fatalf("imagePath = %q", hs.imagePath)
	}

	hs = a.decodeHints(map[string]dbus.Variant{
		"image-path": dbus.MakeVariant("/dashed.png"),
		"image_path": dbus.MakeVariant("/underscored.png"),
	})
	if hs.imagePath != "/dashed.png" {
		t.Fatalf("imagePath = %q, dashed spelling must win", hs.imagePath)
	}
}

func TestDecodeImageData(t *testing.T) {
	t.Parallel()
	v := rawImage(2, 2, 6, false, 8, 3, make([]byte, 12))
	img, ok := decodeImageData(v)
	if !ok {
		t.Fatal("decodeImageData failed on a well-formed struct")
	}
	if img.Width != 2 || img.Height != 2 || img.Rowstride != 6 || img.HasAlpha ||
		img.BitsPerSample != 8 || img.Channels != 3 || len(img.Data) != 12 {
		t.Fatalf("decoded = %+v", img)
	}
}

func TestDecodeImageDataMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		hint dbus.Variant
	}{
		{name: "not a struct", hint: dbus.MakeVariant("png")},
		{name: "too few fields", hint: dbus.MakeVariant([]interface{}{int32(1), int32(1)})},
		{name: "wrong field type", hint: dbus.MakeVariant([]interface{}{
			"1", int32(1), int32(3), false, int32(8), int32(3), []byte{0, 0, 0},
		})},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, ok := decodeImageData(tt.hint); ok {
				t.Fatal("decodeImageData accepted malformed input")
			}
		})
	}
}

func TestDecodeHintsImageDataPreferredOverIconData(t *testing.T) {
	t.Parallel()
	hs := testAdapter().decodeHints(map[string]dbus.Variant{
		"image-data": rawImage(1, 1, 3, false, 8, 3, []byte{1, 2, 3}),
		"icon_data":  rawImage(1, 1, 4, true, 8, 4, []byte{9, 9, 9, 9}),
	})
	if hs.imageData == nil || hs.iconData == nil {
		t.Fatal("both hints should decode")
	}
	if hs.imageData.Channels != 3 || hs.iconData.Channels != 4 {
		t.Fatalf("hints crossed: image=%+v icon=%+v", hs.imageData, hs.iconData)
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()
	h := &handler{a: testAdapter()}
	caps, derr := h.GetCapabilities()
	if derr != nil {
		t.Fatalf("GetCapabilities: %v", derr)
	}
	want := map[string]bool{
		"actions": true, "body": true, "body-images": true,
		"body-markup": true, "persistence": true,
	}
	if len(caps) != len(want) {
		t.Fatalf("capabilities = %v", caps)
	}
	for _, c := range caps {
		if !want[c] {
			t.Fatalf("unexpected capability %q", c)
		}
	}
}

func TestServerInformation(t *testing.T) {
	t.Parallel()
	h := &handler{a: testAdapter()}
	name, vendor, _, spec, derr := h.GetServerInformation()
	if derr != nil {
		t.Fatalf("GetServerInformation: %v", derr)
	}
	if name != "notifyd" || vendor != "notifyd" || spec != "1.2" {
		t.Fatalf("server info = %q %q %q", name, vendor, spec)
	}
}
