package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const deviceContextKey contextKey = "device_id"

// DeviceIDHeader identifies the kiosk or terminal sending a clock event.
const DeviceIDHeader = "X-Device-ID"

const maxDeviceIDLength = 64

// DeviceID is middleware that stores the X-Device-ID header in the request context.
// Control characters are stripped and the value is truncated to 64 bytes.
func DeviceID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cleanDeviceID(r.Header.Get(DeviceIDHeader))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetDeviceIDInContext(r.Context(), id)))
		})
	}
}

func cleanDeviceID(id string) string {
	id = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(id))
	if len(id) > maxDeviceIDLength {
		id = id[:maxDeviceIDLength]
	}
	return id
}

// DeviceIDFromContext returns the device id stored by DeviceID, or "".
func DeviceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(deviceContextKey).(string)
	return id
}

// SetDeviceIDInContext adds a device id to the context.
// This is primarily for testing - use the DeviceID middleware in production.
func SetDeviceIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceContextKey, id)
}
